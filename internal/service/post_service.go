package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gpowereth/blogbot/internal/models"
	"github.com/gpowereth/blogbot/internal/repository"
)

type PostService interface {
	Publish(ctx context.Context, photoPath, heading, caption string) (int64, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Post, error)
	Unpublish(ctx context.Context, id int64) error
}

type postService struct {
	pr repository.PostRepository
	r2 *R2Service
}

func NewPostService(pr repository.PostRepository, r2 *R2Service) PostService {
	return &postService{pr: pr, r2: r2}
}

// Publish inserts the confirmed draft as a new published post and returns the
// assigned id. The photo is mirrored to R2 afterwards when configured; mirror
// failures are logged and do not fail the publish.
func (s *postService) Publish(ctx context.Context, photoPath, heading, caption string) (int64, error) {
	if photoPath == "" {
		err := errors.New("photo path cannot be empty")
		slog.Info(err.Error())
		return 0, err
	}
	if heading == "" {
		err := errors.New("heading cannot be empty")
		slog.Info(err.Error())
		return 0, err
	}
	if caption == "" {
		err := errors.New("caption cannot be empty")
		slog.Info(err.Error())
		return 0, err
	}

	post := models.Post{
		PhotoPath: photoPath,
		Heading:   heading,
		Caption:   caption,
	}

	id, err := s.pr.Create(ctx, &post)
	if err != nil {
		return 0, fmt.Errorf("error creating post: %w", err)
	}

	if s.r2 != nil && s.r2.Enabled() {
		if err := s.r2.MirrorImage(ctx, photoPath); err != nil {
			slog.Warn("photo mirror failed: " + err.Error())
		}
	}

	return id, nil
}

func (s *postService) ListRecent(ctx context.Context, limit int) ([]*models.Post, error) {
	return s.pr.ListPublished(ctx, limit)
}

func (s *postService) Unpublish(ctx context.Context, id int64) error {
	if id <= 0 {
		err := errors.New("post id is not valid")
		slog.Info(err.Error())
		return err
	}
	return s.pr.Unpublish(ctx, id)
}
