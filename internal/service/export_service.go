package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gpowereth/blogbot/internal/repository"
	"github.com/gpowereth/blogbot/internal/transfer"
)

type ExportService interface {
	Write(ctx context.Context) error
}

type exportService struct {
	pr   repository.PostRepository
	path string
}

func NewExportService(pr repository.PostRepository, path string) ExportService {
	return &exportService{pr: pr, path: path}
}

// Write replaces the export file with a snapshot of every published post,
// newest-first. The write goes through a temp file and a rename so the site
// never reads a half-written export.
func (s *exportService) Write(ctx context.Context) error {
	posts, err := s.pr.ListPublished(ctx, 0)
	if err != nil {
		return fmt.Errorf("error listing posts for export: %w", err)
	}

	records := transfer.ToExportedPosts(posts)

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".export-*.json")
	if err != nil {
		return fmt.Errorf("error creating export temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		tmp.Close()
		return fmt.Errorf("error encoding export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error writing export: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("error replacing export file: %w", err)
	}
	return nil
}
