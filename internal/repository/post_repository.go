package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/gpowereth/blogbot/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS blog_posts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	photo_path TEXT NOT NULL,
	heading TEXT NOT NULL,
	caption TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	is_published BOOLEAN NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS idx_blog_posts_published_created
	ON blog_posts (is_published, created_at DESC);
`

// InitSchema creates the blog_posts table if it does not exist yet.
func InitSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) (int64, error)
	ListPublished(ctx context.Context, limit int) ([]*models.Post, error)
	CountPublished(ctx context.Context) (int64, error)
	Unpublish(ctx context.Context, id int64) error
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

// Create inserts a new published post. The creation timestamp is assigned
// here, in UTC, not by the caller.
func (r *postRepository) Create(ctx context.Context, post *models.Post) (int64, error) {
	query := `
		INSERT INTO blog_posts (photo_path, heading, caption, created_at, is_published)
		VALUES (?, ?, ?, ?, 1)
	`

	post.CreatedAt = time.Now().UTC()
	post.IsPublished = true

	res, err := r.db.ExecContext(ctx, query, post.PhotoPath, post.Heading, post.Caption, post.CreatedAt)
	if err != nil {
		slog.Error(err.Error())
		return 0, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		slog.Error(err.Error())
		return 0, err
	}

	post.ID = id
	return id, nil
}

// ListPublished returns published posts newest-first. A limit of 0 means
// no limit. The id tiebreak keeps the order stable when two posts share a
// creation second.
func (r *postRepository) ListPublished(ctx context.Context, limit int) ([]*models.Post, error) {
	query := `
		SELECT id, photo_path, heading, caption, created_at, is_published
		FROM blog_posts
		WHERE is_published = 1
		ORDER BY created_at DESC, id DESC
	`

	var rows *sql.Rows
	var err error

	if limit > 0 {
		rows, err = r.db.QueryContext(ctx, query+" LIMIT ?", limit)
	} else {
		rows, err = r.db.QueryContext(ctx, query)
	}
	if err != nil {
		slog.Error(err.Error())
		return nil, err
	}
	defer rows.Close()

	posts := make([]*models.Post, 0)
	for rows.Next() {
		var post models.Post
		if err := rows.Scan(&post.ID, &post.PhotoPath, &post.Heading, &post.Caption, &post.CreatedAt, &post.IsPublished); err != nil {
			slog.Error(err.Error())
			return nil, err
		}
		posts = append(posts, &post)
	}
	if err := rows.Err(); err != nil {
		slog.Error(err.Error())
		return nil, err
	}

	return posts, nil
}

func (r *postRepository) CountPublished(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blog_posts WHERE is_published = 1`).Scan(&count)
	if err != nil {
		slog.Error(err.Error())
		return 0, err
	}
	return count, nil
}

// Unpublish soft-deletes a post. The row and its photo stay on disk; only
// the published flag flips.
func (r *postRepository) Unpublish(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE blog_posts SET is_published = 0 WHERE id = ?`, id)
	if err != nil {
		slog.Error(err.Error())
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
