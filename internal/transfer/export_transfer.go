package transfer

import (
	"github.com/gpowereth/blogbot/internal/models"
)

// ExportedPost is one record in the website export file. Field order and the
// created_at text format are what the site has always consumed, so they stay
// stable.
type ExportedPost struct {
	ID        int64  `json:"id"`
	PhotoPath string `json:"photo_path"`
	Heading   string `json:"heading"`
	Caption   string `json:"caption"`
	CreatedAt string `json:"created_at"`
}

const exportTimeLayout = "2006-01-02 15:04:05"

func ToExportedPost(post *models.Post) ExportedPost {
	return ExportedPost{
		ID:        post.ID,
		PhotoPath: post.PhotoPath,
		Heading:   post.Heading,
		Caption:   post.Caption,
		CreatedAt: post.CreatedAt.UTC().Format(exportTimeLayout),
	}
}

func ToExportedPosts(posts []*models.Post) []ExportedPost {
	records := make([]ExportedPost, 0, len(posts))
	for _, post := range posts {
		records = append(records, ToExportedPost(post))
	}
	return records
}
