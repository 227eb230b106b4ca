package queue

import (
	"github.com/gpowereth/blogbot/internal/service"
)

type Queue struct {
	es service.ExportService
}

func NewQueue(es service.ExportService) *Queue {
	return &Queue{es: es}
}

const TaskTypeExportPosts = "export:posts"

type ExportPostsPayload struct {
	PostID int64 `json:"post_id"`
}
