package queue

import (
	"context"
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"
)

func (q *Queue) HandleExportPostsTask(ctx context.Context, task *asynq.Task) error {
	var payload ExportPostsPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	// The post that triggered this task is already saved and reported to the
	// user; a failed export is logged, not retried against the user.
	if err := q.es.Write(ctx); err != nil {
		log.Printf("Error rebuilding export after post %d: %v", payload.PostID, err)
	}

	return nil
}
