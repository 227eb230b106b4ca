package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gpowereth/blogbot/internal/repository"
)

// StatusHandler serves liveness and deployment-status endpoints. The export
// data itself is never served here; the website reads the export file.
type StatusHandler struct {
	pr      repository.PostRepository
	started time.Time
}

func NewStatusHandler(pr repository.PostRepository) *StatusHandler {
	return &StatusHandler{pr: pr, started: time.Now()}
}

func (h *StatusHandler) Health(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusOK)
}

func (h *StatusHandler) Status(c *fiber.Ctx) error {
	count, err := h.pr.CountPublished(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"published_posts": count,
		"uptime_seconds":  int64(time.Since(h.started).Seconds()),
	})
}
