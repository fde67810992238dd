package handlers

import (
	"examguard/internal/jobs"
	"examguard/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler exposes manual cleanup and retention monitoring
type AdminHandler struct {
	retention *services.RetentionService
	scheduler *jobs.JobScheduler
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(retention *services.RetentionService, scheduler *jobs.JobScheduler) *AdminHandler {
	return &AdminHandler{
		retention: retention,
		scheduler: scheduler,
	}
}

// TriggerCleanup runs the retention sweep outside the schedule
// POST /api/admin/cleanup
func (h *AdminHandler) TriggerCleanup(c *fiber.Ctx) error {
	expired, deleted, err := h.retention.CleanupExpiredRecordings(c.Context())
	if err != nil {
		return writeStoreError(c, err)
	}

	purged, err := h.retention.CleanupExpiredEvents(c.Context())
	if err != nil {
		return writeStoreError(c, err)
	}

	return c.JSON(fiber.Map{
		"expired_recordings": expired,
		"deleted_recordings": deleted,
		"deleted_events":     purged,
	})
}

// RetentionStats reports the current state of the store
// GET /api/retention/stats
func (h *AdminHandler) RetentionStats(c *fiber.Ctx) error {
	stats, err := h.retention.GetStats(c.Context())
	if err != nil {
		return writeStoreError(c, err)
	}
	return c.JSON(stats)
}

// SchedulerStatus reports registered jobs and their next run times
// GET /api/admin/scheduler
func (h *AdminHandler) SchedulerStatus(c *fiber.Ctx) error {
	if h.scheduler == nil {
		return c.JSON(fiber.Map{"jobs": fiber.Map{}})
	}
	return c.JSON(fiber.Map{"jobs": h.scheduler.GetStatus()})
}
