package handlers

import (
	"examguard/internal/models"
	"examguard/internal/services"

	"github.com/gofiber/fiber/v2"
)

// EventHandler handles flagged event ingestion and listing
type EventHandler struct {
	retention *services.RetentionService
	reports   *services.ReportService
	alerts    *services.AlertService
	metrics   *services.Metrics
}

// NewEventHandler creates a new event handler
func NewEventHandler(retention *services.RetentionService, reports *services.ReportService, alerts *services.AlertService, metrics *services.Metrics) *EventHandler {
	return &EventHandler{
		retention: retention,
		reports:   reports,
		alerts:    alerts,
		metrics:   metrics,
	}
}

// Create stores a flagged event
// POST /api/events
func (h *EventHandler) Create(c *fiber.Ctx) error {
	var req models.CreateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body: " + err.Error(),
		})
	}

	ev, err := h.retention.SaveEvent(c.Context(), &req)
	if err != nil {
		return writeStoreError(c, err)
	}

	if h.metrics != nil {
		h.metrics.RecordEventFlagged(string(ev.Type), string(ev.Severity))
	}
	h.reports.InvalidateStudent(ev.StudentID)
	if h.alerts != nil {
		h.alerts.NotifyEvent(ev)
	}

	return c.Status(fiber.StatusCreated).JSON(ev)
}

// List returns stored events
// GET /api/events?active=true
func (h *EventHandler) List(c *fiber.Ctx) error {
	var (
		events []models.FlaggedEvent
		err    error
	)
	if c.QueryBool("active") {
		events, err = h.retention.GetActiveEvents(c.Context())
	} else {
		events, err = h.retention.GetEvents(c.Context())
	}
	if err != nil {
		return writeStoreError(c, err)
	}

	return c.JSON(fiber.Map{
		"events": events,
		"count":  len(events),
	})
}

// ListByStudent returns a subject's unexpired events, newest first
// GET /api/students/:id/events
func (h *EventHandler) ListByStudent(c *fiber.Ctx) error {
	studentID := c.Params("id")
	if studentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing student id",
		})
	}

	events, err := h.retention.GetEventsByStudent(c.Context(), studentID)
	if err != nil {
		return writeStoreError(c, err)
	}

	return c.JSON(fiber.Map{
		"student_id": studentID,
		"events":     events,
		"count":      len(events),
	})
}
