package handlers

import (
	"errors"
	"log"

	"examguard/internal/models"
	"examguard/internal/services"
	"examguard/internal/store"

	"github.com/gofiber/fiber/v2"
)

// RecordingHandler handles recording registration and listing
type RecordingHandler struct {
	retention *services.RetentionService
	reports   *services.ReportService
	metrics   *services.Metrics
}

// NewRecordingHandler creates a new recording handler
func NewRecordingHandler(retention *services.RetentionService, reports *services.ReportService, metrics *services.Metrics) *RecordingHandler {
	return &RecordingHandler{
		retention: retention,
		reports:   reports,
		metrics:   metrics,
	}
}

// Create registers a recording artifact for a finished session
// POST /api/recordings
func (h *RecordingHandler) Create(c *fiber.Ctx) error {
	var req models.CreateRecordingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body: " + err.Error(),
		})
	}

	rec, err := h.retention.SaveRecording(c.Context(), &req)
	if err != nil {
		return writeStoreError(c, err)
	}

	if h.metrics != nil {
		h.metrics.RecordingsRegistered.Inc()
	}
	h.reports.InvalidateStudent(rec.StudentID)

	return c.Status(fiber.StatusCreated).JSON(rec)
}

// List returns stored recordings
// GET /api/recordings?active=true
func (h *RecordingHandler) List(c *fiber.Ctx) error {
	var (
		recordings []models.Recording
		err        error
	)
	if c.QueryBool("active") {
		recordings, err = h.retention.GetActiveRecordings(c.Context())
	} else {
		recordings, err = h.retention.GetRecordings(c.Context())
	}
	if err != nil {
		return writeStoreError(c, err)
	}

	return c.JSON(fiber.Map{
		"recordings": recordings,
		"count":      len(recordings),
	})
}

// writeStoreError maps service errors onto HTTP responses: validation
// failures are the caller's fault, store corruption is surfaced loudly so
// the operator can decide between reset and abort, everything else is a
// plain 500.
func writeStoreError(c *fiber.Ctx, err error) error {
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": ve.Error(),
			"field": ve.Field,
		})
	}

	if store.IsCorruption(err) {
		log.Printf("❌ [STORE] Corruption detected: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Persisted collection is corrupted and needs operator attention",
		})
	}

	log.Printf("❌ [STORE] Operation failed: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Storage operation failed",
	})
}
