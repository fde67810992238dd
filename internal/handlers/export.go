package handlers

import (
	"fmt"
	"time"

	"examguard/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ExportHandler handles downloadable event-log exports
type ExportHandler struct {
	export  *services.ExportService
	metrics *services.Metrics
}

// NewExportHandler creates a new export handler
func NewExportHandler(export *services.ExportService, metrics *services.Metrics) *ExportHandler {
	return &ExportHandler{
		export:  export,
		metrics: metrics,
	}
}

// ExportStudentEvents streams the subject's event log as an xlsx workbook.
// The route sits behind the API key gate, so scores are always detailed.
// GET /api/students/:id/events/export
func (h *ExportHandler) ExportStudentEvents(c *fiber.Ctx) error {
	studentID := c.Params("id")
	if studentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing student id",
		})
	}

	data, err := h.export.ExportStudentEvents(c.Context(), studentID, true)
	if err != nil {
		return writeStoreError(c, err)
	}

	if h.metrics != nil {
		h.metrics.RecordReport("export")
	}

	filename := fmt.Sprintf("events_%s_%s.xlsx", studentID, time.Now().Format("20060102"))
	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return c.Send(data)
}
