package handlers

import (
	"crypto/subtle"

	"examguard/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ReportHandler handles student summary reports
type ReportHandler struct {
	reports  *services.ReportService
	metrics  *services.Metrics
	adminKey string
}

// NewReportHandler creates a new report handler. adminKey gates
// detailed=true; the redacted variant stays public.
func NewReportHandler(reports *services.ReportService, metrics *services.Metrics, adminKey string) *ReportHandler {
	return &ReportHandler{
		reports:  reports,
		metrics:  metrics,
		adminKey: adminKey,
	}
}

// GetStudentReport generates a point-in-time summary for one subject
// GET /api/students/:id/report?detailed=true&name=Jane
func (h *ReportHandler) GetStudentReport(c *fiber.Ctx) error {
	studentID := c.Params("id")
	if studentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing student id",
		})
	}

	detailed := c.QueryBool("detailed")
	if detailed && h.adminKey != "" {
		key := c.Get("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(h.adminKey)) != 1 {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Detailed reports require a valid X-API-Key",
			})
		}
	}

	report, err := h.reports.GenerateStudentReport(c.Context(), studentID, c.Query("name"), detailed)
	if err != nil {
		return writeStoreError(c, err)
	}

	if h.metrics != nil {
		h.metrics.RecordReport("summary")
	}

	return c.JSON(report)
}
