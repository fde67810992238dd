package handlers

import (
	"examguard/internal/logging"
	"examguard/internal/services"

	"github.com/gofiber/fiber/v2"
)

// LegalReportHandler handles narrative legal document generation
type LegalReportHandler struct {
	legal   *services.LegalReportService
	metrics *services.Metrics
}

// NewLegalReportHandler creates a new legal report handler
func NewLegalReportHandler(legal *services.LegalReportService, metrics *services.Metrics) *LegalReportHandler {
	return &LegalReportHandler{
		legal:   legal,
		metrics: metrics,
	}
}

// GetLegalReport generates the structured legal document for one subject.
// format=text returns the flattened rendering of the same structure.
// GET /api/students/:id/legal-report?lang=es&name=Jane&format=text
func (h *LegalReportHandler) GetLegalReport(c *fiber.Ctx) error {
	studentID := c.Params("id")
	if studentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing student id",
		})
	}

	report, err := h.legal.Generate(c.Context(), studentID, c.Query("name"), c.Query("lang", "en"))
	if err != nil {
		return writeStoreError(c, err)
	}

	if h.metrics != nil {
		h.metrics.RecordReport("legal")
	}

	logger := logging.WithCase(logging.WithStudent(studentID, report.Subject.StudentName), report.CaseNumber, report.Language)
	logger.Info("legal report issued", "incidents", len(report.Incidents), "evidence", report.Assessment.EvidenceStrength)

	if c.Query("format") == "text" {
		c.Set("Content-Type", "text/plain; charset=utf-8")
		return c.SendString(h.legal.RenderText(report))
	}

	return c.JSON(report)
}
