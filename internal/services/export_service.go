package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"examguard/internal/models"

	"github.com/xuri/excelize/v2"
)

// ExportService renders a subject's event log as a downloadable .xlsx
// workbook. Scores follow the same redaction contract as reports.
type ExportService struct {
	retention *RetentionService
}

// NewExportService creates an export service.
func NewExportService(retention *RetentionService) *ExportService {
	return &ExportService{retention: retention}
}

var exportHeader = []string{"Event ID", "Timestamp", "Type", "Severity", "Score", "Description", "Screenshot"}

// ExportStudentEvents writes the subject's unexpired events into an xlsx
// workbook and returns its bytes.
func (s *ExportService) ExportStudentEvents(ctx context.Context, studentID string, detailed bool) ([]byte, error) {
	if studentID == "" {
		return nil, models.NewValidationError("student_id", "required")
	}

	events, err := s.retention.GetEventsByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Flagged Events"
	f.SetSheetName("Sheet1", sheet)

	for col, title := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to compute header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, ev := range events {
		score := models.RedactedScore
		if detailed {
			score = ev.Score
		}
		values := []interface{}{
			ev.EventID,
			ev.Timestamp.Format(time.RFC3339),
			string(ev.Type),
			string(ev.Severity),
			score,
			ev.Description,
			ev.Screenshot,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, fmt.Errorf("failed to compute cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", row+2, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	log.Printf("📤 [EXPORT] Exported %d events for student %s", len(events), studentID)

	return buf.Bytes(), nil
}
