package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"examguard/internal/models"

	gocache "github.com/patrickmn/go-cache"
)

// ReportService derives point-in-time summaries from the retention store.
// Reports are never persisted; callers export them if they want a copy.
type ReportService struct {
	retention *RetentionService
	cache     *gocache.Cache
	now       func() time.Time
}

// NewReportService creates a report service with a short-TTL result cache.
func NewReportService(retention *RetentionService, cacheTTL time.Duration) *ReportService {
	return &ReportService{
		retention: retention,
		cache:     gocache.New(cacheTTL, 2*cacheTTL),
		now:       time.Now,
	}
}

// SetClock overrides the time source. Tests only.
func (s *ReportService) SetClock(now func() time.Time) {
	s.now = now
}

func reportCacheKey(studentID string, detailed bool) string {
	return fmt.Sprintf("report:%s:detailed=%t", studentID, detailed)
}

// InvalidateStudent drops cached reports for a subject after a write.
func (s *ReportService) InvalidateStudent(studentID string) {
	s.cache.Delete(reportCacheKey(studentID, true))
	s.cache.Delete(reportCacheKey(studentID, false))
}

// GenerateStudentReport summarizes a subject's unexpired events and
// recordings. With detailed=false every score field is replaced by the
// literal "***". This is a redaction contract, not an access check; the
// HTTP layer decides who may request detailed=true.
func (s *ReportService) GenerateStudentReport(ctx context.Context, studentID, studentName string, detailed bool) (*models.StudentReport, error) {
	if studentID == "" {
		return nil, models.NewValidationError("student_id", "required")
	}

	key := reportCacheKey(studentID, detailed)
	if cached, ok := s.cache.Get(key); ok {
		if report, ok := cached.(*models.StudentReport); ok {
			return report, nil
		}
	}

	events, err := s.retention.GetEventsByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	recordings, err := s.retention.GetActiveRecordings(ctx)
	if err != nil {
		return nil, err
	}

	report := &models.StudentReport{
		StudentID:        studentID,
		StudentName:      studentName,
		GeneratedAt:      s.now(),
		Detailed:         detailed,
		TotalEvents:      len(events),
		EventsByType:     map[models.EventType]int{},
		EventsBySeverity: map[models.EventSeverity]int{},
		Events:           []models.ReportEvent{},
		Recordings:       []models.ReportRecording{},
	}

	var scoreSum float64
	var scoreCount int
	for i := range events {
		ev := &events[i]
		report.EventsByType[ev.Type]++
		report.EventsBySeverity[ev.Severity]++

		if v, err := strconv.ParseFloat(ev.Score, 64); err == nil {
			scoreSum += v
			scoreCount++
		}

		score := models.RedactedScore
		if detailed {
			score = ev.Score
		}
		report.Events = append(report.Events, models.ReportEvent{
			ID:          ev.EventID,
			Timestamp:   ev.Timestamp,
			Type:        ev.Type,
			Severity:    ev.Severity,
			Score:       score,
			Screenshot:  ev.Screenshot,
			Description: ev.Description,
		})
	}

	report.AverageScore = FormatScore(AverageScore(scoreSum, scoreCount))
	if !detailed {
		report.AverageScore = models.RedactedScore
	}

	for i := range recordings {
		rec := &recordings[i]
		if rec.StudentID != studentID {
			continue
		}
		report.TotalRecordings++
		report.TotalDuration += rec.Duration
		report.Recordings = append(report.Recordings, models.ReportRecording{
			ID:        rec.RecordingID,
			StartTime: rec.StartTime,
			Duration:  rec.Duration,
			SizeBytes: rec.SizeBytes,
			Status:    rec.Status,
			ExpiresAt: rec.ExpiresAt,
		})
	}

	s.cache.Set(key, report, gocache.DefaultExpiration)

	log.Printf("📊 [REPORT] Generated report for student %s (%d events, detailed=%t)",
		studentID, report.TotalEvents, detailed)

	return report, nil
}

// AverageScore returns the mean of counted scores, 0 when none parsed.
func AverageScore(sum float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// FormatScore renders a score with exactly 3 decimal places, the fixed
// format events carry on the wire.
func FormatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
