package services

import (
	"context"
	"log"
	"sync"
	"time"

	"examguard/internal/config"
	"examguard/internal/models"
	"examguard/internal/store"

	"github.com/google/uuid"
)

// RetentionService owns the canonical recording and event collections.
// All writes (saves and cleanup sweeps) are serialized behind one mutex so
// concurrent HTTP callers and the cleanup job cannot race each other on
// read-modify-write sequences.
type RetentionService struct {
	recordings store.RecordingRepository
	events     store.EventRepository
	cfg        *config.Config
	writeMu    sync.Mutex
	now        func() time.Time
}

// NewRetentionService creates a retention service over the given repositories.
func NewRetentionService(recordings store.RecordingRepository, events store.EventRepository, cfg *config.Config) *RetentionService {
	return &RetentionService{
		recordings: recordings,
		events:     events,
		cfg:        cfg,
		now:        time.Now,
	}
}

// SetClock overrides the time source. Tests only.
func (s *RetentionService) SetClock(now func() time.Time) {
	s.now = now
}

// SaveRecording registers a recording artifact for a finished session.
// Expiry and status are computed here and cannot be supplied by the caller;
// existing entries are never modified.
func (s *RetentionService) SaveRecording(ctx context.Context, req *models.CreateRecordingRequest) (*models.Recording, error) {
	if req.StudentID == "" {
		return nil, models.NewValidationError("student_id", "required")
	}
	if req.Duration < 0 {
		return nil, models.NewValidationError("duration", "must not be negative")
	}
	if req.SizeBytes < 0 {
		return nil, models.NewValidationError("size_bytes", "must not be negative")
	}

	now := s.now()
	rec := &models.Recording{
		RecordingID: req.ID,
		StudentID:   req.StudentID,
		StudentName: req.StudentName,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Duration:    req.Duration,
		StoragePath: req.StoragePath,
		SizeBytes:   req.SizeBytes,
		ExpiresAt:   now.Add(s.cfg.RetentionWindow()),
		Status:      models.RecordingActive,
	}
	if rec.RecordingID == "" {
		rec.RecordingID = uuid.New().String()
	}
	if rec.StartTime.IsZero() {
		rec.StartTime = now
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.recordings.Append(ctx, rec); err != nil {
		return nil, err
	}

	log.Printf("📼 [RETENTION] Registered recording %s for student %s (expires %s)",
		rec.RecordingID, rec.StudentID, rec.ExpiresAt.Format(time.RFC3339))

	return rec, nil
}

// GetRecordings returns every stored recording, expired or not.
func (s *RetentionService) GetRecordings(ctx context.Context) ([]models.Recording, error) {
	return s.recordings.All(ctx)
}

// GetActiveRecordings returns recordings still inside their retention window.
func (s *RetentionService) GetActiveRecordings(ctx context.Context) ([]models.Recording, error) {
	return s.recordings.Active(ctx, s.now())
}

// CleanupExpiredRecordings runs the two-phase recording sweep: active
// recordings past expiry flip to expired (deletion of the underlying media
// happens out-of-band; only the intent is logged here), and expired
// recordings past the grace period are removed for good.
func (s *RetentionService) CleanupExpiredRecordings(ctx context.Context) (expired, deleted int, err error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	now := s.now()

	expired, err = s.recordings.MarkExpired(ctx, now)
	if err != nil {
		return 0, 0, err
	}
	if expired > 0 {
		log.Printf("🗑️  [RETENTION] Marked %d recordings expired; media artifacts queued for out-of-band deletion", expired)
	}

	deleted, err = s.recordings.DeleteExpiredBefore(ctx, now.Add(-s.cfg.GracePeriod()))
	if err != nil {
		return expired, 0, err
	}
	if deleted > 0 {
		log.Printf("🗑️  [RETENTION] Removed %d recordings past the %d-day grace period", deleted, s.cfg.GracePeriodDays)
	}

	return expired, deleted, nil
}

// SaveEvent stores a flagged event with a computed expiry. Unknown types and
// severities are accepted; the legal formatter renders them via fallback text.
func (s *RetentionService) SaveEvent(ctx context.Context, req *models.CreateEventRequest) (*models.FlaggedEvent, error) {
	if req.StudentID == "" {
		return nil, models.NewValidationError("student_id", "required")
	}
	if req.Type == "" {
		return nil, models.NewValidationError("type", "required")
	}
	if req.Severity == "" {
		return nil, models.NewValidationError("severity", "required")
	}

	now := s.now()
	ev := &models.FlaggedEvent{
		EventID:     req.ID,
		StudentID:   req.StudentID,
		Timestamp:   req.Timestamp,
		Type:        req.Type,
		Severity:    req.Severity,
		Score:       req.Score,
		Screenshot:  req.Screenshot,
		Description: req.Description,
		ExpiresAt:   now.Add(s.cfg.RetentionWindow()),
	}
	if ev.EventID == "" {
		ev.EventID = uuid.New().String()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = now
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.events.Append(ctx, ev); err != nil {
		return nil, err
	}

	log.Printf("🚩 [RETENTION] Flagged %s/%s event %s for student %s",
		ev.Type, ev.Severity, ev.EventID, ev.StudentID)

	return ev, nil
}

// GetEvents returns every stored event, expired or not.
func (s *RetentionService) GetEvents(ctx context.Context) ([]models.FlaggedEvent, error) {
	return s.events.All(ctx)
}

// GetActiveEvents returns all unexpired events, unsorted.
func (s *RetentionService) GetActiveEvents(ctx context.Context) ([]models.FlaggedEvent, error) {
	return s.events.Active(ctx, s.now())
}

// GetEventsByStudent returns unexpired events for one subject, newest first;
// equal timestamps keep insertion order.
func (s *RetentionService) GetEventsByStudent(ctx context.Context, studentID string) ([]models.FlaggedEvent, error) {
	return s.events.ActiveByStudent(ctx, studentID, s.now())
}

// CleanupExpiredEvents removes every event past its expiry.
func (s *RetentionService) CleanupExpiredEvents(ctx context.Context) (int, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	removed, err := s.events.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		log.Printf("🗑️  [RETENTION] Purged %d expired events", removed)
	}
	return removed, nil
}

// GetStats summarizes the current state of the store for monitoring.
func (s *RetentionService) GetStats(ctx context.Context) (*models.RetentionStats, error) {
	now := s.now()

	recordings, err := s.recordings.All(ctx)
	if err != nil {
		return nil, err
	}
	events, err := s.events.All(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.RetentionStats{
		TotalRecordings: len(recordings),
		TotalEvents:     len(events),
		RetentionHours:  s.cfg.RetentionHours,
		GracePeriodDays: s.cfg.GracePeriodDays,
		RecordingCutoff: now.Add(-s.cfg.GracePeriod()),
	}
	for i := range recordings {
		switch {
		case recordings[i].IsActive(now):
			stats.ActiveRecordings++
		case recordings[i].Status == models.RecordingExpired:
			stats.ExpiredRecordings++
		}
	}
	for i := range events {
		if events[i].IsActive(now) {
			stats.ActiveEvents++
		}
	}

	return stats, nil
}
