package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"examguard/internal/config"
	"examguard/internal/models"
	"examguard/internal/store"
)

func testConfig() *config.Config {
	return &config.Config{
		RetentionHours:         24,
		GracePeriodDays:        7,
		CleanupIntervalMinutes: 60,
		CaseNumberPrefix:       "PROC",
		ReportCacheTTL:         time.Minute,
	}
}

func newTestService() *RetentionService {
	return NewRetentionService(
		store.NewMemoryRecordingRepository(),
		store.NewMemoryEventRepository(),
		testConfig(),
	)
}

func TestSaveRecordingSetsExpiryAndStatus(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	before := time.Now()
	rec, err := svc.SaveRecording(ctx, &models.CreateRecordingRequest{
		StudentID:   "s1",
		StudentName: "Jane Doe",
		Duration:    3600,
		SizeBytes:   1 << 20,
		StoragePath: "/recordings/s1/session.webm",
	})
	after := time.Now()
	if err != nil {
		t.Fatalf("SaveRecording failed: %v", err)
	}

	if rec.Status != models.RecordingActive {
		t.Errorf("Expected status active, got %s", rec.Status)
	}
	if rec.RecordingID == "" {
		t.Error("Expected a generated recording id")
	}

	// expiresAt == creation time + 24h, within clock-read tolerance
	if rec.ExpiresAt.Before(before.Add(24*time.Hour)) || rec.ExpiresAt.After(after.Add(24*time.Hour)) {
		t.Errorf("Expected expiry 24h after creation, got %v", rec.ExpiresAt)
	}
}

func TestSaveRecordingValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.SaveRecording(ctx, &models.CreateRecordingRequest{StudentName: "No ID"})
	var ve *models.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if ve.Field != "student_id" {
		t.Errorf("Expected student_id field, got %s", ve.Field)
	}

	// Nothing was appended: atomic reject
	recordings, err := svc.GetRecordings(ctx)
	if err != nil {
		t.Fatalf("GetRecordings failed: %v", err)
	}
	if len(recordings) != 0 {
		t.Errorf("Rejected save must not mutate the store, found %d recordings", len(recordings))
	}
}

func TestSaveEventRoundTrip(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	req := &models.CreateEventRequest{
		ID:          "evt-1",
		StudentID:   "s1",
		Timestamp:   time.Now().Add(-time.Minute),
		Type:        models.EventGazeDeviation,
		Severity:    models.SeverityMedium,
		Score:       "42.500",
		Screenshot:  "shots/evt-1.png",
		Description: "gaze off-screen for 12s",
	}

	saved, err := svc.SaveEvent(ctx, req)
	if err != nil {
		t.Fatalf("SaveEvent failed: %v", err)
	}

	events, err := svc.GetEvents(ctx)
	if err != nil {
		t.Fatalf("GetEvents failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}

	got := events[0]
	if got.EventID != req.ID || got.StudentID != req.StudentID ||
		got.Type != req.Type || got.Severity != req.Severity ||
		got.Score != req.Score || got.Screenshot != req.Screenshot ||
		got.Description != req.Description || !got.Timestamp.Equal(req.Timestamp) {
		t.Errorf("Round-trip mismatch: saved %+v, got %+v", saved, got)
	}
	if !got.ExpiresAt.Equal(saved.ExpiresAt) {
		t.Errorf("Expiry changed between save and read: %v vs %v", saved.ExpiresAt, got.ExpiresAt)
	}
}

func TestSaveEventValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	cases := []struct {
		name  string
		req   models.CreateEventRequest
		field string
	}{
		{"missing student", models.CreateEventRequest{Type: models.EventFaceLost, Severity: models.SeverityLow}, "student_id"},
		{"missing type", models.CreateEventRequest{StudentID: "s1", Severity: models.SeverityLow}, "type"},
		{"missing severity", models.CreateEventRequest{StudentID: "s1", Type: models.EventFaceLost}, "severity"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SaveEvent(ctx, &tc.req)
			var ve *models.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if ve.Field != tc.field {
				t.Errorf("Expected field %s, got %s", tc.field, ve.Field)
			}
		})
	}
}

func TestGracePeriodBoundary(t *testing.T) {
	base := time.Now()

	cases := []struct {
		name        string
		pastExpiry  time.Duration
		wantDeleted int
	}{
		{"one second past grace period", 7*24*time.Hour + time.Second, 1},
		{"one second inside grace period", 7*24*time.Hour - time.Second, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService()
			ctx := context.Background()

			clock := base.Add(-24*time.Hour - tc.pastExpiry)
			svc.SetClock(func() time.Time { return clock })

			if _, err := svc.SaveRecording(ctx, &models.CreateRecordingRequest{StudentID: "s1"}); err != nil {
				t.Fatalf("SaveRecording failed: %v", err)
			}

			// First pass at expiry marks the recording expired.
			clock = base.Add(-tc.pastExpiry)
			if _, _, err := svc.CleanupExpiredRecordings(ctx); err != nil {
				t.Fatalf("Cleanup failed: %v", err)
			}

			clock = base
			_, deleted, err := svc.CleanupExpiredRecordings(ctx)
			if err != nil {
				t.Fatalf("Cleanup failed: %v", err)
			}
			if deleted != tc.wantDeleted {
				t.Errorf("Expected %d deleted, got %d", tc.wantDeleted, deleted)
			}
		})
	}
}

func TestGetActiveRecordingsFiltersExpired(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	base := time.Now()
	clock := base
	svc.SetClock(func() time.Time { return clock })

	if _, err := svc.SaveRecording(ctx, &models.CreateRecordingRequest{StudentID: "s1"}); err != nil {
		t.Fatalf("SaveRecording failed: %v", err)
	}

	active, err := svc.GetActiveRecordings(ctx)
	if err != nil {
		t.Fatalf("GetActiveRecordings failed: %v", err)
	}
	if len(active) != 1 {
		t.Errorf("Expected 1 active recording, got %d", len(active))
	}

	clock = base.Add(25 * time.Hour)
	active, err = svc.GetActiveRecordings(ctx)
	if err != nil {
		t.Fatalf("GetActiveRecordings failed: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("Expected 0 active recordings past expiry, got %d", len(active))
	}
}

func TestGetStats(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.SaveRecording(ctx, &models.CreateRecordingRequest{StudentID: "s1"}); err != nil {
		t.Fatalf("SaveRecording failed: %v", err)
	}
	if _, err := svc.SaveEvent(ctx, &models.CreateEventRequest{
		StudentID: "s1", Type: models.EventFaceLost, Severity: models.SeverityLow, Score: "10.000",
	}); err != nil {
		t.Fatalf("SaveEvent failed: %v", err)
	}

	stats, err := svc.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.TotalRecordings != 1 || stats.ActiveRecordings != 1 {
		t.Errorf("Unexpected recording stats: %+v", stats)
	}
	if stats.TotalEvents != 1 || stats.ActiveEvents != 1 {
		t.Errorf("Unexpected event stats: %+v", stats)
	}
	if stats.RetentionHours != 24 || stats.GracePeriodDays != 7 {
		t.Errorf("Unexpected policy stats: %+v", stats)
	}
}
