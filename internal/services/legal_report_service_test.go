package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"examguard/internal/models"
)

func newLegalService(retention *RetentionService) *LegalReportService {
	svc := NewLegalReportService(retention, testConfig())
	svc.SetClock(func() time.Time {
		return time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	})
	svc.SetRand(func(n int) int { return 42 })
	return svc
}

func TestLegalReportCaseNumber(t *testing.T) {
	retention := newTestService()
	legal := newLegalService(retention)

	report, err := legal.Generate(context.Background(), "s1", "Jane Doe", "en")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if report.CaseNumber != "PROC-20260315-0042" {
		t.Errorf("Expected case number PROC-20260315-0042, got %s", report.CaseNumber)
	}
}

func TestLegalReportScenarioAssessment(t *testing.T) {
	retention := newTestService()
	seedScenario(t, retention, "s1")
	legal := newLegalService(retention)

	report, err := legal.Generate(context.Background(), "s1", "Jane Doe", "en")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if report.Assessment.OverallRiskScore != "65.188" {
		t.Errorf("Expected risk score 65.188, got %s", report.Assessment.OverallRiskScore)
	}
	if report.Assessment.EvidenceStrength != models.EvidenceStrong {
		t.Errorf("Expected STRONG evidence, got %s", report.Assessment.EvidenceStrength)
	}
	if report.Assessment.Pattern != models.PatternIsolated {
		t.Errorf("Expected isolated pattern for 4 events, got %s", report.Assessment.Pattern)
	}
	if report.Assessment.CriticalEvents != 1 || report.Assessment.HighEvents != 2 {
		t.Errorf("Unexpected severity counts: %+v", report.Assessment)
	}
	if len(report.Incidents) != 4 {
		t.Fatalf("Expected 4 incidents, got %d", len(report.Incidents))
	}
	for i, inc := range report.Incidents {
		if inc.Sequence != i+1 {
			t.Errorf("Incident %d has sequence %d", i, inc.Sequence)
		}
		if inc.DetectionModel == "" || inc.LegalImplication == "" || inc.Narrative == "" {
			t.Errorf("Incident %d has empty narrative fields: %+v", i, inc)
		}
	}
}

func TestClassifyPattern(t *testing.T) {
	cases := []struct {
		count int
		want  models.RiskPattern
	}{
		{0, models.PatternIsolated},
		{4, models.PatternIsolated},
		{5, models.PatternModerate},
		{8, models.PatternModerate},
		{9, models.PatternSystematic},
	}
	for _, tc := range cases {
		if got := ClassifyPattern(tc.count); got != tc.want {
			t.Errorf("ClassifyPattern(%d) = %s, want %s", tc.count, got, tc.want)
		}
	}
}

func TestClassifyEvidence(t *testing.T) {
	cases := []struct {
		critical, high int
		want           models.EvidenceStrength
	}{
		{0, 0, models.EvidenceWeak},
		{0, 1, models.EvidenceModerate},
		{0, 3, models.EvidenceModerate},
		{0, 4, models.EvidenceStrong},
		{1, 0, models.EvidenceStrong},
		{2, 0, models.EvidenceStrong},
		{3, 0, models.EvidenceConclusive},
	}
	for _, tc := range cases {
		if got := ClassifyEvidence(tc.critical, tc.high); got != tc.want {
			t.Errorf("ClassifyEvidence(%d, %d) = %s, want %s", tc.critical, tc.high, got, tc.want)
		}
	}
}

func TestImplicationForFallbacks(t *testing.T) {
	// Known pair hits the table.
	known := ImplicationFor(models.EventFaceLost, models.SeverityHigh)
	if known == "" || known == legalImplicationFallback {
		t.Errorf("Known pair should use table text, got %q", known)
	}

	// Unknown type falls back to the severity default.
	bySev := ImplicationFor(models.EventType("keyboard_pattern"), models.SeverityHigh)
	if bySev != legalImplicationBySeverity[models.SeverityHigh] {
		t.Errorf("Unknown type should use severity fallback, got %q", bySev)
	}

	// Unknown type and severity still render something.
	generic := ImplicationFor(models.EventType("keyboard_pattern"), models.EventSeverity("extreme"))
	if generic != legalImplicationFallback {
		t.Errorf("Unknown pair should use generic fallback, got %q", generic)
	}
}

func TestDetectionModelFallback(t *testing.T) {
	if got := DetectionModelFor(models.EventGazeDeviation); got != "Gaze Vector Estimation Model" {
		t.Errorf("Unexpected model label: %s", got)
	}
	if got := DetectionModelFor(models.EventType("keyboard_pattern")); got != detectionModelFallback {
		t.Errorf("Expected fallback model label, got %s", got)
	}
}

func TestLegalReportUnknownEventType(t *testing.T) {
	retention := newTestService()
	ctx := context.Background()
	if _, err := retention.SaveEvent(ctx, &models.CreateEventRequest{
		StudentID: "s1",
		Type:      models.EventType("keyboard_pattern"),
		Severity:  models.SeverityMedium,
		Score:     "50.000",
	}); err != nil {
		t.Fatalf("SaveEvent failed: %v", err)
	}

	legal := newLegalService(retention)
	report, err := legal.Generate(ctx, "s1", "Jane Doe", "en")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(report.Incidents) != 1 {
		t.Fatalf("Expected 1 incident, got %d", len(report.Incidents))
	}
	inc := report.Incidents[0]
	if inc.DetectionModel != detectionModelFallback {
		t.Errorf("Expected fallback detection model, got %s", inc.DetectionModel)
	}
	if inc.LegalImplication == "" {
		t.Error("Implication must never be empty")
	}
}

func TestLegalReportLocalization(t *testing.T) {
	retention := newTestService()
	seedScenario(t, retention, "s1")
	legal := newLegalService(retention)
	ctx := context.Background()

	en, err := legal.Generate(ctx, "s1", "Jane Doe", "en")
	if err != nil {
		t.Fatalf("Generate(en) failed: %v", err)
	}

	for _, lang := range []string{"es", "fr"} {
		localized, err := legal.Generate(ctx, "s1", "Jane Doe", lang)
		if err != nil {
			t.Fatalf("Generate(%s) failed: %v", lang, err)
		}
		if localized.Language != lang {
			t.Errorf("Expected language %s, got %s", lang, localized.Language)
		}
		if localized.Title == en.Title {
			t.Errorf("%s title not localized", lang)
		}

		// Localization changes wording only, never the computed values.
		if localized.Assessment.OverallRiskScore != en.Assessment.OverallRiskScore ||
			localized.Assessment.Pattern != en.Assessment.Pattern ||
			localized.Assessment.EvidenceStrength != en.Assessment.EvidenceStrength ||
			localized.Metadata.TotalEvents != en.Metadata.TotalEvents {
			t.Errorf("%s localization changed computed values", lang)
		}
	}

	// Unsupported languages fall back to English.
	fallback, err := legal.Generate(ctx, "s1", "Jane Doe", "de")
	if err != nil {
		t.Fatalf("Generate(de) failed: %v", err)
	}
	if fallback.Language != "en" || fallback.Title != en.Title {
		t.Errorf("Expected English fallback, got language=%s", fallback.Language)
	}
}

func TestLegalReportMetadataTimeline(t *testing.T) {
	retention := newTestService()
	ctx := context.Background()

	base := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if _, err := retention.SaveEvent(ctx, &models.CreateEventRequest{
			StudentID: "s1",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Type:      models.EventFaceLost,
			Severity:  models.SeverityLow,
			Score:     "10.000",
		}); err != nil {
			t.Fatalf("SaveEvent failed: %v", err)
		}
	}

	legal := newLegalService(retention)
	report, err := legal.Generate(ctx, "s1", "Jane Doe", "en")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !report.Metadata.FirstEvent.Equal(base) {
		t.Errorf("Expected first event %v, got %v", base, report.Metadata.FirstEvent)
	}
	if !report.Metadata.LastEvent.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("Expected last event %v, got %v", base.Add(2*time.Minute), report.Metadata.LastEvent)
	}
}

func TestRenderTextProjectsReport(t *testing.T) {
	retention := newTestService()
	seedScenario(t, retention, "s1")
	legal := newLegalService(retention)

	report, err := legal.Generate(context.Background(), "s1", "Jane Doe", "en")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	text := legal.RenderText(report)

	wantFragments := []string{
		report.Title,
		report.CaseNumber,
		report.ExecutiveSummary,
		report.Subject.StudentID,
		report.Assessment.OverallRiskScore,
		report.Assessment.EvidenceText,
		report.Signature.IssuedBy,
		report.Signature.Notice,
	}
	for _, want := range wantFragments {
		if !strings.Contains(text, want) {
			t.Errorf("Rendered text missing %q", want)
		}
	}

	for _, inc := range report.Incidents {
		if !strings.Contains(text, inc.Narrative) {
			t.Errorf("Rendered text missing incident narrative %q", inc.Narrative)
		}
		if !strings.Contains(text, inc.LegalImplication) {
			t.Errorf("Rendered text missing implication %q", inc.LegalImplication)
		}
	}
}
