package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"examguard/internal/config"
	"examguard/internal/jobs"
	"examguard/internal/services"
	"examguard/internal/store"

	"github.com/gofiber/fiber/v2"
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

func setupTestApp(t *testing.T) (*fiber.App, *services.RetentionService, *services.ReportService) {
	t.Helper()

	cfg := testConfig()
	retention := services.NewRetentionService(
		store.NewMemoryRecordingRepository(),
		store.NewMemoryEventRepository(),
		cfg,
	)
	reports := services.NewReportService(retention, cfg.ReportCacheTTL)

	app := fiber.New()
	return app, retention, reports
}

func decodeBody(t *testing.T, resp io.Reader) map[string]interface{} {
	t.Helper()
	body, err := io.ReadAll(resp)
	if err != nil {
		t.Fatalf("Failed to read response: %v", err)
	}
	var result map[string]interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}
	return result
}

// TestHealthHandler tests the health check endpoint
func TestHealthHandler(t *testing.T) {
	app, _, _ := setupTestApp(t)

	handler := NewHealthHandler(nil)
	app.Get("/health", handler.Handle)

	req := httptest.NewRequest("GET", "/health", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to send request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	result := decodeBody(t, resp.Body)
	if result["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %v", result["status"])
	}
	if result["storage"] != "memory" {
		t.Errorf("Expected storage 'memory', got %v", result["storage"])
	}
}

// TestRecordingHandler_Create tests recording registration
func TestRecordingHandler_Create(t *testing.T) {
	app, retention, reports := setupTestApp(t)

	handler := NewRecordingHandler(retention, reports, nil)
	app.Post("/api/recordings", handler.Create)

	payload, _ := json.Marshal(map[string]interface{}{
		"student_id":   "s1",
		"student_name": "Jane Doe",
		"duration":     3600,
		"size_bytes":   1048576,
	})
	req := httptest.NewRequest("POST", "/api/recordings", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to send request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusCreated {
		t.Errorf("Expected status 201, got %d", resp.StatusCode)
	}

	result := decodeBody(t, resp.Body)
	if result["status"] != "active" {
		t.Errorf("Expected active status, got %v", result["status"])
	}
	if result["id"] == "" || result["id"] == nil {
		t.Error("Expected a generated recording id")
	}
	if result["expires_at"] == nil {
		t.Error("Expected 'expires_at' field in response")
	}
}

// TestRecordingHandler_CreateValidation tests the 400 path
func TestRecordingHandler_CreateValidation(t *testing.T) {
	app, retention, reports := setupTestApp(t)

	handler := NewRecordingHandler(retention, reports, nil)
	app.Post("/api/recordings", handler.Create)

	payload, _ := json.Marshal(map[string]interface{}{"student_name": "No ID"})
	req := httptest.NewRequest("POST", "/api/recordings", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to send request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.StatusCode)
	}

	result := decodeBody(t, resp.Body)
	if result["field"] != "student_id" {
		t.Errorf("Expected field 'student_id', got %v", result["field"])
	}
}

// TestEventHandler_CreateAndListByStudent tests ingestion plus the
// per-subject listing, newest first
func TestEventHandler_CreateAndListByStudent(t *testing.T) {
	app, retention, reports := setupTestApp(t)

	handler := NewEventHandler(retention, reports, nil, nil)
	app.Post("/api/events", handler.Create)
	app.Get("/api/students/:id/events", handler.ListByStudent)

	base := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"first", "second"} {
		payload, _ := json.Marshal(map[string]interface{}{
			"id":         id,
			"student_id": "s1",
			"timestamp":  base.Add(time.Duration(i) * time.Minute).Format(time.RFC3339),
			"type":       "gaze_deviation",
			"severity":   "high",
			"score":      "75.500",
		})
		req := httptest.NewRequest("POST", "/api/events", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("Failed to send request: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != fiber.StatusCreated {
			t.Fatalf("Expected status 201, got %d", resp.StatusCode)
		}
	}

	req := httptest.NewRequest("GET", "/api/students/s1/events", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to send request: %v", err)
	}
	defer resp.Body.Close()

	result := decodeBody(t, resp.Body)
	if result["count"] != float64(2) {
		t.Fatalf("Expected 2 events, got %v", result["count"])
	}

	events := result["events"].([]interface{})
	newest := events[0].(map[string]interface{})
	if newest["id"] != "second" {
		t.Errorf("Expected newest event first, got %v", newest["id"])
	}
}

// TestReportHandler_RedactedByDefault tests that the public report masks
// every score field
func TestReportHandler_RedactedByDefault(t *testing.T) {
	app, retention, reports := setupTestApp(t)

	eventHandler := NewEventHandler(retention, reports, nil, nil)
	reportHandler := NewReportHandler(reports, nil, "")
	app.Post("/api/events", eventHandler.Create)
	app.Get("/api/students/:id/report", reportHandler.GetStudentReport)

	payload, _ := json.Marshal(map[string]interface{}{
		"student_id": "s1",
		"type":       "face_lost",
		"severity":   "low",
		"score":      "10.000",
	})
	req := httptest.NewRequest("POST", "/api/events", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to send request: %v", err)
	}
	resp.Body.Close()

	req = httptest.NewRequest("GET", "/api/students/s1/report", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to send request: %v", err)
	}
	defer resp.Body.Close()

	result := decodeBody(t, resp.Body)
	if result["average_score"] != "***" {
		t.Errorf("Expected redacted average, got %v", result["average_score"])
	}
	events := result["events"].([]interface{})
	if events[0].(map[string]interface{})["score"] != "***" {
		t.Error("Expected redacted event score")
	}
}

// TestReportHandler_DetailedRequiresKey tests the detailed-report gate
func TestReportHandler_DetailedRequiresKey(t *testing.T) {
	app, _, reports := setupTestApp(t)

	handler := NewReportHandler(reports, nil, "secret-key")
	app.Get("/api/students/:id/report", handler.GetStudentReport)

	req := httptest.NewRequest("GET", "/api/students/s1/report?detailed=true", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to send request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("Expected status 403 without key, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest("GET", "/api/students/s1/report?detailed=true", nil)
	req.Header.Set("X-API-Key", "secret-key")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to send request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("Expected status 200 with key, got %d", resp.StatusCode)
	}
}

// TestLegalReportHandler_TextFormat tests the flattened rendering
func TestLegalReportHandler_TextFormat(t *testing.T) {
	app, retention, _ := setupTestApp(t)

	legal := services.NewLegalReportService(retention, testConfig())
	handler := NewLegalReportHandler(legal, nil)
	app.Get("/api/students/:id/legal-report", handler.GetLegalReport)

	req := httptest.NewRequest("GET", "/api/students/s1/legal-report?format=text&name=Jane", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to send request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Expected text/plain content type, got %s", ct)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response: %v", err)
	}
	text := string(body)
	if !strings.Contains(text, "PROC-") {
		t.Error("Expected case number in rendered text")
	}
	if !strings.Contains(text, "ACADEMIC INTEGRITY INCIDENT REPORT") {
		t.Error("Expected report title in rendered text")
	}
}

// TestAdminHandler_Cleanup tests the manual sweep endpoint
func TestAdminHandler_Cleanup(t *testing.T) {
	app, retention, _ := setupTestApp(t)

	scheduler := jobs.NewJobScheduler()
	handler := NewAdminHandler(retention, scheduler)
	app.Post("/api/admin/cleanup", handler.TriggerCleanup)
	app.Get("/api/retention/stats", handler.RetentionStats)

	req := httptest.NewRequest("POST", "/api/admin/cleanup", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to send request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	result := decodeBody(t, resp.Body)
	for _, field := range []string{"expired_recordings", "deleted_recordings", "deleted_events"} {
		if _, ok := result[field]; !ok {
			t.Errorf("Expected '%s' field in response", field)
		}
	}

	req = httptest.NewRequest("GET", "/api/retention/stats", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to send request: %v", err)
	}
	defer resp.Body.Close()

	stats := decodeBody(t, resp.Body)
	if stats["retention_hours"] != float64(24) {
		t.Errorf("Expected retention_hours 24, got %v", stats["retention_hours"])
	}
}
