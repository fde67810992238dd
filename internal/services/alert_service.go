package services

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"examguard/internal/models"

	"golang.org/x/time/rate"
)

// AlertChannel is the Redis channel incident alerts are published on.
const AlertChannel = "examguard:alerts"

// IncidentAlert is the JSON payload pushed to external sinks when a
// high-severity event is flagged. Fire-and-forget: no response contract.
type IncidentAlert struct {
	EventID     string               `json:"event_id"`
	StudentID   string               `json:"student_id"`
	Type        models.EventType     `json:"type"`
	Severity    models.EventSeverity `json:"severity"`
	Score       string               `json:"score"`
	Description string               `json:"description"`
	FlaggedAt   time.Time            `json:"flagged_at"`
}

// AlertService fans flagged incidents out to a Redis channel and an
// optional HTTP webhook. Delivery is best-effort: failures are logged and
// dropped, and the webhook is rate-limited so a detection burst cannot
// flood the external service.
type AlertService struct {
	redis      *RedisService
	webhookURL string
	client     *http.Client
	limiter    *rate.Limiter
}

// NewAlertService creates an alert service. Either sink may be nil/empty.
func NewAlertService(redis *RedisService, webhookURL string) *AlertService {
	return &AlertService{
		redis:      redis,
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(2), 10), // 2 posts/s, burst 10
	}
}

// NotifyEvent publishes an alert for high and critical events. Lower
// severities are stored but not alerted on.
func (s *AlertService) NotifyEvent(ev *models.FlaggedEvent) {
	if ev.Severity != models.SeverityHigh && ev.Severity != models.SeverityCritical {
		return
	}

	alert := IncidentAlert{
		EventID:     ev.EventID,
		StudentID:   ev.StudentID,
		Type:        ev.Type,
		Severity:    ev.Severity,
		Score:       ev.Score,
		Description: ev.Description,
		FlaggedAt:   ev.Timestamp,
	}

	payload, err := json.Marshal(alert)
	if err != nil {
		log.Printf("❌ [ALERT] Failed to marshal alert for event %s: %v", ev.EventID, err)
		return
	}

	go s.deliver(payload, ev.EventID)
}

func (s *AlertService) deliver(payload []byte, eventID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if s.redis != nil {
		if err := s.redis.Publish(ctx, AlertChannel, payload); err != nil {
			log.Printf("⚠️  [ALERT] Redis publish failed for event %s: %v", eventID, err)
		}
	}

	if s.webhookURL == "" {
		return
	}

	if !s.limiter.Allow() {
		log.Printf("⚠️  [ALERT] Webhook rate limit hit, dropping alert for event %s", eventID)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(payload))
	if err != nil {
		log.Printf("⚠️  [ALERT] Failed to build webhook request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("⚠️  [ALERT] Webhook delivery failed for event %s: %v", eventID, err)
		return
	}
	resp.Body.Close()

	log.Printf("📣 [ALERT] Delivered alert for event %s (status %d)", eventID, resp.StatusCode)
}
