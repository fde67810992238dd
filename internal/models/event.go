package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventType classifies what a proctoring detection flagged.
type EventType string

const (
	EventFaceLost         EventType = "face_lost"
	EventMultipleFaces    EventType = "multiple_faces"
	EventAudioAnomaly     EventType = "audio_anomaly"
	EventGazeDeviation    EventType = "gaze_deviation"
	EventSuspiciousObject EventType = "suspicious_object"
)

// IsValid reports whether the type is one of the enumerated detections.
// Unknown types are still stored and rendered via fallback text.
func (t EventType) IsValid() bool {
	switch t {
	case EventFaceLost, EventMultipleFaces, EventAudioAnomaly, EventGazeDeviation, EventSuspiciousObject:
		return true
	}
	return false
}

// EventSeverity grades how serious a flagged event is.
type EventSeverity string

const (
	SeverityLow      EventSeverity = "low"
	SeverityMedium   EventSeverity = "medium"
	SeverityHigh     EventSeverity = "high"
	SeverityCritical EventSeverity = "critical"
)

// IsValid reports whether the severity is one of the enumerated grades.
func (s EventSeverity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// FlaggedEvent is a single suspicious incident recorded during a session.
// Type, severity and score are immutable after creation; the event is
// excluded from all reads once ExpiresAt passes and purged on the next
// cleanup sweep.
type FlaggedEvent struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	EventID     string             `bson:"eventId" json:"id"`
	StudentID   string             `bson:"studentId" json:"student_id"`
	Timestamp   time.Time          `bson:"timestamp" json:"timestamp"`
	Type        EventType          `bson:"type" json:"type"`
	Severity    EventSeverity      `bson:"severity" json:"severity"`
	Score       string             `bson:"score" json:"score"` // fixed 3-decimal string, e.g. "75.500"
	Screenshot  string             `bson:"screenshot,omitempty" json:"screenshot,omitempty"`
	Description string             `bson:"description" json:"description"`
	ExpiresAt   time.Time          `bson:"expiresAt" json:"expires_at"`
}

// IsActive reports whether the event is still inside its retention window.
func (e *FlaggedEvent) IsActive(now time.Time) bool {
	return e.ExpiresAt.After(now)
}

// CreateEventRequest is the payload for flagging an event.
// ExpiresAt is computed server-side and cannot be supplied.
type CreateEventRequest struct {
	ID          string        `json:"id"`
	StudentID   string        `json:"student_id"`
	Timestamp   time.Time     `json:"timestamp"`
	Type        EventType     `json:"type"`
	Severity    EventSeverity `json:"severity"`
	Score       string        `json:"score"`
	Screenshot  string        `json:"screenshot,omitempty"`
	Description string        `json:"description"`
}
