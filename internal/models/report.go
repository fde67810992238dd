package models

import "time"

// RedactedScore replaces score fields in reports generated for viewers
// without access to detailed data.
const RedactedScore = "***"

// ReportEvent is a single event as it appears in a student report.
// Score is either a 3-decimal string or RedactedScore.
type ReportEvent struct {
	ID          string        `json:"id"`
	Timestamp   time.Time     `json:"timestamp"`
	Type        EventType     `json:"type"`
	Severity    EventSeverity `json:"severity"`
	Score       string        `json:"score"`
	Screenshot  string        `json:"screenshot,omitempty"`
	Description string        `json:"description"`
}

// ReportRecording is a recording summary inside a student report.
type ReportRecording struct {
	ID        string          `json:"id"`
	StartTime time.Time       `json:"start_time"`
	Duration  int64           `json:"duration"`
	SizeBytes int64           `json:"size_bytes"`
	Status    RecordingStatus `json:"status"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// StudentReport is a point-in-time summary of a student's unexpired events
// and recordings. It is derived data: never persisted by this service.
type StudentReport struct {
	StudentID        string                `json:"student_id"`
	StudentName      string                `json:"student_name"`
	GeneratedAt      time.Time             `json:"generated_at"`
	Detailed         bool                  `json:"detailed"`
	TotalEvents      int                   `json:"total_events"`
	EventsByType     map[EventType]int     `json:"events_by_type"`
	EventsBySeverity map[EventSeverity]int `json:"events_by_severity"`
	AverageScore     string                `json:"average_score"` // "0.000" when no parseable scores
	TotalRecordings  int                   `json:"total_recordings"`
	TotalDuration    int64                 `json:"total_duration"` // seconds
	Events           []ReportEvent         `json:"events"`
	Recordings       []ReportRecording     `json:"recordings"`
}

// RetentionStats describes the current state of the retention store,
// exposed for monitoring.
type RetentionStats struct {
	TotalRecordings   int       `json:"total_recordings"`
	ActiveRecordings  int       `json:"active_recordings"`
	ExpiredRecordings int       `json:"expired_recordings"`
	TotalEvents       int       `json:"total_events"`
	ActiveEvents      int       `json:"active_events"`
	RetentionHours    int       `json:"retention_hours"`
	GracePeriodDays   int       `json:"grace_period_days"`
	RecordingCutoff   time.Time `json:"recording_cutoff"`
}
