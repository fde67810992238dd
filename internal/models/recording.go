package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecordingStatus tracks the retention lifecycle of a session recording.
// Transitions only move forward: active -> expired -> (removed from store).
type RecordingStatus string

const (
	RecordingActive  RecordingStatus = "active"
	RecordingExpired RecordingStatus = "expired"
	RecordingDeleted RecordingStatus = "deleted"
)

// IsValid reports whether the status is one of the known lifecycle states.
func (s RecordingStatus) IsValid() bool {
	switch s {
	case RecordingActive, RecordingExpired, RecordingDeleted:
		return true
	}
	return false
}

// Recording is a registered proctoring-session recording artifact.
// Size and duration are immutable after creation; only Status and EndTime
// change later, and only via the cleanup job or an explicit delete.
type Recording struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	RecordingID string             `bson:"recordingId" json:"id"`
	StudentID   string             `bson:"studentId" json:"student_id"`
	StudentName string             `bson:"studentName" json:"student_name"`
	StartTime   time.Time          `bson:"startTime" json:"start_time"`
	EndTime     *time.Time         `bson:"endTime,omitempty" json:"end_time,omitempty"`
	Duration    int64              `bson:"duration" json:"duration"` // seconds
	StoragePath string             `bson:"storagePath" json:"storage_path"`
	SizeBytes   int64              `bson:"sizeBytes" json:"size_bytes"`
	ExpiresAt   time.Time          `bson:"expiresAt" json:"expires_at"`
	Status      RecordingStatus    `bson:"status" json:"status"`
}

// IsActive reports whether the recording is still inside its retention window.
func (r *Recording) IsActive(now time.Time) bool {
	return r.Status == RecordingActive && r.ExpiresAt.After(now)
}

// CreateRecordingRequest is the payload for registering a recording.
// ExpiresAt and Status are computed server-side and cannot be supplied.
type CreateRecordingRequest struct {
	ID          string     `json:"id"`
	StudentID   string     `json:"student_id"`
	StudentName string     `json:"student_name"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	Duration    int64      `json:"duration"`
	StoragePath string     `json:"storage_path"`
	SizeBytes   int64      `json:"size_bytes"`
}

// CleanupResult reports what a retention sweep did.
type CleanupResult struct {
	ExpiredRecordings int `json:"expired_recordings"`
	DeletedRecordings int `json:"deleted_recordings"`
	DeletedEvents     int `json:"deleted_events"`
}
