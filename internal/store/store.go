package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"examguard/internal/models"
)

// RecordingRepository is the backing storage for session recordings.
// Implementations append whole records and never rewrite fields other than
// status; retention policy (windows, cutoffs) lives in the service layer.
type RecordingRepository interface {
	Append(ctx context.Context, rec *models.Recording) error
	All(ctx context.Context) ([]models.Recording, error)
	Active(ctx context.Context, now time.Time) ([]models.Recording, error)

	// MarkExpired flips every active recording whose expiry has passed to
	// expired and returns how many were flipped.
	MarkExpired(ctx context.Context, now time.Time) (int, error)

	// DeleteExpiredBefore removes expired recordings whose expiry lies at or
	// before the cutoff (expiry + grace period already applied by caller).
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// EventRepository is the backing storage for flagged events.
type EventRepository interface {
	Append(ctx context.Context, ev *models.FlaggedEvent) error
	All(ctx context.Context) ([]models.FlaggedEvent, error)
	Active(ctx context.Context, now time.Time) ([]models.FlaggedEvent, error)

	// ActiveByStudent returns unexpired events for one subject sorted by
	// timestamp descending; equal timestamps keep insertion order.
	ActiveByStudent(ctx context.Context, studentID string, now time.Time) ([]models.FlaggedEvent, error)

	// DeleteExpired removes every event whose expiry has passed and returns
	// how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// CorruptionError reports that a persisted collection could not be decoded.
// Callers decide whether to reset the store or abort; the repositories never
// fabricate data in place of what they cannot read.
type CorruptionError struct {
	Collection string
	Err        error
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("store corruption in %s: %v", e.Collection, e.Err)
}

func (e *CorruptionError) Unwrap() error {
	return e.Err
}

// IsCorruption reports whether err is a store corruption error.
func IsCorruption(err error) bool {
	var ce *CorruptionError
	return errors.As(err, &ce)
}
