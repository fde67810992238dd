package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"examguard/internal/models"
)

// MemoryRecordingRepository keeps recordings in process memory. Used in
// tests and as a degraded mode when MongoDB is not configured; data does not
// survive a restart.
type MemoryRecordingRepository struct {
	mu         sync.RWMutex
	recordings []models.Recording
}

// NewMemoryRecordingRepository creates an in-memory recording repository.
func NewMemoryRecordingRepository() *MemoryRecordingRepository {
	return &MemoryRecordingRepository{}
}

func (r *MemoryRecordingRepository) Append(_ context.Context, rec *models.Recording) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recordings = append(r.recordings, *rec)
	return nil
}

func (r *MemoryRecordingRepository) All(_ context.Context) ([]models.Recording, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Recording, len(r.recordings))
	copy(out, r.recordings)
	return out, nil
}

func (r *MemoryRecordingRepository) Active(_ context.Context, now time.Time) ([]models.Recording, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Recording{}
	for i := range r.recordings {
		if r.recordings[i].IsActive(now) {
			out = append(out, r.recordings[i])
		}
	}
	return out, nil
}

func (r *MemoryRecordingRepository) MarkExpired(_ context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	flipped := 0
	for i := range r.recordings {
		rec := &r.recordings[i]
		if rec.Status == models.RecordingActive && !rec.ExpiresAt.After(now) {
			rec.Status = models.RecordingExpired
			flipped++
		}
	}
	return flipped, nil
}

func (r *MemoryRecordingRepository) DeleteExpiredBefore(_ context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.recordings[:0]
	removed := 0
	for i := range r.recordings {
		rec := r.recordings[i]
		if rec.Status == models.RecordingExpired && !rec.ExpiresAt.After(cutoff) {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	r.recordings = kept
	return removed, nil
}

// MemoryEventRepository keeps flagged events in process memory.
type MemoryEventRepository struct {
	mu     sync.RWMutex
	events []models.FlaggedEvent
}

// NewMemoryEventRepository creates an in-memory event repository.
func NewMemoryEventRepository() *MemoryEventRepository {
	return &MemoryEventRepository{}
}

func (r *MemoryEventRepository) Append(_ context.Context, ev *models.FlaggedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *ev)
	return nil
}

func (r *MemoryEventRepository) All(_ context.Context) ([]models.FlaggedEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.FlaggedEvent, len(r.events))
	copy(out, r.events)
	return out, nil
}

func (r *MemoryEventRepository) Active(_ context.Context, now time.Time) ([]models.FlaggedEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.FlaggedEvent{}
	for i := range r.events {
		if r.events[i].IsActive(now) {
			out = append(out, r.events[i])
		}
	}
	return out, nil
}

func (r *MemoryEventRepository) ActiveByStudent(_ context.Context, studentID string, now time.Time) ([]models.FlaggedEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.FlaggedEvent{}
	for i := range r.events {
		ev := r.events[i]
		if ev.StudentID == studentID && ev.IsActive(now) {
			out = append(out, ev)
		}
	}
	// Stable sort: equal timestamps keep insertion order.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

func (r *MemoryEventRepository) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.events[:0]
	removed := 0
	for i := range r.events {
		ev := r.events[i]
		if !ev.ExpiresAt.After(now) {
			removed++
			continue
		}
		kept = append(kept, ev)
	}
	r.events = kept
	return removed, nil
}
