package jobs

import (
	"context"
	"log"
	"time"

	"examguard/internal/models"
	"examguard/internal/services"
)

// RetentionCleanupJob runs both retention sweeps: the two-phase recording
// sweep (expire, then remove past the grace period) and the event purge.
// Each tick is independent and idempotent.
type RetentionCleanupJob struct {
	retention *services.RetentionService
	metrics   *services.Metrics
	interval  time.Duration
}

// NewRetentionCleanupJob creates a new retention cleanup job. metrics may
// be nil (tests).
func NewRetentionCleanupJob(retention *services.RetentionService, metrics *services.Metrics, interval time.Duration) *RetentionCleanupJob {
	if interval <= 0 {
		interval = time.Hour
	}
	return &RetentionCleanupJob{
		retention: retention,
		metrics:   metrics,
		interval:  interval,
	}
}

// Run executes one cleanup pass. A failure in the recording sweep does not
// skip the event purge; both errors are logged and the first is returned so
// the scheduler can record the failed tick.
func (j *RetentionCleanupJob) Run(ctx context.Context) error {
	log.Println("🧹 [CLEANUP] Starting retention cleanup...")
	startTime := time.Now()

	result := models.CleanupResult{}

	expired, deleted, recErr := j.retention.CleanupExpiredRecordings(ctx)
	if recErr != nil {
		log.Printf("❌ [CLEANUP] Recording sweep failed: %v", recErr)
	} else {
		result.ExpiredRecordings = expired
		result.DeletedRecordings = deleted
	}

	purged, evErr := j.retention.CleanupExpiredEvents(ctx)
	if evErr != nil {
		log.Printf("❌ [CLEANUP] Event purge failed: %v", evErr)
	} else {
		result.DeletedEvents = purged
	}

	duration := time.Since(startTime)
	if j.metrics != nil {
		j.metrics.RecordCleanup(result.ExpiredRecordings, result.DeletedRecordings, result.DeletedEvents, duration.Seconds())
	}

	log.Printf("✅ [CLEANUP] Sweep complete: %d recordings expired, %d removed, %d events purged in %v",
		result.ExpiredRecordings, result.DeletedRecordings, result.DeletedEvents, duration)

	if recErr != nil {
		return recErr
	}
	return evErr
}

// GetNextRunTime returns when the job should run next (fixed interval,
// 1 hour by default).
func (j *RetentionCleanupJob) GetNextRunTime() time.Time {
	return time.Now().UTC().Add(j.interval)
}
