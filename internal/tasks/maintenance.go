package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"
)

// DefaultAuditRetentionDays applies when a task carries no retention.
const DefaultAuditRetentionDays = 30

// Queue names, also shown in task status responses.
const (
	QueueCleanupAuditEvents = "cleanup_audit_events"
	QueuePruneMissingMedia  = "prune_missing_media"
)

// keepFinished holds finished tasks for a day; payloads only of failures.
func keepFinished() *backlite.Retention {
	return &backlite.Retention{
		Duration: 24 * time.Hour,
		Data:     &backlite.RetainData{OnlyFailed: true},
	}
}

// AuditEventCleaner deletes audit events older than a retention window.
type AuditEventCleaner interface {
	DeleteOldEvents(retention time.Duration) (int64, error)
}

// CleanupAuditEventsTask removes audit events older than RetentionDays.
type CleanupAuditEventsTask struct {
	RetentionDays int `json:"retention_days"`
}

func (t CleanupAuditEventsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        QueueCleanupAuditEvents,
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention:   keepFinished(),
	}
}

// CleanupAuditEventsProcessor creates a processor for CleanupAuditEventsTask.
func CleanupAuditEventsProcessor(cleaner AuditEventCleaner) backlite.QueueProcessor[CleanupAuditEventsTask] {
	return func(ctx context.Context, task CleanupAuditEventsTask) error {
		days := task.RetentionDays
		if days <= 0 {
			days = DefaultAuditRetentionDays
		}

		deleted, err := cleaner.DeleteOldEvents(time.Duration(days) * 24 * time.Hour)
		if err != nil {
			return fmt.Errorf("cleanup audit events: %w", err)
		}
		zap.S().Infow("cleaned up audit events", "deleted", deleted, "retention_days", days)
		return nil
	}
}

func NewCleanupAuditEventsQueue(cleaner AuditEventCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupAuditEventsProcessor(cleaner))
}

// MediaPruner removes catalogue entries whose stored file has vanished.
type MediaPruner interface {
	PruneMissing(ctx context.Context) (int, error)
}

// PruneReporter is told the outcome of each prune run that changed something.
type PruneReporter interface {
	LogMediaPrune(pruned int, err error)
}

// PruneMissingMediaTask deletes media items whose local file no longer
// exists. A documentation asset pointing at one becomes unconfigured.
type PruneMissingMediaTask struct{}

func (t PruneMissingMediaTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        QueuePruneMissingMedia,
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     5 * time.Minute,
		Retention:   keepFinished(),
	}
}

// PruneMissingMediaProcessor creates a processor for PruneMissingMediaTask.
// reporter may be nil.
func PruneMissingMediaProcessor(pruner MediaPruner, reporter PruneReporter) backlite.QueueProcessor[PruneMissingMediaTask] {
	return func(ctx context.Context, _ PruneMissingMediaTask) error {
		pruned, err := pruner.PruneMissing(ctx)
		if reporter != nil && (pruned > 0 || err != nil) {
			reporter.LogMediaPrune(pruned, err)
		}
		if err != nil {
			return err
		}

		zap.S().Infow("pruned media with missing files", "pruned", pruned)
		return nil
	}
}

func NewPruneMissingMediaQueue(pruner MediaPruner, reporter PruneReporter) backlite.Queue {
	return backlite.NewQueue(PruneMissingMediaProcessor(pruner, reporter))
}
