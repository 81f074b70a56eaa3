// Package scheduler triggers periodic maintenance on the task queue.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mrlokans/sitedocs/internal/tasks"
)

// Enqueuer adds tasks to the queue.
type Enqueuer interface {
	Enqueue(task backlite.Task) (string, error)
}

// Config controls the maintenance schedule.
type Config struct {
	Schedule           string // standard 5-field cron expression
	AuditRetentionDays int
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule reports whether schedule is a valid 5-field cron expression.
func ValidateSchedule(schedule string) error {
	if _, err := cronParser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	return nil
}

// MaintenanceScheduler enqueues audit cleanup and media pruning on a cron schedule.
type MaintenanceScheduler struct {
	queue  Enqueuer
	config Config

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
}

// NewMaintenanceScheduler creates a scheduler. Call Start to activate it.
func NewMaintenanceScheduler(queue Enqueuer, cfg Config) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		queue:  queue,
		config: cfg,
		cron:   cron.New(cron.WithParser(cronParser)),
	}
}

// Start schedules the maintenance job and stops it when ctx is done.
func (s *MaintenanceScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateSchedule(s.config.Schedule); err != nil {
		return err
	}

	entryID, err := s.cron.AddFunc(s.config.Schedule, func() {
		if _, err := s.RunNow(); err != nil {
			zap.S().Errorw("maintenance: failed to enqueue tasks", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule maintenance job: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	zap.S().Infow("maintenance scheduler started", "schedule", s.config.Schedule, "next_run", s.cron.Entry(entryID).Next)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *MaintenanceScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.cron.Remove(s.entryID)
	s.isRunning = false

	zap.S().Info("maintenance scheduler stopped")
}

// RunNow enqueues one round of maintenance and returns the task IDs.
func (s *MaintenanceScheduler) RunNow() ([]string, error) {
	batch := []backlite.Task{
		tasks.CleanupAuditEventsTask{RetentionDays: s.config.AuditRetentionDays},
		tasks.PruneMissingMediaTask{},
	}

	ids := make([]string, 0, len(batch))
	for _, task := range batch {
		id, err := s.queue.Enqueue(task)
		if err != nil {
			return ids, fmt.Errorf("enqueue %s: %w", task.Config().Name, err)
		}
		ids = append(ids, id)
	}

	zap.S().Infow("maintenance enqueued", "task_ids", ids)
	return ids, nil
}

// IsRunning returns whether the scheduler is active.
func (s *MaintenanceScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns when maintenance will next be enqueued, nil when stopped.
func (s *MaintenanceScheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	next := s.cron.Entry(s.entryID).Next
	return &next
}
