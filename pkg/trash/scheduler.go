package trash

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs PurgeOldItems on a cron schedule.
type Scheduler struct {
	manager  *Manager
	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
	stop     chan struct{} // closed when the current run stops
}

// NewScheduler creates a purge scheduler for m. schedule is a standard
// five-field cron expression; an empty schedule disables the scheduler.
func NewScheduler(m *Manager, schedule string) *Scheduler {
	return &Scheduler{
		manager:  m,
		schedule: schedule,
		cron:     cron.New(),
		logger:   m.logger.With("component", "trash.scheduler"),
	}
}

// Start begins scheduled purging. It stops when ctx is cancelled.
//
// Common cron expressions:
//   - "0 3 * * *"    - Daily at 3 AM
//   - "0 */6 * * *"  - Every 6 hours
//   - "0 0 * * 0"    - Weekly on Sunday at midnight
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("purge schedule not configured, skipping scheduler")
		return nil
	}
	if s.running {
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}
	// Drop the job of an earlier run so a restart does not double it.
	for _, e := range s.cron.Entries() {
		s.cron.Remove(e.ID)
	}
	if _, err := s.cron.AddFunc(s.schedule, func() { s.runPurge(ctx) }); err != nil {
		return fmt.Errorf("scheduling purge: %w", err)
	}

	stop := make(chan struct{})
	s.cron.Start()
	s.running = true
	s.stop = stop
	s.logger.Info("purge scheduler started", "schedule", s.schedule)

	go func() {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.stop == stop {
				s.stopLocked()
			}
		case <-stop:
		}
	}()
	return nil
}

func (s *Scheduler) runPurge(ctx context.Context) {
	s.logger.Debug("starting scheduled purge")

	deleted, err := s.manager.PurgeOldItems(ctx)
	if err != nil {
		s.logger.Error("scheduled purge failed", "error", err, "deleted_count", deleted)
		return
	}
	if deleted > 0 {
		s.logger.Info("scheduled purge completed", "deleted_count", deleted)
	} else {
		s.logger.Debug("scheduled purge completed, nothing deleted")
	}
}

// Stop stops the scheduler and waits for a running purge to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Scheduler) stopLocked() {
	if !s.running {
		return
	}
	close(s.stop)
	s.stop = nil
	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info("purge scheduler stopped")
}

// IsRunning reports whether the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled purge, or nil when none is scheduled.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if !s.running || len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
