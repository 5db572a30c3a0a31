package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aviary-labs/bridgefeed-cli/internal/core/ports/driving"
	"github.com/aviary-labs/bridgefeed-cli/internal/logger"
)

// Scheduler runs the sync on a fixed interval until stopped.
//
// Ticks are single-flight: a tick that fires while a run is still active is
// skipped, so at most one run ever holds the sync state. Fatal run errors
// are logged and the loop keeps going; the next tick gets a fresh chance.
type Scheduler struct {
	runner   driving.SyncRunner
	interval time.Duration
	opts     driving.RunOptions

	mu      sync.Mutex
	running bool
	active  atomic.Bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler that triggers runner every interval.
func NewScheduler(runner driving.SyncRunner, interval time.Duration, opts driving.RunOptions) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
		opts:     opts,
	}
}

// Start begins the scheduler loop. Blocks until the context is cancelled or
// Stop is called. The first run fires immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// Stop gracefully shuts down the scheduler, waiting for an active run.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// tick starts a run unless one is already in flight.
func (s *Scheduler) tick(ctx context.Context) {
	if !s.tryAcquire() {
		logger.Warn("Previous run still active; skipping this interval")
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.release()

		report, err := s.runner.Run(ctx, s.opts)
		if err != nil {
			logger.Error("Scheduled run failed: %v", err)
			return
		}
		logger.Info("Scheduled run: %d fetched, %d synced, %d failed",
			report.Fetched, report.Synced, report.Failed)
	}()
}

func (s *Scheduler) tryAcquire() bool {
	return s.active.CompareAndSwap(false, true)
}

func (s *Scheduler) release() {
	s.active.Store(false)
}
