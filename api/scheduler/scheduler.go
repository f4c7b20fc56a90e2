// Package scheduler runs the periodic presence sweep on a cron cadence.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper is the slice of the engine the scheduler drives.
type Sweeper interface {
	Sweep(ctx context.Context) ([]string, error)
}

// Scheduler owns the cron instance behind the eviction sweep. Each run gets
// its own context and timeout, independent of any client request.
type Scheduler struct {
	cron     *cron.Cron
	engine   Sweeper
	interval time.Duration
	timeout  time.Duration
}

// New creates a scheduler that sweeps every interval, bounding each run by
// timeout.
func New(engine Sweeper, interval, timeout time.Duration) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		engine:   engine,
		interval: interval,
		timeout:  timeout,
	}
}

// Start registers the sweep job and begins the cron loop.
func (s *Scheduler) Start() {
	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), s.runSweep)
	if err != nil {
		zap.S().Errorw("failed to register sweep job", "error", err)
		return
	}

	s.cron.Start()
	zap.S().Infow("presence sweep scheduler started", "interval", s.interval)
}

// Stop halts the cron loop and waits for an in-flight sweep to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("presence sweep scheduler stopped")
}

func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	runID := uuid.New().String()
	evicted, err := s.engine.Sweep(ctx)
	if err != nil {
		zap.S().Errorw("sweep run failed",
			"runId", runID,
			"error", err,
		)
		return
	}
	if len(evicted) > 0 {
		zap.S().Infow("sweep evicted inactive participants",
			"runId", runID,
			"evicted", evicted,
		)
	}
}
