package jobs

import (
	"context"
	"fmt"
	"time"

	"quizmaster/internal/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const sweepTimeout = 2 * time.Minute

// Sweeper expires abandoned attempts.
type Sweeper interface {
	Enabled() bool
	ExpireAbandoned(ctx context.Context) (int64, error)
}

// Scheduler runs background maintenance on cron schedules.
type Scheduler struct {
	cron *cron.Cron
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger))),
	}
}

// AddExpirySweep registers the abandoned attempt sweep. It is a no-op when the
// sweeper is disabled.
func (s *Scheduler) AddExpirySweep(schedule string, sweeper Sweeper) error {
	if !sweeper.Enabled() {
		logger.Get().Info("Abandoned attempt expiry disabled, sweep not scheduled")
		return nil
	}
	_, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		_, _ = sweeper.ExpireAbandoned(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	logger.Get().Info("Abandoned attempt sweep scheduled", zap.String("schedule", schedule))
	return nil
}

// Jobs reports how many jobs are registered.
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		logger.Get().Warn("Scheduler stop timed out with jobs still running")
	}
}
