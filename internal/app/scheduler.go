package app

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the maintenance jobs on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	jobs     *Jobs
	schedule string
	logger   *slog.Logger
}

// NewScheduler creates a scheduler with panic recovery around each job.
func NewScheduler(jobs *Jobs, schedule string, logger *slog.Logger) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger)))
	return &Scheduler{cron: c, jobs: jobs, schedule: schedule, logger: logger}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() {
	if _, err := s.cron.AddFunc(s.schedule, s.jobs.ReconcileStalePaymentSessions); err != nil {
		s.logger.Error("failed to schedule payment reconciliation job", "error", err)
	} else {
		s.logger.Info("scheduled payment reconciliation job", "schedule", s.schedule)
	}
	s.cron.Start()
}

// Stop gracefully stops the scheduler, returning a context that is done
// once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
