package jobs

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Settings configures the scheduled jobs. Zero values use the job defaults.
type Settings struct {
	BacklogSchedule string
	RunTimeout      time.Duration
}

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	pendingBacklogJob *PendingBacklogJob
}

// NewJobManager creates a new job manager with all required jobs. The
// schedule is parsed here so that a bad value fails at startup.
func NewJobManager(
	counter PendingCounter,
	gauge BacklogGauge,
	settings Settings,
	logger *slog.Logger,
) (*JobManager, error) {
	if settings.BacklogSchedule != "" {
		parser := cron.NewParser(
			cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
		)
		if _, err := parser.Parse(settings.BacklogSchedule); err != nil {
			return nil, fmt.Errorf("invalid backlog schedule %q: %w", settings.BacklogSchedule, err)
		}
	}

	return &JobManager{
		pendingBacklogJob: NewPendingBacklogJob(counter, gauge, settings.BacklogSchedule, settings.RunTimeout, logger),
	}, nil
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.pendingBacklogJob.Start(); err != nil {
		return fmt.Errorf("failed to start pending backlog job: %w", err)
	}
	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.pendingBacklogJob.Stop()
}
