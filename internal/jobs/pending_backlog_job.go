package jobs

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/order"

	"github.com/robfig/cron/v3"
)

const (
	// DefaultBacklogSchedule runs the backlog job every 15 seconds.
	DefaultBacklogSchedule = "*/15 * * * * *"
	// DefaultRunTimeout bounds one run of a job.
	DefaultRunTimeout = 5 * time.Second
)

// PendingCounter is satisfied by queries.CountOrdersByStatusQueryHandler.
type PendingCounter interface {
	Handle(ctx context.Context, q queries.CountOrdersByStatusQuery) (int64, error)
}

// BacklogGauge receives the latest pending-order count.
type BacklogGauge interface {
	PendingBacklog(count int64)
}

// PendingBacklogJob periodically counts pending orders and publishes the
// result to a gauge.
type PendingBacklogJob struct {
	counter  PendingCounter
	gauge    BacklogGauge
	schedule string
	timeout  time.Duration
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewPendingBacklogJob creates the job. An empty schedule means
// DefaultBacklogSchedule and a non-positive timeout means DefaultRunTimeout.
func NewPendingBacklogJob(
	counter PendingCounter,
	gauge BacklogGauge,
	schedule string,
	timeout time.Duration,
	logger *slog.Logger,
) *PendingBacklogJob {
	if schedule == "" {
		schedule = DefaultBacklogSchedule
	}
	if timeout <= 0 {
		timeout = DefaultRunTimeout
	}
	logger = logger.With("component", "pending_backlog_job")
	return &PendingBacklogJob{
		counter:  counter,
		gauge:    gauge,
		schedule: schedule,
		timeout:  timeout,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger: logger})),
		),
		logger: logger,
	}
}

// Start schedules the job. An invalid schedule is returned as an error.
func (j *PendingBacklogJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		defer cancel()
		j.Run(ctx)
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("Pending backlog job started", "schedule", j.schedule)
	return nil
}

// Run performs one count. A failed count leaves the gauge at its last value.
func (j *PendingBacklogJob) Run(ctx context.Context) {
	q, err := queries.NewCountOrdersByStatusQuery(order.Pending)
	if err != nil {
		j.logger.ErrorContext(ctx, "Pending backlog job failed", "error", err)
		return
	}

	count, err := j.counter.Handle(ctx, q)
	if err != nil {
		j.logger.ErrorContext(ctx, "Pending backlog job failed", "error", err)
		return
	}
	j.gauge.PendingBacklog(count)
}

// Stop stops scheduling and waits for a running job to finish.
func (j *PendingBacklogJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("Pending backlog job stopped")
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
