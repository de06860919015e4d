package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPendingCounter struct {
	mock.Mock
}

func (m *MockPendingCounter) Handle(ctx context.Context, q queries.CountOrdersByStatusQuery) (int64, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(int64), args.Error(1)
}

type MockBacklogGauge struct {
	mock.Mock
}

func (m *MockBacklogGauge) PendingBacklog(count int64) {
	m.Called(count)
}

// gaugeSpy records the last value without expectations, for scheduled runs.
type gaugeSpy struct {
	last  atomic.Int64
	calls atomic.Int32
}

func (g *gaugeSpy) PendingBacklog(count int64) {
	g.last.Store(count)
	g.calls.Add(1)
}

func pendingQuery(q queries.CountOrdersByStatusQuery) bool {
	return q.Status() == order.Pending
}

func TestPendingBacklogJob_Run_PublishesCount(t *testing.T) {
	counter := &MockPendingCounter{}
	gauge := &MockBacklogGauge{}
	counter.On("Handle", mock.Anything, mock.MatchedBy(pendingQuery)).Return(int64(12), nil)
	gauge.On("PendingBacklog", int64(12)).Return()

	job := NewPendingBacklogJob(counter, gauge, "", 0, slog.New(slog.DiscardHandler))
	job.Run(context.Background())

	counter.AssertExpectations(t)
	gauge.AssertExpectations(t)
}

func TestPendingBacklogJob_Run_KeepsGaugeOnError(t *testing.T) {
	counter := &MockPendingCounter{}
	gauge := &MockBacklogGauge{}
	counter.On("Handle", mock.Anything, mock.Anything).Return(int64(0), errors.New("store down"))

	job := NewPendingBacklogJob(counter, gauge, "", 0, slog.New(slog.DiscardHandler))
	job.Run(context.Background())

	gauge.AssertNotCalled(t, "PendingBacklog", mock.Anything)
}

func TestNewPendingBacklogJob_Defaults(t *testing.T) {
	job := NewPendingBacklogJob(&MockPendingCounter{}, &MockBacklogGauge{}, "", 0, slog.New(slog.DiscardHandler))

	assert.Equal(t, DefaultBacklogSchedule, job.schedule)
	assert.Equal(t, DefaultRunTimeout, job.timeout)
}

func TestPendingBacklogJob_Start_InvalidSchedule(t *testing.T) {
	job := NewPendingBacklogJob(&MockPendingCounter{}, &MockBacklogGauge{}, "every now and then", 0,
		slog.New(slog.DiscardHandler))

	require.Error(t, job.Start())
}

func TestJobManager_RunsScheduledJobs(t *testing.T) {
	counter := &MockPendingCounter{}
	counter.On("Handle", mock.Anything, mock.MatchedBy(pendingQuery)).Return(int64(3), nil)
	gauge := &gaugeSpy{}

	manager, err := NewJobManager(counter, gauge, Settings{BacklogSchedule: "* * * * * *"},
		slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	require.NoError(t, manager.StartAll())
	defer manager.StopAll()

	require.Eventually(t, func() bool { return gauge.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	assert.Equal(t, int64(3), gauge.last.Load())
}

func TestNewJobManager_RejectsBadSchedule(t *testing.T) {
	_, err := NewJobManager(&MockPendingCounter{}, &gaugeSpy{}, Settings{BacklogSchedule: "61 * * * * *"},
		slog.New(slog.DiscardHandler))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid backlog schedule")
}
