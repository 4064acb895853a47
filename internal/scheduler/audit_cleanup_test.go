package scheduler

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEnqueuer struct {
	mu    sync.Mutex
	calls []int
	err   error
}

func (f *fakeEnqueuer) EnqueueAuditCleanup(retentionDays int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, retentionDays)
	return f.err
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestValidateCronSchedule(t *testing.T) {
	assert.NoError(t, ValidateCronSchedule("0 3 * * *"))
	assert.NoError(t, ValidateCronSchedule("*/15 * * * *"))
	assert.Error(t, ValidateCronSchedule("0 0 3 * * *"), "seconds field is not accepted")
	assert.Error(t, ValidateCronSchedule("not a schedule"))
}

func TestAuditCleanupScheduler_StartStop(t *testing.T) {
	s := NewAuditCleanupScheduler(&fakeEnqueuer{}, "0 3 * * *", 30, quietLogger())

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	next := s.GetNextRunTime()
	require.NotNil(t, next)
	assert.Equal(t, 3, next.Hour())
	assert.Zero(t, next.Minute())

	// A second Start is a no-op
	require.NoError(t, s.Start(context.Background()))

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.GetNextRunTime())
}

func TestAuditCleanupScheduler_StopsWithContext(t *testing.T) {
	s := NewAuditCleanupScheduler(&fakeEnqueuer{}, "0 3 * * *", 30, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 10*time.Millisecond)
}

func TestAuditCleanupScheduler_EmptyScheduleDisables(t *testing.T) {
	s := NewAuditCleanupScheduler(&fakeEnqueuer{}, "", 30, quietLogger())

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestAuditCleanupScheduler_InvalidSchedule(t *testing.T) {
	s := NewAuditCleanupScheduler(&fakeEnqueuer{}, "every day", 30, quietLogger())

	err := s.Start(context.Background())
	assert.ErrorContains(t, err, "invalid cron schedule")
	assert.False(t, s.IsRunning())
}

func TestAuditCleanupScheduler_RunNow(t *testing.T) {
	enqueuer := &fakeEnqueuer{}
	s := NewAuditCleanupScheduler(enqueuer, "0 3 * * *", 14, quietLogger())

	s.RunNow()
	enqueuer.err = errors.New("queue unavailable")
	s.RunNow()

	assert.Equal(t, []int{14, 14}, enqueuer.calls)
}
