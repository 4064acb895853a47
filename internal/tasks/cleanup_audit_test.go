package tasks

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCleaner struct {
	retentions chan time.Duration
	deleted    int64
	err        error
}

func newFakeCleaner() *fakeCleaner {
	return &fakeCleaner{retentions: make(chan time.Duration, 4)}
}

func (f *fakeCleaner) DeleteOldEvents(_ context.Context, retention time.Duration) (int64, error) {
	f.retentions <- retention
	return f.deleted, f.err
}

type fakeRecorder struct {
	runs []bool
}

func (f *fakeRecorder) RecordAuditCleanup(success bool) {
	f.runs = append(f.runs, success)
}

func TestCleanupAuditEventsTaskConfig(t *testing.T) {
	cfg := CleanupAuditEventsTask{RetentionDays: 7}.Config()

	assert.Equal(t, "cleanup_audit_events", cfg.Name)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
	assert.NotNil(t, cfg.Retention)
}

func TestCleanupAuditEventsProcessor(t *testing.T) {
	t.Run("uses task retention", func(t *testing.T) {
		cleaner := newFakeCleaner()
		cleaner.deleted = 12
		recorder := &fakeRecorder{}

		process := CleanupAuditEventsProcessor(cleaner, recorder, quietLogger())
		require.NoError(t, process(context.Background(), CleanupAuditEventsTask{RetentionDays: 7}))

		assert.Equal(t, 7*24*time.Hour, <-cleaner.retentions)
		assert.Equal(t, []bool{true}, recorder.runs)
	})

	t.Run("defaults retention", func(t *testing.T) {
		cleaner := newFakeCleaner()

		process := CleanupAuditEventsProcessor(cleaner, nil, quietLogger())
		require.NoError(t, process(context.Background(), CleanupAuditEventsTask{}))

		assert.Equal(t, 30*24*time.Hour, <-cleaner.retentions)
	})

	t.Run("propagates failures", func(t *testing.T) {
		cleaner := newFakeCleaner()
		cleaner.err = errors.New("database is locked")
		recorder := &fakeRecorder{}

		process := CleanupAuditEventsProcessor(cleaner, recorder, quietLogger())
		err := process(context.Background(), CleanupAuditEventsTask{RetentionDays: 1})

		assert.ErrorContains(t, err, "database is locked")
		assert.Equal(t, []bool{false}, recorder.runs)
	})

	t.Run("missing cleaner", func(t *testing.T) {
		process := CleanupAuditEventsProcessor(nil, nil, quietLogger())
		assert.Error(t, process(context.Background(), CleanupAuditEventsTask{}))
	})
}

func TestCleanupAuditEventsQueue_RunsEnqueuedTask(t *testing.T) {
	client, err := NewClient(filepath.Join(t.TempDir(), "test.db"), Config{Workers: 1, ReleaseAfter: time.Minute, CleanupInterval: time.Hour}, quietLogger())
	require.NoError(t, err)
	defer client.Close()

	cleaner := newFakeCleaner()
	client.Register(NewCleanupAuditEventsQueue(cleaner, nil, quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	_, err = client.Add(CleanupAuditEventsTask{RetentionDays: 3}).Save()
	require.NoError(t, err)

	select {
	case retention := <-cleaner.retentions:
		assert.Equal(t, 3*24*time.Hour, retention)
	case <-time.After(5 * time.Second):
		t.Fatal("cleanup task was not executed within timeout")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	client.Stop(stopCtx)
}

func TestInlineAuditCleanup(t *testing.T) {
	cleaner := newFakeCleaner()
	recorder := &fakeRecorder{}

	inline := NewInlineAuditCleanup(cleaner, recorder, quietLogger())
	require.NoError(t, inline.EnqueueAuditCleanup(14))

	assert.Equal(t, 14*24*time.Hour, <-cleaner.retentions)
	assert.Equal(t, []bool{true}, recorder.runs)
}
