package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stardrift/tactical/internal/config"
)

type testLogger struct{}

func (testLogger) Debug(msg string, keysAndValues ...any) {}
func (testLogger) Info(msg string, keysAndValues ...any)  {}
func (testLogger) Error(msg string, keysAndValues ...any) {}

func testConfig() config.SchedulerConfig {
	return config.SchedulerConfig{
		Workers:      2,
		Resolution:   10 * time.Millisecond,
		JobTimeout:   time.Second,
		MaxRetries:   2,
		RetryBackoff: 10 * time.Millisecond,
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

func TestSchedulerRunsJobsPeriodically(t *testing.T) {
	s, err := New(testConfig(), testLogger{})
	require.NoError(t, err)

	var runs atomic.Int64
	require.NoError(t, s.RegisterJob(Job{
		Name:     "tick",
		Priority: PriorityNormal,
		Interval: 20 * time.Millisecond,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	}))

	require.NoError(t, s.Start())
	defer s.Stop()

	waitFor(t, 2*time.Second, func() bool { return runs.Load() >= 3 })
	assert.GreaterOrEqual(t, s.Snapshot().JobsRun, int64(3))
	assert.Zero(t, s.Snapshot().JobsFailed)
}

func TestSchedulerPriorityOrder(t *testing.T) {
	cfg := testConfig()
	cfg.Workers = 1
	s, err := New(cfg, testLogger{})
	require.NoError(t, err)

	var mu sync.Mutex
	var order []string
	record := func(name string) JobFunc {
		return func(ctx context.Context) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		}
	}

	// long intervals so each job runs exactly once, all due on the first tick
	require.NoError(t, s.RegisterJob(Job{Name: "low", Priority: PriorityLow, Interval: time.Hour, Run: record("low")}))
	require.NoError(t, s.RegisterJob(Job{Name: "critical", Priority: PriorityCritical, Interval: time.Hour, Run: record("critical")}))
	require.NoError(t, s.RegisterJob(Job{Name: "normal", Priority: PriorityNormal, Interval: time.Hour, Run: record("normal")}))

	require.NoError(t, s.Start())
	defer s.Stop()

	waitFor(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 3
	})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"critical", "normal", "low"}, order)
}

func TestSchedulerRetriesFailedJobs(t *testing.T) {
	s, err := New(testConfig(), testLogger{})
	require.NoError(t, err)

	var attempts atomic.Int64
	require.NoError(t, s.RegisterJob(Job{
		Name:     "flaky",
		Priority: PriorityNormal,
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			if attempts.Add(1) < 3 {
				return errors.New("transient")
			}
			return nil
		},
	}))

	require.NoError(t, s.Start())
	defer s.Stop()

	// first run fails, two retries follow, the third attempt succeeds
	waitFor(t, 2*time.Second, func() bool { return attempts.Load() >= 3 })

	waitFor(t, time.Second, func() bool { return s.Snapshot().RetryQueue == 0 })
	stats := s.Snapshot()
	assert.Equal(t, int64(2), stats.JobsFailed)
	assert.Equal(t, int64(2), stats.JobsRetried)
}

func TestSchedulerGivesUpAfterMaxRetries(t *testing.T) {
	s, err := New(testConfig(), testLogger{})
	require.NoError(t, err)

	var attempts atomic.Int64
	require.NoError(t, s.RegisterJob(Job{
		Name:     "broken",
		Priority: PriorityNormal,
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			attempts.Add(1)
			return errors.New("permanent")
		},
	}))

	require.NoError(t, s.Start())
	defer s.Stop()

	// initial attempt plus MaxRetries, then the job is dropped
	waitFor(t, 2*time.Second, func() bool { return attempts.Load() == 3 })
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int64(3), attempts.Load())
	assert.Equal(t, int64(3), s.Snapshot().JobsFailed)
}

func TestSchedulerJobTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.JobTimeout = 20 * time.Millisecond
	cfg.MaxRetries = 0
	s, err := New(cfg, testLogger{})
	require.NoError(t, err)

	var timedOut atomic.Bool
	require.NoError(t, s.RegisterJob(Job{
		Name:     "slow",
		Priority: PriorityNormal,
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				timedOut.Store(true)
				return ctx.Err()
			case <-time.After(5 * time.Second):
				return nil
			}
		},
	}))

	require.NoError(t, s.Start())
	defer s.Stop()

	waitFor(t, 2*time.Second, func() bool { return timedOut.Load() })
}

func TestSchedulerRegistrationValidation(t *testing.T) {
	s, err := New(testConfig(), testLogger{})
	require.NoError(t, err)

	noop := func(ctx context.Context) error { return nil }
	assert.Error(t, s.RegisterJob(Job{Name: "", Interval: time.Second, Run: noop}))
	assert.Error(t, s.RegisterJob(Job{Name: "x", Interval: 0, Run: noop}))
	assert.Error(t, s.RegisterJob(Job{Name: "x", Interval: time.Second, Run: nil}))

	require.NoError(t, s.RegisterJob(Job{Name: "x", Interval: time.Second, Run: noop}))
	require.NoError(t, s.Start())
	assert.Error(t, s.RegisterJob(Job{Name: "late", Interval: time.Second, Run: noop}),
		"no registration after start")
	assert.Error(t, s.Start(), "double start")
	s.Stop()
}
