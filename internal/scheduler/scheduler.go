// Package scheduler runs the periodic tick jobs that keep the universe
// honest: boundary sweeps, mine expiry and performance sampling. Jobs carry
// a priority so safety-critical sweeps always start before housekeeping
// when several come due on the same tick.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/stardrift/tactical/internal/config"
	"github.com/stardrift/tactical/internal/queue"
)

// Job priorities. Lower runs first when multiple jobs share a tick.
const (
	PriorityCritical = 0
	PriorityNormal   = 50
	PriorityLow      = 100
)

// JobFunc does one run of a periodic job. The context carries the per-run
// timeout; implementations should stop work when it is done.
type JobFunc func(ctx context.Context) error

// Job is a periodic task registered with the scheduler.
type Job struct {
	Name     string
	Priority int
	Interval time.Duration
	Run      JobFunc
}

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Stats is a snapshot of scheduler counters.
type Stats struct {
	JobsRun     int64
	JobsFailed  int64
	JobsRetried int64
	RetryQueue  int
}

// retryItem is a failed run waiting for another attempt.
type retryItem struct {
	job      *Job
	attempt  int
	notAfter time.Time
}

type scheduledJob struct {
	Job
	nextRun time.Time
}

// Scheduler runs registered jobs on a fixed resolution tick over a small
// worker pool. A failed run is retried with linear backoff up to the
// configured attempt count, then dropped with an error log; no failure is
// ever silently discarded.
type Scheduler struct {
	cfg    config.SchedulerConfig
	logger Logger

	mu      sync.Mutex
	jobs    []*scheduledJob
	started bool

	retries *queue.Queue[retryItem]

	jobsRun     atomic.Int64
	jobsFailed  atomic.Int64
	jobsRetried atomic.Int64

	runCounter     metric.Int64Counter
	failCounter    metric.Int64Counter
	retryCounter   metric.Int64Counter
	retryQueueSize metric.Int64ObservableGauge

	work chan func()
	stop chan struct{}
	wg   sync.WaitGroup
}

// New creates a scheduler from the given settings.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(cfg config.SchedulerConfig, logger Logger) (*Scheduler, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Resolution <= 0 {
		cfg.Resolution = 250 * time.Millisecond
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 10 * time.Second
	}

	s := &Scheduler{
		cfg:     cfg,
		logger:  logger,
		retries: queue.New[retryItem](),
		work:    make(chan func(), cfg.Workers*2),
		stop:    make(chan struct{}),
	}

	m := meter()
	var err error

	s.runCounter, err = m.Int64Counter(
		"scheduler.jobs.run",
		metric.WithDescription("Total job runs started"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating run counter: %w", err)
	}

	s.failCounter, err = m.Int64Counter(
		"scheduler.jobs.failed",
		metric.WithDescription("Total job runs that returned an error"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating fail counter: %w", err)
	}

	s.retryCounter, err = m.Int64Counter(
		"scheduler.jobs.retried",
		metric.WithDescription("Total job runs re-queued for retry"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating retry counter: %w", err)
	}

	s.retryQueueSize, err = m.Int64ObservableGauge(
		"scheduler.retry.queue.size",
		metric.WithDescription("Failed runs waiting for another attempt"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating retry queue gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveInt64(s.retryQueueSize, int64(s.retries.Len()))
			return nil
		},
		s.retryQueueSize,
	)
	if err != nil {
		return nil, fmt.Errorf("registering retry queue callback: %w", err)
	}

	return s, nil
}

// RegisterJob adds a periodic job. Must be called before Start.
func (s *Scheduler) RegisterJob(job Job) error {
	if job.Name == "" || job.Run == nil || job.Interval <= 0 {
		return fmt.Errorf("job needs a name, a run func and a positive interval")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("scheduler already started")
	}
	s.jobs = append(s.jobs, &scheduledJob{Job: job, nextRun: time.Now()})
	return nil
}

// Start launches the worker pool and the tick loop.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already started")
	}
	s.started = true
	s.mu.Unlock()

	for i := 0; i < s.cfg.Workers; i++ {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for fn := range s.work {
				fn()
			}
		}()
	}

	s.wg.Add(1)
	go s.tickLoop()

	s.logger.Info("scheduler started",
		"workers", s.cfg.Workers, "resolution", s.cfg.Resolution, "jobs", len(s.jobs))
	return nil
}

// Stop halts the tick loop, drains the workers and waits for in-flight
// runs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()

	close(s.stop)
	s.wg.Wait()
	s.logger.Info("scheduler stopped", "stats", s.Snapshot())
}

// Snapshot returns the current counters.
func (s *Scheduler) Snapshot() Stats {
	return Stats{
		JobsRun:     s.jobsRun.Load(),
		JobsFailed:  s.jobsFailed.Load(),
		JobsRetried: s.jobsRetried.Load(),
		RetryQueue:  s.retries.Len(),
	}
}

func (s *Scheduler) tickLoop() {
	defer s.wg.Done()
	defer close(s.work)

	ticker := time.NewTicker(s.cfg.Resolution)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.dispatchDue(now)
			s.dispatchRetries(now)
		}
	}
}

// dispatchDue hands every due job to the pool, highest priority first.
func (s *Scheduler) dispatchDue(now time.Time) {
	s.mu.Lock()
	var due []*scheduledJob
	for _, j := range s.jobs {
		if !j.nextRun.After(now) {
			due = append(due, j)
			j.nextRun = now.Add(j.Interval)
		}
	}
	s.mu.Unlock()

	sort.SliceStable(due, func(i, k int) bool {
		return due[i].Priority < due[k].Priority
	})

	for _, j := range due {
		job := &j.Job
		s.submit(func() { s.runJob(job, 0) })
	}
}

// dispatchRetries re-submits failed runs whose backoff has elapsed.
func (s *Scheduler) dispatchRetries(now time.Time) {
	var waiting []retryItem
	for _, item := range s.retries.Drain() {
		if item.job == nil {
			continue
		}
		if now.Before(item.notAfter) {
			waiting = append(waiting, item)
			continue
		}
		retry := item
		s.submit(func() { s.runJob(retry.job, retry.attempt) })
	}
	if len(waiting) > 0 {
		s.retries.Push(waiting...)
	}
}

// submit queues work for the pool without blocking the tick loop when a
// long job has every worker busy; the run just lands on the next tick.
func (s *Scheduler) submit(fn func()) {
	select {
	case s.work <- fn:
	case <-s.stop:
	}
}

func (s *Scheduler) runJob(job *Job, attempt int) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()

	attrs := metric.WithAttributes(attribute.String("job", job.Name))

	s.jobsRun.Add(1)
	s.runCounter.Add(ctx, 1, attrs)

	start := time.Now()
	err := job.Run(ctx)
	duration := time.Since(start)

	if err == nil {
		s.logger.Debug("job complete", "job", job.Name, "duration", duration)
		return
	}

	s.jobsFailed.Add(1)
	s.failCounter.Add(ctx, 1, attrs)

	if attempt < s.cfg.MaxRetries {
		backoff := time.Duration(attempt+1) * s.cfg.RetryBackoff
		s.retries.Push(retryItem{
			job:      job,
			attempt:  attempt + 1,
			notAfter: time.Now().Add(backoff),
		})
		s.jobsRetried.Add(1)
		s.retryCounter.Add(ctx, 1, attrs)
		s.logger.Debug("job failed, retrying",
			"job", job.Name, "attempt", attempt+1, "backoff", backoff, "error", err)
		return
	}

	s.logger.Error("job failed, retries exhausted",
		"job", job.Name, "attempts", attempt+1, "duration", duration, "error", err)
}
