// Package monitor samples engine health on a fixed cadence and persists
// the snapshots to the database and InfluxDB. The samples double as the
// data behind the status command.
package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/stardrift/tactical/internal/metrics"
	"github.com/stardrift/tactical/internal/model"
	"github.com/stardrift/tactical/internal/scheduler"
	"github.com/stardrift/tactical/internal/storage"
)

// Dependencies holds all dependencies for the monitor service.
type Dependencies struct {
	DB              *gorm.DB
	Metrics         *metrics.Manager
	Mines           storage.MineStore
	Ships           storage.ShipStore
	Scheduler       *scheduler.Scheduler
	Logger          *slog.Logger
	IsDatabaseValid func() bool
}

// Service samples and persists engine performance.
type Service struct {
	deps Dependencies

	mu             sync.RWMutex
	lastSweep      time.Duration
	latestSnapshot model.EnginePerformance
}

// NewService creates a new monitor service.
func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Service{deps: deps}
}

// RecordSweepDuration notes how long the latest boundary sweep took.
func (s *Service) RecordSweepDuration(d time.Duration) {
	s.mu.Lock()
	s.lastSweep = d
	s.mu.Unlock()
}

// Latest returns the most recent sample.
func (s *Service) Latest() model.EnginePerformance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latestSnapshot
}

// Sample takes one performance snapshot and persists it. Registered with
// the scheduler as a low-priority periodic job.
func (s *Service) Sample(ctx context.Context) error {
	s.mu.RLock()
	lastSweep := s.lastSweep
	s.mu.RUnlock()

	perf := model.EnginePerformance{
		Time:                time.Now().UTC(),
		LiveMines:           uint(len(s.deps.Mines.LiveMines())),
		TrackedShips:        uint(len(s.deps.Ships.Ships())),
		LastSweepDurationMs: float32(lastSweep.Milliseconds()),
	}
	if s.deps.Scheduler != nil {
		stats := s.deps.Scheduler.Snapshot()
		perf.JobsRun = uint64(stats.JobsRun)
		perf.JobsFailed = uint64(stats.JobsFailed)
		perf.JobsRetried = uint64(stats.JobsRetried)
		perf.RetryQueue = uint(stats.RetryQueue)
	}

	s.mu.Lock()
	s.latestSnapshot = perf
	s.mu.Unlock()

	if s.deps.DB != nil && s.deps.IsDatabaseValid != nil && s.deps.IsDatabaseValid() {
		if err := s.deps.DB.WithContext(ctx).Create(&perf).Error; err != nil {
			return err
		}
	}

	if s.deps.Metrics != nil {
		if err := s.deps.Metrics.WriteEnginePerformance(ctx, perf); err != nil {
			s.deps.Logger.Debug("performance point not shipped", "error", err)
		}
	}

	s.deps.Logger.Debug("performance sampled",
		"liveMines", perf.LiveMines, "trackedShips", perf.TrackedShips)
	return nil
}
