// tactical-server runs the ordnance and boundary engine for the universe:
// it owns the mine lifecycle, the zipper sweep, boundary enforcement and
// the balance parameter store, and exposes them as dispatcher commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/stardrift/tactical/internal/balance"
	"github.com/stardrift/tactical/internal/cache"
	"github.com/stardrift/tactical/internal/channel"
	"github.com/stardrift/tactical/internal/config"
	"github.com/stardrift/tactical/internal/database"
	"github.com/stardrift/tactical/internal/dispatcher"
	"github.com/stardrift/tactical/internal/guard"
	"github.com/stardrift/tactical/internal/handlers"
	"github.com/stardrift/tactical/internal/logging"
	"github.com/stardrift/tactical/internal/metrics"
	"github.com/stardrift/tactical/internal/minefield"
	"github.com/stardrift/tactical/internal/monitor"
	"github.com/stardrift/tactical/internal/random"
	"github.com/stardrift/tactical/internal/scheduler"
	"github.com/stardrift/tactical/internal/storage"
	"github.com/stardrift/tactical/pkg/core"
)

const serviceName = "tactical-server"

// detonationFeedSize bounds the combat telemetry backlog. The consumer
// drains continuously; a full feed would stall detonations.
const detonationFeedSize = 4096

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run() error {
	sessionStart := time.Now().UTC()

	if err := config.Load("."); err != nil {
		// defaults still apply; a missing config file is not fatal
		fmt.Fprintf(os.Stderr, "config: %v, using defaults\n", err)
	}

	// logging
	logsDir := config.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}
	logPath := logging.LogFilePath(logsDir, serviceName, sessionStart)
	logFile, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	gelfAddr := ""
	if config.GetBool("graylog.enabled") {
		gelfAddr = config.GetString("graylog.address")
	}

	slogManager := logging.NewSlogManager()
	if err := slogManager.Setup(logFile, config.GetString("logLevel"), gelfAddr); err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer slogManager.Close()
	logger := slogManager.Logger()
	logger.Info("starting", "service", serviceName, "logFile", logPath)

	zlog := zerolog.New(logFile).With().Timestamp().Logger()

	// database; the memory backend runs without one
	storageType := config.GetString("storage.type")
	var dbManager *database.Manager
	if storageType != "memory" {
		dbManager = database.NewManager(zlog)
		dbManager.SqliteFilePath = filepath.Join(logsDir, fmt.Sprintf("%s_%s.db", serviceName, sessionStart.Format("20060102_150405")))
		if err := dbManager.Connect(); err != nil {
			return fmt.Errorf("connecting database: %w", err)
		}
		if err := dbManager.Setup(); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}
	}

	// metrics
	var metricsManager *metrics.Manager
	if config.GetBool("influx.enabled") {
		metricsManager = metrics.NewManager(zlog, filepath.Join(logsDir, "metrics_backup.gz"))
		if err := metricsManager.Connect(); err != nil {
			logger.Warn("metrics disabled", "error", err)
			metricsManager = nil
		} else {
			defer metricsManager.Close()
		}
	}

	// storage
	entityCache := cache.NewEntityCache()
	var backend storage.Backend
	if dbManager != nil {
		backend, err = storage.NewBackend(storageType, dbManager.DB, entityCache)
	} else {
		backend, err = storage.NewBackend(storageType, nil, entityCache)
	}
	if err != nil {
		return fmt.Errorf("creating storage backend: %w", err)
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("initializing storage backend: %w", err)
	}
	defer backend.Close()

	// balance store with persistence sink
	params := balance.NewDefaultStore()
	sink := &balance.GormSink{Logger: logger}
	if dbManager != nil {
		sink.DB = dbManager.DB
	}
	if metricsManager != nil {
		sink.Metrics = metricsManager
	}
	params.SetSink(sink)

	// engines
	rng := random.NewDefault()
	locks := cache.NewEntityLocks()
	detonations := channel.New[core.DetonationResult](detonationFeedSize)

	mineEngine := minefield.NewEngine(minefield.Dependencies{
		Mines:  backend,
		Ships:  backend,
		Params: params,
		Rand:   rng,
		Locks:  locks,
		Logger: logger,
		Events: detonations,
	})
	boundaryGuard := guard.NewGuard(guard.Dependencies{
		Ships:    backend,
		Mines:    backend,
		Ordnance: mineEngine,
		Params:   params,
		Rand:     rng,
		Locks:    locks,
		Logger:   logger,
	})

	// combat telemetry consumer
	go func() {
		for det := range detonations.Receive() {
			if metricsManager == nil {
				continue
			}
			err := metricsManager.WriteDetonation(
				context.Background(), det.Type.String(), det.Damage, det.ShieldDamage, det.HullDamage)
			if err != nil {
				logger.Debug("detonation point not shipped", "error", err)
			}
		}
	}()
	defer detonations.Close()

	// scheduler and periodic jobs
	sched, err := scheduler.New(config.GetSchedulerConfig(), logging.NewDispatcherLogger(logger))
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}

	var dbHandle *gorm.DB
	if dbManager != nil {
		dbHandle = dbManager.DB
	}
	monitorService := monitor.NewService(monitor.Dependencies{
		DB:        dbHandle,
		Metrics:   metricsManager,
		Mines:     backend,
		Ships:     backend,
		Scheduler: sched,
		Logger:    logger,
		IsDatabaseValid: func() bool {
			return dbManager != nil && dbManager.IsValid
		},
	})

	sweeps := config.GetSweepConfig()
	err = sched.RegisterJob(scheduler.Job{
		Name:     "boundary-sweep",
		Priority: scheduler.PriorityCritical,
		Interval: sweeps.BoundaryInterval,
		Run: func(ctx context.Context) error {
			start := time.Now()
			_, err := boundaryGuard.CheckAllShips()
			monitorService.RecordSweepDuration(time.Since(start))
			return err
		},
	})
	if err != nil {
		return fmt.Errorf("registering boundary sweep: %w", err)
	}
	err = sched.RegisterJob(scheduler.Job{
		Name:     "mine-expiry",
		Priority: scheduler.PriorityNormal,
		Interval: sweeps.ExpiryInterval,
		Run: func(ctx context.Context) error {
			_, err := mineEngine.ExpireMines(time.Now().UTC())
			return err
		},
	})
	if err != nil {
		return fmt.Errorf("registering mine expiry: %w", err)
	}
	err = sched.RegisterJob(scheduler.Job{
		Name:     "performance-sample",
		Priority: scheduler.PriorityLow,
		Interval: sweeps.MonitorInterval,
		Run:      monitorService.Sample,
	})
	if err != nil {
		return fmt.Errorf("registering performance sample: %w", err)
	}
	if metricsManager != nil {
		err = sched.RegisterJob(scheduler.Job{
			Name:     "metrics-flush",
			Priority: scheduler.PriorityLow,
			Interval: sweeps.MonitorInterval,
			Run: func(ctx context.Context) error {
				metricsManager.Flush()
				return nil
			},
		})
		if err != nil {
			return fmt.Errorf("registering metrics flush: %w", err)
		}
	}

	// command surface
	d, err := dispatcher.New(logging.NewDispatcherLogger(logger))
	if err != nil {
		return fmt.Errorf("creating dispatcher: %w", err)
	}
	handlerService := handlers.NewService(handlers.Dependencies{
		Minefield: mineEngine,
		Guard:     boundaryGuard,
		Params:    params,
		Mines:     backend,
		Ships:     backend,
		Scheduler: sched,
		Logger:    logger,
	})
	handlerService.RegisterHandlers(d)

	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}

	logger.Info("ready",
		"storage", storageType,
		"commands", len(d.Commands()),
		"graylog", gelfAddr != "",
		"influx", metricsManager != nil)

	// run until interrupted
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	received := <-sig
	logger.Info("shutting down", "signal", received.String())

	sched.Stop()
	return nil
}
