// Package metrics ships engine performance samples and combat telemetry to
// InfluxDB. When the Influx endpoint is down, points spool to a gzipped
// line-protocol backup file instead of being lost.
package metrics

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/stardrift/tactical/internal/model"
)

// Bucket names used by the engine.
const (
	BucketEnginePerformance = "engine_performance"
	BucketCombatEvents      = "combat_events"
	BucketBalanceChanges    = "balance_changes"
)

// bucketRetentionSeconds keeps analytics for 90 days.
const bucketRetentionSeconds = 60 * 60 * 24 * 90

// DefaultBucketNames are the InfluxDB buckets the manager provisions.
var DefaultBucketNames = []string{
	BucketEnginePerformance,
	BucketCombatEvents,
	BucketBalanceChanges,
}

// Manager handles InfluxDB connections and writes.
type Manager struct {
	Client       influxdb2.Client
	Writers      map[string]influxdb2_api.WriteAPI
	BackupWriter *gzip.Writer
	IsValid      bool
	BucketNames  []string
	Logger       zerolog.Logger
	BackupPath   string
}

// NewManager creates a new InfluxDB manager spooling to backupPath when
// the server is unreachable.
func NewManager(log zerolog.Logger, backupPath string) *Manager {
	return &Manager{
		Writers:     make(map[string]influxdb2_api.WriteAPI),
		BucketNames: DefaultBucketNames,
		Logger:      log,
		BackupPath:  backupPath,
	}
}

// Connect reaches the InfluxDB server and provisions org, buckets and
// writers. An unreachable server is not an error; the manager degrades
// to the backup spool and every point still lands somewhere.
func (m *Manager) Connect() error {
	if !viper.GetBool("influx.enabled") {
		return errors.New("influx.enabled is false")
	}

	url := fmt.Sprintf("%s://%s:%s",
		viper.GetString("influx.protocol"),
		viper.GetString("influx.host"),
		viper.GetString("influx.port"),
	)
	m.Client = influxdb2.NewClientWithOptions(url,
		viper.GetString("influx.token"),
		influxdb2.DefaultOptions().
			SetBatchSize(2500).
			SetFlushInterval(1000),
	)

	running, err := m.Client.Ping(context.Background())
	if err != nil || !running {
		if berr := m.openBackup(); berr != nil {
			return berr
		}
		m.Logger.Warn().Str("url", url).Str("backupPath", m.BackupPath).
			Msg("influx unreachable, spooling points to backup file")
		return nil
	}

	m.IsValid = true
	if err := m.ensureOrgAndBuckets(); err != nil {
		return err
	}
	m.createWriters()
	m.Logger.Info().Str("url", url).Msg("influx client ready")
	return nil
}

// openBackup lazily opens the gzipped line-protocol spool.
func (m *Manager) openBackup() error {
	if m.BackupWriter != nil {
		return nil
	}
	file, err := os.OpenFile(m.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening metrics backup file: %w", err)
	}
	m.BackupWriter = gzip.NewWriter(file)
	return nil
}

func (m *Manager) ensureOrgAndBuckets() error {
	ctx := context.Background()
	orgName := viper.GetString("influx.org")

	org, err := m.Client.OrganizationsAPI().FindOrganizationByName(ctx, orgName)
	if err != nil {
		m.Logger.Info().Str("org", orgName).Msg("creating influx organization")
		org, err = m.Client.OrganizationsAPI().CreateOrganizationWithName(ctx, orgName)
		if err != nil {
			return fmt.Errorf("creating organization %q: %w", orgName, err)
		}
	}

	expire := domain.RetentionRuleTypeExpire
	for _, bucket := range m.BucketNames {
		if _, err := m.Client.BucketsAPI().FindBucketByName(ctx, bucket); err == nil {
			continue
		}
		m.Logger.Info().Str("bucket", bucket).Msg("creating influx bucket")
		_, err := m.Client.BucketsAPI().CreateBucketWithName(ctx, org, bucket, domain.RetentionRule{
			Type:         &expire,
			EverySeconds: bucketRetentionSeconds,
		})
		if err != nil {
			return fmt.Errorf("creating bucket %q: %w", bucket, err)
		}
	}
	return nil
}

// createWriters opens one async write API per bucket and drains each
// error stream into the log.
func (m *Manager) createWriters() {
	orgName := viper.GetString("influx.org")
	for _, bucket := range m.BucketNames {
		w := m.Client.WriteAPI(orgName, bucket)
		m.Writers[bucket] = w

		go func(bucket string, errs <-chan error) {
			for err := range errs {
				m.Logger.Error().Err(err).Str("bucket", bucket).Msg("influx write failed")
			}
		}(bucket, w.Errors())
	}
}

// WritePoint sends a point to its bucket, or to the backup spool when the
// server is down.
func (m *Manager) WritePoint(ctx context.Context, bucket string, point *influxdb2_write.Point) error {
	if m.IsValid {
		w, ok := m.Writers[bucket]
		if !ok {
			return fmt.Errorf("influx bucket %q not registered", bucket)
		}
		w.WritePoint(point)
		return nil
	}

	if m.BackupWriter == nil {
		return errors.New("influx client not connected and no backup writer")
	}
	line := influxdb2_write.PointToLineProtocol(point, time.Nanosecond)
	if _, err := m.BackupWriter.Write([]byte(line + "\n")); err != nil {
		return fmt.Errorf("writing to metrics backup file: %w", err)
	}
	return nil
}

// WriteEnginePerformance records one sampled performance snapshot.
func (m *Manager) WriteEnginePerformance(ctx context.Context, perf model.EnginePerformance) error {
	point := influxdb2_write.NewPointWithMeasurement("engine_performance").
		SetTime(perf.Time).
		AddField("live_mines", perf.LiveMines).
		AddField("tracked_ships", perf.TrackedShips).
		AddField("jobs_run", perf.JobsRun).
		AddField("jobs_failed", perf.JobsFailed).
		AddField("jobs_retried", perf.JobsRetried).
		AddField("retry_queue", perf.RetryQueue).
		AddField("last_sweep_duration_ms", perf.LastSweepDurationMs)
	return m.WritePoint(ctx, BucketEnginePerformance, point)
}

// WriteDetonation records one mine detonation for combat analytics.
func (m *Manager) WriteDetonation(ctx context.Context, mineType string, damage, shieldDamage, hullDamage int) error {
	point := influxdb2_write.NewPointWithMeasurement("detonation").
		SetTime(time.Now()).
		AddTag("mine_type", mineType).
		AddField("damage", damage).
		AddField("shield_damage", shieldDamage).
		AddField("hull_damage", hullDamage)
	return m.WritePoint(ctx, BucketCombatEvents, point)
}

// WriteBalanceChange records one committed parameter write.
func (m *Manager) WriteBalanceChange(ctx context.Context, key, actor string) error {
	point := influxdb2_write.NewPointWithMeasurement("balance_change").
		SetTime(time.Now()).
		AddTag("key", key).
		AddTag("actor", actor).
		AddField("count", 1)
	return m.WritePoint(ctx, BucketBalanceChanges, point)
}

// Flush forces buffered points out through every bucket writer.
func (m *Manager) Flush() {
	if !m.IsValid {
		return
	}
	for _, w := range m.Writers {
		w.Flush()
	}
}

// Close flushes writers and the backup spool.
func (m *Manager) Close() {
	if m.IsValid {
		for _, w := range m.Writers {
			w.Flush()
		}
		m.Client.Close()
	}
	if m.BackupWriter != nil {
		m.BackupWriter.Close()
	}
}
