package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// SchedulerConfig holds tick-runner settings.
type SchedulerConfig struct {
	Workers      int           `json:"workers" mapstructure:"workers"`
	Resolution   time.Duration `json:"resolution" mapstructure:"resolution"`
	JobTimeout   time.Duration `json:"jobTimeout" mapstructure:"jobTimeout"`
	MaxRetries   int           `json:"maxRetries" mapstructure:"maxRetries"`
	RetryBackoff time.Duration `json:"retryBackoff" mapstructure:"retryBackoff"`
}

// SweepConfig holds the intervals for the periodic tactical sweeps.
type SweepConfig struct {
	BoundaryInterval time.Duration `json:"boundaryInterval" mapstructure:"boundaryInterval"`
	ExpiryInterval   time.Duration `json:"expiryInterval" mapstructure:"expiryInterval"`
	MonitorInterval  time.Duration `json:"monitorInterval" mapstructure:"monitorInterval"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	// Set default values
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./tacticallogs")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "tactical")

	viper.SetDefault("storage.type", "memory")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "tactical-metrics")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("scheduler.workers", 4)
	viper.SetDefault("scheduler.resolution", "250ms")
	viper.SetDefault("scheduler.jobTimeout", "10s")
	viper.SetDefault("scheduler.maxRetries", 2)
	viper.SetDefault("scheduler.retryBackoff", "500ms")

	viper.SetDefault("sweeps.boundaryInterval", "1s")
	viper.SetDefault("sweeps.expiryInterval", "60s")
	viper.SetDefault("sweeps.monitorInterval", "30s")

	viper.SetConfigName("tactical.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration returns a duration config value.
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// GetSchedulerConfig returns the scheduler settings.
func GetSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Workers:      viper.GetInt("scheduler.workers"),
		Resolution:   viper.GetDuration("scheduler.resolution"),
		JobTimeout:   viper.GetDuration("scheduler.jobTimeout"),
		MaxRetries:   viper.GetInt("scheduler.maxRetries"),
		RetryBackoff: viper.GetDuration("scheduler.retryBackoff"),
	}
}

// GetSweepConfig returns the periodic sweep intervals.
func GetSweepConfig() SweepConfig {
	return SweepConfig{
		BoundaryInterval: viper.GetDuration("sweeps.boundaryInterval"),
		ExpiryInterval:   viper.GetDuration("sweeps.expiryInterval"),
		MonitorInterval:  viper.GetDuration("sweeps.monitorInterval"),
	}
}
