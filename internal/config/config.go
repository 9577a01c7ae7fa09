// Package config loads and validates CoreConfig (spec §6): the bounded
// set of options the host facade needs to construct the core. Grounded on
// the teacher's own viper/pflag wiring in
// github.com/sysflow-telemetry/sf-processor/driver, generalised from
// SysFlow's plugin-chain config file into flags/env/file-backed scalars
// for this pipeline, with gopkg.in/go-playground/validator.v9 enforcing
// the bounds table the teacher leaves to ad hoc range checks.
package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	validator "gopkg.in/go-playground/validator.v9"
)

// CoreConfig is the validated configuration the host facade consumes.
type CoreConfig struct {
	WatchPath             string        `mapstructure:"watch_path" validate:"required"`
	Workers               int           `mapstructure:"workers" validate:"min=1"`
	QueueCapacity         int           `mapstructure:"queue_capacity" validate:"min=1"`
	ReportIntervalSeconds int           `mapstructure:"report_interval_seconds" validate:"min=1"`
	TopK                  int           `mapstructure:"top_k" validate:"min=1"`
	DequeueTimeoutMs      int           `mapstructure:"dequeue_timeout_ms" validate:"min=10"`
	AckTimeout            time.Duration `mapstructure:"-" validate:"-"`
	LogLevel              string        `mapstructure:"log_level" validate:"oneof=trace debug info warn error"`
}

// Defaults per spec §6's bounds table.
const (
	DefaultQueueCapacity         = 10000
	DefaultReportIntervalSeconds = 2
	DefaultTopK                  = 10
	DefaultDequeueTimeoutMs      = 200
	DefaultLogLevel              = "info"
	minAckTimeout                = time.Second
	ackTimeoutMultiplier         = 1.5
)

// BindFlags registers the CLI flags cmd/logstatsd exposes, bound through
// pflag into viper so flags, environment variables (LOGSTATSD_* prefix),
// and an optional config file all resolve into the same keys.
func BindFlags(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("watch-path", "", "directory to watch for .log/.txt files")
	flags.Int("workers", 0, "number of coordinator worker goroutines (0 = runtime.NumCPU())")
	flags.Int("queue-capacity", DefaultQueueCapacity, "bounded event bus capacity")
	flags.Int("report-interval", DefaultReportIntervalSeconds, "reporter interval, seconds")
	flags.Int("top-k", DefaultTopK, "top-K message key truncation limit")
	flags.Int("dequeue-timeout", DefaultDequeueTimeoutMs, "bus dequeue timeout, milliseconds (validated only; coordinator workers use a fixed 25ms)")
	flags.Duration("ack-timeout", 0, "per-worker swap-ack timeout (0 = derived from report-interval)")
	flags.String("config", "", "optional path to a config file")
	flags.String("log-level", DefaultLogLevel, "trace|debug|info|warn|error")

	_ = v.BindPFlags(flags)
	v.SetEnvPrefix("logstatsd")
	v.AutomaticEnv()
}

// Load reads bound flags/env/file into a validated CoreConfig. cfgFile, if
// non-empty, is read as an additional config source (below explicit flags
// and LOGSTATSD_* environment variables, above flag defaults).
func Load(v *viper.Viper, cfgFile string) (CoreConfig, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return CoreConfig{}, fmt.Errorf("config: reading %s: %w", cfgFile, err)
		}
	}

	cfg := CoreConfig{
		WatchPath:             v.GetString("watch-path"),
		Workers:               v.GetInt("workers"),
		QueueCapacity:         v.GetInt("queue-capacity"),
		ReportIntervalSeconds: v.GetInt("report-interval"),
		TopK:                  v.GetInt("top-k"),
		DequeueTimeoutMs:      v.GetInt("dequeue-timeout"),
		LogLevel:              v.GetString("log-level"),
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}

	interval := time.Duration(cfg.ReportIntervalSeconds) * time.Second
	cfg.AckTimeout = v.GetDuration("ack-timeout")
	if cfg.AckTimeout <= 0 {
		cfg.AckTimeout = DefaultAckTimeout(interval)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return CoreConfig{}, fmt.Errorf("config: %w", err)
	}
	if cfg.AckTimeout < minAckTimeout {
		return CoreConfig{}, fmt.Errorf("config: ack_timeout must be >= %s, got %s", minAckTimeout, cfg.AckTimeout)
	}
	if fi, err := os.Stat(cfg.WatchPath); err != nil || !fi.IsDir() {
		return CoreConfig{}, fmt.Errorf("config: watch_path %q must be an existing directory", cfg.WatchPath)
	}

	return cfg, nil
}

// DefaultAckTimeout computes max(1s, 1.5 * interval) per spec §6.
func DefaultAckTimeout(interval time.Duration) time.Duration {
	derived := time.Duration(float64(interval) * ackTimeoutMultiplier)
	if derived < minAckTimeout {
		return minAckTimeout
	}
	return derived
}
