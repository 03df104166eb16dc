package config

import (
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"

	"github.com/angeloszaimis/resilience-core/internal/chunk"
	"github.com/angeloszaimis/resilience-core/internal/circuitbreaker"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type BreakerConfig struct {
	FailureThreshold    int    `mapstructure:"failure_threshold"`
	ResetTimeout        string `mapstructure:"reset_timeout"`
	HalfOpenMaxAttempts int    `mapstructure:"half_open_max_attempts"`
	MonitoringPeriod    string `mapstructure:"monitoring_period"`
}

type ChunkConfig struct {
	ChunkSize          int    `mapstructure:"chunk_size"`
	MaxConcurrent      int    `mapstructure:"max_concurrent"`
	DelayBetweenChunks string `mapstructure:"delay_between_chunks"`
}

type WatchConfig struct {
	Interval string `mapstructure:"interval"`
}

type MetricsConfig struct {
	BufferSize int `mapstructure:"buffer_size"`
}

type Config struct {
	Environment string        `mapstructure:"environment"`
	Logging     LoggingConfig `mapstructure:"logging"`
	Breaker     BreakerConfig `mapstructure:"breaker"`
	Chunk       ChunkConfig   `mapstructure:"chunk"`
	Watch       WatchConfig   `mapstructure:"watch"`
	Metrics     MetricsConfig `mapstructure:"metrics"`
}

func Load() (*Config, error) {
	// A fresh viper instance keeps loads independent of each other.
	v := viper.New()

	v.SetDefault("environment", EnvDev)
	v.SetDefault("logging.level", LogLevelInfo)
	v.SetDefault("breaker.failure_threshold", circuitbreaker.DefaultFailureThreshold)
	v.SetDefault("breaker.reset_timeout", "60s")
	v.SetDefault("breaker.half_open_max_attempts", circuitbreaker.DefaultHalfOpenMaxAttempts)
	v.SetDefault("breaker.monitoring_period", "60s")
	v.SetDefault("chunk.chunk_size", chunk.DefaultChunkSize)
	v.SetDefault("chunk.max_concurrent", chunk.DefaultMaxConcurrent)
	v.SetDefault("chunk.delay_between_chunks", "0s")
	v.SetDefault("watch.interval", "5s")
	v.SetDefault("metrics.buffer_size", 256)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Error("failed to read config file", slog.String("error", err.Error()))
			return nil, err
		}
		slog.Info("config file not found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", slog.String("file", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		slog.Error("failed to unmarshal config", slog.String("error", err.Error()))
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Environment,
			validation.Required,
			validation.In(EnvDev, EnvStaging, EnvProd),
		),
		validation.Field(&c.Logging,
			validation.Required,
			validation.By(func(value interface{}) error {
				lc, ok := value.(LoggingConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a LoggingConfig")
				}
				return validation.ValidateStruct(&lc,
					validation.Field(&lc.Level,
						validation.Required,
						validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
					),
				)
			}),
		),
		validation.Field(&c.Breaker,
			validation.Required,
			validation.By(func(value interface{}) error {
				bc, ok := value.(BreakerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a BreakerConfig")
				}
				return validation.ValidateStruct(&bc,
					validation.Field(&bc.FailureThreshold,
						validation.Required,
						validation.Min(1),
					),
					validation.Field(&bc.ResetTimeout,
						validation.Required,
						validation.By(validateDuration),
					),
					validation.Field(&bc.HalfOpenMaxAttempts,
						validation.Required,
						validation.Min(1),
					),
					validation.Field(&bc.MonitoringPeriod,
						validation.Required,
						validation.By(validateDuration),
					),
				)
			}),
		),
		validation.Field(&c.Chunk,
			validation.Required,
			validation.By(func(value interface{}) error {
				cc, ok := value.(ChunkConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ChunkConfig")
				}
				return validation.ValidateStruct(&cc,
					validation.Field(&cc.ChunkSize,
						validation.Required,
						validation.Min(1),
					),
					validation.Field(&cc.MaxConcurrent,
						validation.Required,
						validation.Min(1),
					),
					validation.Field(&cc.DelayBetweenChunks,
						validation.Required,
						validation.By(validateDuration),
					),
				)
			}),
		),
		validation.Field(&c.Watch,
			validation.Required,
			validation.By(func(value interface{}) error {
				wc, ok := value.(WatchConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a WatchConfig")
				}
				return validation.ValidateStruct(&wc,
					validation.Field(&wc.Interval,
						validation.Required,
						validation.By(validateDuration),
					),
				)
			}),
		),
		validation.Field(&c.Metrics,
			validation.Required,
			validation.By(func(value interface{}) error {
				mc, ok := value.(MetricsConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a MetricsConfig")
				}
				return validation.ValidateStruct(&mc,
					validation.Field(&mc.BufferSize,
						validation.Required,
						validation.Min(1),
					),
				)
			}),
		),
	)
}

// BreakerOptions converts the breaker section into circuitbreaker options.
func (c *Config) BreakerOptions() (circuitbreaker.Options, error) {
	resetTimeout, err := time.ParseDuration(c.Breaker.ResetTimeout)
	if err != nil {
		return circuitbreaker.Options{}, err
	}

	monitoringPeriod, err := time.ParseDuration(c.Breaker.MonitoringPeriod)
	if err != nil {
		return circuitbreaker.Options{}, err
	}

	return circuitbreaker.Options{
		FailureThreshold:    c.Breaker.FailureThreshold,
		ResetTimeout:        resetTimeout,
		HalfOpenMaxAttempts: c.Breaker.HalfOpenMaxAttempts,
		MonitoringPeriod:    monitoringPeriod,
	}, nil
}

// ChunkOptions converts the chunk section into batch runner options.
func (c *Config) ChunkOptions() (chunk.Options, error) {
	delay, err := time.ParseDuration(c.Chunk.DelayBetweenChunks)
	if err != nil {
		return chunk.Options{}, err
	}

	return chunk.Options{
		ChunkSize:     c.Chunk.ChunkSize,
		MaxConcurrent: c.Chunk.MaxConcurrent,
		Delay:         delay,
	}, nil
}

// WatchInterval returns the health watch polling interval.
func (c *Config) WatchInterval() (time.Duration, error) {
	return time.ParseDuration(c.Watch.Interval)
}

func validateDuration(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return validation.NewError("validation_invalid_duration", "must be a valid duration like 60s or 500ms")
	}

	if d < 0 {
		return validation.NewError("validation_negative_duration", "must not be negative")
	}

	return nil
}
