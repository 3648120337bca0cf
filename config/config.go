// Package config provides configuration structures for the vibe-rank service.
// Values come from an optional YAML file, a .env file and VIBE_* environment
// variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. VIBE_SERVER_PORT
const EnvPrefix = "VIBE"

// Config is the main application configuration struct.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Ranking RankingConfig `mapstructure:"ranking"`
	Jobs    JobsConfig    `mapstructure:"jobs"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type ServerConfig struct {
	Port           string `mapstructure:"port"`
	DataDir        string `mapstructure:"data_dir"`
	MaxRequestSize int64  `mapstructure:"max_request_size"` // bytes
}

// RankingConfig holds tunables around the scorer. The weights and boosts are fixed and not configurable.
type RankingConfig struct {
	DefaultTopLimit int `mapstructure:"default_top_limit"`
	MaxTopLimit     int `mapstructure:"max_top_limit"`
	MaxBatchSize    int `mapstructure:"max_batch_size"`
}

type JobsConfig struct {
	MaxWorkers     int           `mapstructure:"max_workers"`
	RetentionAfter time.Duration `mapstructure:"retention_after"`
}

// RedisConfig configures the top-N cache. An empty Address disables caching.
type RedisConfig struct {
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Configuration validation errors.
var (
	ErrInvalidPort       = errors.New("server.port must not be empty")
	ErrInvalidTopLimit   = errors.New("ranking.default_top_limit must be between 1 and ranking.max_top_limit")
	ErrInvalidBatchSize  = errors.New("ranking.max_batch_size must be positive")
	ErrInvalidMaxWorkers = errors.New("jobs.max_workers must be positive")
	ErrInvalidLogFormat  = errors.New("logging.format must be 'json' or 'console'")
)

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// Load reads configuration from configFile (optional), a .env file and the environment.
func Load(configFile string) (*Config, error) {
	// .env is optional; real environment variables win over it
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(configFile == "" && os.IsNotExist(err)) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// bindDefaults registers every key so AutomaticEnv can resolve nested values during Unmarshal
func bindDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.data_dir", d.Server.DataDir)
	v.SetDefault("server.max_request_size", d.Server.MaxRequestSize)
	v.SetDefault("ranking.default_top_limit", d.Ranking.DefaultTopLimit)
	v.SetDefault("ranking.max_top_limit", d.Ranking.MaxTopLimit)
	v.SetDefault("ranking.max_batch_size", d.Ranking.MaxBatchSize)
	v.SetDefault("jobs.max_workers", d.Jobs.MaxWorkers)
	v.SetDefault("jobs.retention_after", d.Jobs.RetentionAfter)
	v.SetDefault("redis.address", d.Redis.Address)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("redis.cache_ttl", d.Redis.CacheTTL)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

// ApplyDefaults fills zero values with defaults
func (c *Config) ApplyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.DataDir == "" {
		c.Server.DataDir = "./vibe_data"
	}
	if c.Server.MaxRequestSize == 0 {
		c.Server.MaxRequestSize = 10 << 20
	}
	if c.Ranking.MaxTopLimit == 0 {
		c.Ranking.MaxTopLimit = 100
	}
	if c.Ranking.DefaultTopLimit == 0 {
		c.Ranking.DefaultTopLimit = 10
	}
	if c.Ranking.MaxBatchSize == 0 {
		c.Ranking.MaxBatchSize = 10000
	}
	if c.Jobs.MaxWorkers == 0 {
		c.Jobs.MaxWorkers = 2
	}
	if c.Jobs.RetentionAfter == 0 {
		c.Jobs.RetentionAfter = 24 * time.Hour
	}
	if c.Redis.CacheTTL == 0 {
		c.Redis.CacheTTL = 15 * time.Minute
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
}

// Validate checks value ranges. Call after ApplyDefaults.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Server.Port) == "" {
		errs = append(errs, ErrInvalidPort)
	}
	if c.Ranking.DefaultTopLimit < 1 || c.Ranking.DefaultTopLimit > c.Ranking.MaxTopLimit {
		errs = append(errs, ErrInvalidTopLimit)
	}
	if c.Ranking.MaxBatchSize < 1 {
		errs = append(errs, ErrInvalidBatchSize)
	}
	if c.Jobs.MaxWorkers < 1 {
		errs = append(errs, ErrInvalidMaxWorkers)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		errs = append(errs, ErrInvalidLogFormat)
	}

	return errors.Join(errs...)
}

// CacheEnabled reports whether a redis address is configured
func (c *Config) CacheEnabled() bool {
	return c.Redis.Address != ""
}
