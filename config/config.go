// Package config loads runtime configuration from defaults, an optional
// config file and FUSIONCODER_* environment variables, in increasing
// precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full runtime configuration.
type Config struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"` // "text" or "json"

	Cache    CacheConfig    `mapstructure:"cache"`
	Cloud    CloudConfig    `mapstructure:"cloud"`
	Bus      BusConfig      `mapstructure:"bus"`
	Workflow WorkflowConfig `mapstructure:"workflow"`
}

// CacheConfig tunes the cloud response cache.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	MaxSize int           `mapstructure:"max_size"`
	TTL     time.Duration `mapstructure:"ttl"`
	// Path enables disk persistence when non-empty.
	Path string `mapstructure:"path"`
}

// CloudConfig selects and configures the cloud dispatch path. An empty
// endpoint with Enabled set selects the scripted in-process backend.
type CloudConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Endpoint string        `mapstructure:"endpoint"`
	APIKey   string        `mapstructure:"api_key"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// BusConfig configures the NATS transport for serve mode.
type BusConfig struct {
	// Embedded runs an in-process server instead of dialing URL.
	Embedded bool   `mapstructure:"embedded"`
	Port     int    `mapstructure:"port"`
	URL      string `mapstructure:"url"`
}

// WorkflowConfig tunes the orchestrator.
type WorkflowConfig struct {
	Timeout          time.Duration `mapstructure:"timeout"`
	BatchConcurrency int           `mapstructure:"batch_concurrency"`
}

// Load reads configuration. When path is empty only defaults and environment
// variables apply; a named file that cannot be read is an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("FUSIONCODER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.max_size", 1000)
	v.SetDefault("cache.ttl", time.Hour)
	v.SetDefault("cache.path", "")

	v.SetDefault("cloud.enabled", false)
	v.SetDefault("cloud.endpoint", "")
	v.SetDefault("cloud.api_key", "")
	v.SetDefault("cloud.timeout", 30*time.Second)

	v.SetDefault("bus.embedded", true)
	v.SetDefault("bus.port", 4222)
	v.SetDefault("bus.url", "")

	v.SetDefault("workflow.timeout", 2*time.Minute)
	v.SetDefault("workflow.batch_concurrency", 4)
}

func (c *Config) validate() error {
	if c.Cache.MaxSize < 1 {
		return fmt.Errorf("cache.max_size must be positive, got %d", c.Cache.MaxSize)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %s", c.Cache.TTL)
	}
	if c.Workflow.Timeout <= 0 {
		return fmt.Errorf("workflow.timeout must be positive, got %s", c.Workflow.Timeout)
	}
	if c.Workflow.BatchConcurrency < 0 {
		return fmt.Errorf("workflow.batch_concurrency must not be negative, got %d", c.Workflow.BatchConcurrency)
	}
	if !c.Bus.Embedded && c.Bus.URL == "" {
		return fmt.Errorf("bus.url is required when bus.embedded is false")
	}
	return nil
}
