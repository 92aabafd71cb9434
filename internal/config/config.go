package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xxxsen/common/logger"
	"gopkg.in/yaml.v3"
)

// Config is the root runtime configuration.
type Config struct {
	Bind        string           `json:"bind" yaml:"bind"`
	Redirects   int              `json:"redirects" yaml:"redirects"`
	Timeout     int64            `json:"timeout" yaml:"timeout"` // milliseconds
	Concurrency int              `json:"concurrency" yaml:"concurrency"`
	UserAgent   string           `json:"user_agent" yaml:"user_agent"`
	Shorteners  ShortenerConfig  `json:"shorteners" yaml:"shorteners"`
	RateLimit   RateLimitConfig  `json:"rate_limit" yaml:"rate_limit"`
	Cache       CacheConfig      `json:"cache" yaml:"cache"`
	Log         logger.LogConfig `json:"log" yaml:"log"`
	Pprof       PprofConfig      `json:"pprof" yaml:"pprof"`
}

type PprofConfig struct {
	Enable bool   `json:"enable" yaml:"enable"`
	Bind   string `json:"bind" yaml:"bind"`
}

type ShortenerConfig struct {
	Type string      `json:"type" yaml:"type"`
	Data interface{} `json:"data" yaml:"data"`
}

type RateLimitConfig struct {
	QPS   float64 `json:"qps" yaml:"qps"`
	Burst int     `json:"burst" yaml:"burst"`
}

type CacheConfig struct {
	Type  string      `json:"type" yaml:"type"`
	Size  int         `json:"size" yaml:"size"`
	TTL   int64       `json:"ttl" yaml:"ttl"` // seconds
	Redis RedisConfig `json:"redis" yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
	Prefix   string `json:"prefix" yaml:"prefix"`
}

func Default() *Config {
	return &Config{
		Bind:        ":8080",
		Redirects:   5,
		Timeout:     10000,
		Concurrency: 8,
		Shorteners: ShortenerConfig{
			Type: "suffix",
			Data: map[string]interface{}{"builtin": true},
		},
		RateLimit: RateLimitConfig{Burst: 1},
		Cache: CacheConfig{
			Size: 10000,
			TTL:  86400,
		},
		Log: logger.LogConfig{
			Level:   "info",
			Console: true,
		},
	}
}

// Load reads the configuration file from disk. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Redirects < 0 {
		return fmt.Errorf("redirects must not be negative, got:%d", c.Redirects)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got:%d", c.Timeout)
	}
	if strings.TrimSpace(c.Shorteners.Type) == "" {
		return fmt.Errorf("shorteners type is required")
	}
	return nil
}

func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Millisecond
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTL) * time.Second
}
