package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	Logging     LogConfig
	RateLimit   RateLimitConfig
	Analysis    AnalysisConfig
	Presets     PresetsConfig
	Compression CompressionConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	// GlobalRPS caps all clients together; zero leaves only the per-client limit
	GlobalRPS   int `envconfig:"RATE_LIMIT_GLOBAL_RPS" default:"0"`
	GlobalBurst int `envconfig:"RATE_LIMIT_GLOBAL_BURST" default:"0"`
}

// AnalysisConfig bounds the work of a single calculus call.
type AnalysisConfig struct {
	MaxResolution int     `envconfig:"ANALYSIS_MAX_RESOLUTION" default:"400"`
	CacheSize     int     `envconfig:"ANALYSIS_CACHE_SIZE" default:"256"`
	DefaultStep   float64 `envconfig:"ANALYSIS_DEFAULT_STEP" default:"0.001"`
}

// PresetsConfig locates preset files. An empty Dir means built-ins only.
type PresetsConfig struct {
	Dir     string `envconfig:"PRESETS_DIR" default:""`
	Pattern string `envconfig:"PRESETS_PATTERN" default:"**/*.{yaml,yml,toml,json}"`
}

// CompressionConfig controls gzip response compression.
type CompressionConfig struct {
	Enabled bool `envconfig:"COMPRESSION_ENABLED" default:"true"`
	Level   int  `envconfig:"COMPRESSION_LEVEL" default:"5"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Analysis: AnalysisConfig{
			MaxResolution: 400,
			CacheSize:     256,
			DefaultStep:   1e-3,
		},
		Presets: PresetsConfig{
			Pattern: "**/*.{yaml,yml,toml,json}",
		},
		Compression: CompressionConfig{
			Enabled: true,
			Level:   5,
		},
	}
}
