// Package config provides configuration loading for textparser.
//
// Configuration comes from hardcoded defaults, an optional YAML file and
// TEXTPARSER_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/textparser/internal/logging"
	"github.com/fyrsmithlabs/textparser/internal/selector"
	"github.com/fyrsmithlabs/textparser/internal/telemetry"
)

// Config holds the complete textparser configuration.
type Config struct {
	Templates TemplatesConfig  `koanf:"templates"`
	Parser    ParserConfig     `koanf:"parser"`
	Server    ServerConfig     `koanf:"server"`
	Logging   logging.Config   `koanf:"logging"`
	Telemetry telemetry.Config `koanf:"telemetry"`
}

// TemplatesConfig holds template store configuration.
type TemplatesConfig struct {
	Dir        string `koanf:"dir"`
	IgnoreFile string `koanf:"ignore_file"`
	Watch      bool   `koanf:"watch"`
}

// ParserConfig holds matching configuration.
type ParserConfig struct {
	// Mode is "enumerate" or "best-fit".
	Mode         string        `koanf:"mode"`
	MatchTimeout time.Duration `koanf:"match_timeout"`
	// CacheSize is the compile cache size; 0 disables the cache.
	CacheSize int `koanf:"cache_size"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	BodyLimit       string        `koanf:"body_limit"`
	// RateLimit is requests per second per client on the API; 0 disables it.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Templates: TemplatesConfig{
			Dir:        "templates",
			IgnoreFile: ".templateignore",
		},
		Parser: ParserConfig{
			Mode:         selector.ModeEnumerate.String(),
			MatchTimeout: 2 * time.Second,
			CacheSize:    256,
		},
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            9090,
			ShutdownTimeout: 10 * time.Second,
			BodyLimit:       "1M",
			RateLimit:       50,
			RateBurst:       100,
		},
		Logging:   *logging.NewDefaultConfig(),
		Telemetry: *telemetry.NewDefaultConfig(),
	}
}

// SelectionMode returns the parsed parser mode.
func (c *Config) SelectionMode() (selector.Mode, error) {
	return selector.ParseMode(c.Parser.Mode)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Templates.Dir == "" {
		return errors.New("templates directory is required")
	}

	if _, err := c.SelectionMode(); err != nil {
		return fmt.Errorf("parser mode: %w", err)
	}
	if c.Parser.MatchTimeout < 0 {
		return fmt.Errorf("match timeout cannot be negative: %s", c.Parser.MatchTimeout)
	}
	if c.Parser.CacheSize < 0 {
		return fmt.Errorf("cache size cannot be negative: %d", c.Parser.CacheSize)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("rate limit cannot be negative: %v", c.Server.RateLimit)
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
		return fmt.Errorf("rate burst must be at least 1 when rate limiting, got %d", c.Server.RateBurst)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}

	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}

	return nil
}
