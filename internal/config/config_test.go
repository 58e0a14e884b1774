package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/textparser/internal/selector"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	mode, err := cfg.SelectionMode()
	require.NoError(t, err)
	assert.Equal(t, selector.ModeEnumerate, mode)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty templates dir", func(c *Config) { c.Templates.Dir = "" }},
		{"unknown mode", func(c *Config) { c.Parser.Mode = "random" }},
		{"negative timeout", func(c *Config) { c.Parser.MatchTimeout = -time.Second }},
		{"negative cache", func(c *Config) { c.Parser.CacheSize = -1 }},
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }},
		{"zero shutdown", func(c *Config) { c.Server.ShutdownTimeout = 0 }},
		{"negative rate limit", func(c *Config) { c.Server.RateLimit = -1 }},
		{"rate limit without burst", func(c *Config) { c.Server.RateBurst = 0 }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"zero sampling tick", func(c *Config) { c.Logging.Sampling.Tick = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
