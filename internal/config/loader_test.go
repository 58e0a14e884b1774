package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/textparser/internal/logging"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "textparser.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, `
templates:
  dir: /srv/templates
  watch: true
parser:
  mode: best-fit
  match_timeout: 250ms
  cache_size: 0
server:
  port: 8088
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/templates", cfg.Templates.Dir)
	assert.True(t, cfg.Templates.Watch)
	assert.Equal(t, ".templateignore", cfg.Templates.IgnoreFile, "unset keys keep defaults")
	assert.Equal(t, "best-fit", cfg.Parser.Mode)
	assert.Equal(t, 250*time.Millisecond, cfg.Parser.MatchTimeout)
	assert.Equal(t, 0, cfg.Parser.CacheSize)
	assert.Equal(t, 8088, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, zapcore.DebugLevel, cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
parser:
  mode: enumerate
server:
  port: 8088
`)
	t.Setenv("TEXTPARSER_PARSER_MODE", "best-fit")
	t.Setenv("TEXTPARSER_SERVER_PORT", "9191")
	t.Setenv("TEXTPARSER_PARSER_MATCH_TIMEOUT", "3s")
	t.Setenv("TEXTPARSER_TEMPLATES_IGNORE_FILE", ".ignore")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "best-fit", cfg.Parser.Mode)
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Parser.MatchTimeout)
	assert.Equal(t, ".ignore", cfg.Templates.IgnoreFile)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("directory", func(t *testing.T) {
		_, err := Load(t.TempDir())
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "parser: [unclosed"))
		assert.Error(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := Load(writeConfig(t, "parser:\n  mode: sometimes\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validation")
	})

	t.Run("too large", func(t *testing.T) {
		big := "# " + strings.Repeat("x", maxConfigFileSize) + "\n"
		_, err := Load(writeConfig(t, big))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "too large")
	})
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "server.port", envKey("TEXTPARSER_SERVER_PORT"))
	assert.Equal(t, "templates.ignore_file", envKey("TEXTPARSER_TEMPLATES_IGNORE_FILE"))
	assert.Equal(t, "debug", envKey("TEXTPARSER_DEBUG"))
	assert.Equal(t, "telemetry.service_name", envKey("TEXTPARSER_TELEMETRY_SERVICE_NAME"))
	assert.Equal(t, "telemetry.sampling.rate", envKey("TEXTPARSER_TELEMETRY_SAMPLING_RATE"))
	assert.Equal(t, "telemetry.metrics.export_interval", envKey("TEXTPARSER_TELEMETRY_METRICS_EXPORT_INTERVAL"))
	assert.Equal(t, "logging.sampling.thereafter", envKey("TEXTPARSER_LOGGING_SAMPLING_THEREAFTER"))
	assert.Equal(t, "logging.redaction.fields", envKey("TEXTPARSER_LOGGING_REDACTION_FIELDS"))
	assert.Equal(t, "logging.level", envKey("TEXTPARSER_LOGGING_LEVEL"))
}

func TestLoad_NestedEnv(t *testing.T) {
	t.Setenv("TEXTPARSER_TELEMETRY_SAMPLING_RATE", "0.25")
	t.Setenv("TEXTPARSER_TELEMETRY_SHUTDOWN_TIMEOUT", "2s")
	t.Setenv("TEXTPARSER_LOGGING_SAMPLING_INITIAL", "5")
	t.Setenv("TEXTPARSER_LOGGING_REDACTION_FIELDS", "iban,pin")
	t.Setenv("TEXTPARSER_LOGGING_LEVEL", "trace")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 0.25, cfg.Telemetry.Sampling.Rate)
	assert.Equal(t, 2*time.Second, cfg.Telemetry.Shutdown.Timeout)
	assert.Equal(t, 5, cfg.Logging.Sampling.Initial)
	assert.Equal(t, []string{"iban", "pin"}, cfg.Logging.Redaction.Fields)
	assert.Equal(t, logging.TraceLevel, cfg.Logging.Level)
}

func TestLoad_LoggingSection(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: warn
  format: console
  caller: true
  output:
    stderr: true
  sampling:
    enabled: true
    tick: 2s
    initial: 20
    thereafter: 50
  fields:
    region: eu-west
  redaction:
    enabled: true
    fields: [iban, account_holder]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	lc := cfg.Logging
	assert.Equal(t, zapcore.WarnLevel, lc.Level)
	assert.Equal(t, "console", lc.Format)
	assert.True(t, lc.Caller)
	assert.Equal(t, 2*time.Second, lc.Sampling.Tick)
	assert.Equal(t, 20, lc.Sampling.Initial)
	assert.Equal(t, 50, lc.Sampling.Thereafter)
	assert.Equal(t, "eu-west", lc.Fields["region"])
	assert.Equal(t, "textparser", lc.Fields["service"], "default fields survive")
	assert.Equal(t, []string{"iban", "account_holder"}, lc.Redaction.Fields)

	_, err = logging.NewLogger(&lc, nil)
	assert.NoError(t, err)
}

func TestLoad_InvalidLogging(t *testing.T) {
	t.Run("unknown level", func(t *testing.T) {
		_, err := Load(writeConfig(t, "logging:\n  level: loud\n"))
		assert.Error(t, err)
	})

	t.Run("zero tick", func(t *testing.T) {
		_, err := Load(writeConfig(t, "logging:\n  sampling:\n    tick: 0s\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling tick")
	})
}

func TestLoad_TelemetrySection(t *testing.T) {
	path := writeConfig(t, `
telemetry:
  enabled: true
  endpoint: localhost:4318
  protocol: http/protobuf
  sampling:
    rate: 0.5
`)
	t.Setenv("TEXTPARSER_TELEMETRY_SERVICE_NAME", "parser-edge")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "localhost:4318", cfg.Telemetry.Endpoint)
	assert.Equal(t, "http/protobuf", cfg.Telemetry.Protocol)
	assert.Equal(t, 0.5, cfg.Telemetry.Sampling.Rate)
	assert.Equal(t, "parser-edge", cfg.Telemetry.ServiceName)
	assert.Equal(t, 15*time.Second, cfg.Telemetry.Metrics.ExportInterval, "nested defaults survive")
}

func TestLoad_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "textparser.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[templates]
dir = "/srv/templates"

[parser]
mode = "best-fit"
match_timeout = "500ms"
cache_size = 16

[server]
port = 8089
rate_limit = 2.5
`), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/templates", cfg.Templates.Dir)
	assert.Equal(t, "best-fit", cfg.Parser.Mode)
	assert.Equal(t, 500*time.Millisecond, cfg.Parser.MatchTimeout)
	assert.Equal(t, 16, cfg.Parser.CacheSize)
	assert.Equal(t, 8089, cfg.Server.Port)
	assert.Equal(t, 2.5, cfg.Server.RateLimit)
	assert.Equal(t, 100, cfg.Server.RateBurst, "unset keys keep defaults")
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "textparser.toml")
	require.NoError(t, os.WriteFile(path, []byte("[parser\nmode ="), 0600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestTOMLParser_RoundTrip(t *testing.T) {
	p := tomlParser{}
	out, err := p.Marshal(map[string]interface{}{"parser": map[string]interface{}{"mode": "enumerate"}})
	require.NoError(t, err)

	back, err := p.Unmarshal(out)
	require.NoError(t, err)
	assert.Equal(t, "enumerate", back["parser"].(map[string]interface{})["mode"])
}
