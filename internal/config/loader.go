package config

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/textparser/internal/logging"
)

const (
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "TEXTPARSER_"

	maxConfigFileSize = 1024 * 1024 // 1MB
)

// Load loads configuration from an optional YAML or TOML file, then overrides
// it with environment variables.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (TEXTPARSER_PARSER_MODE, TEXTPARSER_SERVER_PORT, etc.)
//  2. Config file at configPath, when configPath is not empty (.toml files
//     are read as TOML, everything else as YAML)
//  3. Default()
//
// # Environment Variable Mapping
//
// The prefix is stripped and the first underscore separates section from
// field name. The nested sections listed in nestedSections take one more
// level:
//
//	TEXTPARSER_TEMPLATES_IGNORE_FILE    -> templates.ignore_file
//	TEXTPARSER_PARSER_MATCH_TIMEOUT     -> parser.match_timeout
//	TEXTPARSER_TELEMETRY_SAMPLING_RATE  -> telemetry.sampling.rate
//	TEXTPARSER_LOGGING_REDACTION_FIELDS -> logging.redaction.fields
//
// List values such as logging.redaction.fields are comma separated.
// Keys of logging.fields cannot be set from the environment.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		content, err := readConfigFile(configPath)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(content), parserFor(configPath)); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Keys absent from file and environment keep their defaults.
	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{DecoderConfig: decoderConfig()}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// nestedSections are the sub-sections whose fields live one level down.
var nestedSections = []string{
	"logging_output",
	"logging_sampling",
	"logging_redaction",
	"telemetry_sampling",
	"telemetry_metrics",
	"telemetry_shutdown",
}

// envKey maps TEXTPARSER_SECTION_FIELD_NAME to section.field_name, and
// TEXTPARSER_SECTION_SUB_FIELD to section.sub.field for nestedSections.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range nestedSections {
		if field, ok := strings.CutPrefix(lower, section+"_"); ok && field != "" {
			return strings.Replace(section, "_", ".", 1) + "." + field
		}
	}
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}
	return parts[0] + "." + parts[1]
}

// decoderConfig extends koanf's default hooks with trace-aware log levels
// and comma separated lists.
func decoderConfig() *mapstructure.DecoderConfig {
	return &mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.DecodeHookFuncType(levelHook),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.TextUnmarshallerHookFunc(),
		),
		WeaklyTypedInput: true,
	}
}

var levelType = reflect.TypeOf(zapcore.Level(0))

// levelHook decodes level names through logging.LevelFromString so "trace"
// is accepted.
func levelHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != levelType {
		return data, nil
	}
	return logging.LevelFromString(reflect.ValueOf(data).String())
}

// readConfigFile opens the file once and validates it through the open
// descriptor.
func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("config file %s is not a regular file", path)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	content, err := io.ReadAll(io.LimitReader(f, maxConfigFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}
