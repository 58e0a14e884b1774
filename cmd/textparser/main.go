// Package main implements the textparser CLI: extract structured fields from
// text files by matching them against a directory of templates.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/log"

	"github.com/fyrsmithlabs/textparser/internal/config"
	"github.com/fyrsmithlabs/textparser/internal/logging"
	"github.com/fyrsmithlabs/textparser/internal/parser"
	"github.com/fyrsmithlabs/textparser/internal/store"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configPath   string
	templatesDir string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "textparser",
		Short: "Extract structured data from text using templates",
		Long: `textparser matches free text against a directory of sample documents
annotated with {%name%} and {%name:pattern%} placeholders and prints the
values captured by the first matching template.`,
		Version:      fmt.Sprintf("%s (%s)", version, gitCommit),
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML or TOML config file")
	root.PersistentFlags().StringVar(&opts.templatesDir, "templates", "", "templates directory (overrides config)")

	root.AddCommand(newParseCmd(opts))
	root.AddCommand(newCompileCmd())
	root.AddCommand(newTemplatesCmd(opts))
	root.AddCommand(newServeCmd(opts))

	return root
}

// loadConfig loads configuration and applies flag overrides.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.templatesDir != "" {
		cfg.Templates.Dir = o.templatesDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger from the logging section. Without a
// provider logs go to stderr only; with one and telemetry enabled they are
// also exported over OTLP.
func newLogger(cfg *config.Config, provider log.LoggerProvider) (*logging.Logger, error) {
	lc := cfg.Logging
	if provider == nil {
		lc.Output = logging.OutputConfig{Stderr: true}
	} else if cfg.Telemetry.Enabled {
		lc.Output.OTEL = true
	}
	return logging.NewLogger(&lc, provider)
}

// newParser opens the configured templates directory and loads it.
func newParser(ctx context.Context, cfg *config.Config, logger *logging.Logger, extra ...parser.Option) (*parser.Parser, *store.Dir, error) {
	dir, err := store.NewDir(cfg.Templates.Dir, store.WithIgnoreFile(cfg.Templates.IgnoreFile))
	if err != nil {
		return nil, nil, err
	}

	opts := []parser.Option{
		parser.WithLogger(logger),
		parser.WithCache(cfg.Parser.CacheSize),
		parser.WithMatchTimeout(cfg.Parser.MatchTimeout),
	}
	opts = append(opts, extra...)

	p, err := parser.New(ctx, dir, opts...)
	if err != nil {
		return nil, nil, err
	}
	return p, dir, nil
}
