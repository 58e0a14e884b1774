package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fyrsmithlabs/textparser/internal/parser"
	"github.com/fyrsmithlabs/textparser/internal/selector"
	"github.com/fyrsmithlabs/textparser/internal/template"
)

// parseOutput is one record printed by the parse command.
type parseOutput struct {
	Source   string         `json:"source" yaml:"source"`
	Matched  bool           `json:"matched" yaml:"matched"`
	Template string         `json:"template,omitempty" yaml:"template,omitempty"`
	Data     *parser.Result `json:"data" yaml:"data"`
}

func newParseCmd(opts *globalOptions) *cobra.Command {
	var (
		bestFit bool
		output  string
	)

	cmd := &cobra.Command{
		Use:   "parse [file|-]...",
		Short: "Extract fields from files or stdin",
		Long: `Parse each input against the templates directory and print one record per
input with the fields captured by the applied template.

Examples:
  # Parse a file, trying templates in enumeration order
  textparser parse --templates ./templates mail.txt

  # Only try the most similar template
  textparser parse --best-fit mail.txt

  # Parse stdin and print YAML
  cat mail.txt | textparser parse --output yaml -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "json" && output != "yaml" {
				return fmt.Errorf("output must be 'json' or 'yaml', got %q", output)
			}
			if len(args) == 0 {
				args = []string{"-"}
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			mode, err := cfg.SelectionMode()
			if err != nil {
				return err
			}
			if bestFit {
				mode = selector.ModeBestFit
			}

			logger, err := newLogger(cfg, nil)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			ctx := cmd.Context()
			p, _, err := newParser(ctx, cfg, logger, parser.WithRecorder(parser.NewLogRecorder(logger)))
			if err != nil {
				return err
			}

			records := make([]parseOutput, 0, len(args))
			for _, arg := range args {
				var res *parser.Result
				if arg == "-" {
					data, err := io.ReadAll(cmd.InOrStdin())
					if err != nil {
						return fmt.Errorf("failed to read from stdin: %w", err)
					}
					res, err = p.Parse(ctx, string(data), mode)
					if err != nil {
						return err
					}
				} else {
					res, err = p.ParseFile(ctx, arg, mode)
					if err != nil {
						return err
					}
				}

				applied, matched := res.AppliedTemplate()
				records = append(records, parseOutput{
					Source:   arg,
					Matched:  matched,
					Template: applied,
					Data:     res,
				})
			}

			return writeRecords(cmd.OutOrStdout(), output, records)
		},
	}

	cmd.Flags().BoolVar(&bestFit, "best-fit", false, "only try the template most similar to the input")
	cmd.Flags().StringVarP(&output, "output", "o", "json", "output format: json or yaml")

	return cmd
}

// writeRecords prints one JSON line or one YAML document per record.
func writeRecords(w io.Writer, format string, records []parseOutput) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		for _, r := range records {
			if err := enc.Encode(r); err != nil {
				return fmt.Errorf("failed to encode yaml: %w", err)
			}
		}
		return enc.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
	}
	return nil
}

func newCompileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compile <template-file>",
		Short: "Print the regular expression a template compiles to",
		Long: `Compile a single template file and print its pattern and variables.
Useful for checking a new template before dropping it into the templates
directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read template %s: %w", args[0], err)
			}

			compiled, err := template.Compile(string(raw))
			if err != nil {
				return fmt.Errorf("template %s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Pattern:   %s\n", compiled.Pattern)
			fmt.Fprintf(out, "Variables: %d\n", len(compiled.Variables))
			for _, name := range compiled.Variables {
				fmt.Fprintf(out, "  - %s\n", name)
			}
			return nil
		},
	}
}

func newTemplatesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List loaded templates in enumeration order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg, nil)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			p, dir, err := newParser(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Templates in %s:\n", dir.Path())
			for _, t := range p.Templates() {
				fmt.Fprintf(out, "  %s (%d variables)\n", t.ID, len(t.Variables))
			}
			if skipped := p.Skipped(); len(skipped) > 0 {
				fmt.Fprintf(out, "Skipped:\n")
				for _, s := range skipped {
					fmt.Fprintf(out, "  %s: %v\n", s.ID, s.Err)
				}
			}
			return nil
		},
	}
}
