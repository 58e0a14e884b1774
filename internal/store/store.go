// Package store lists raw templates for the parser.
//
// Dir serves the regular files directly inside one directory; Static serves
// an in-memory list. Neither compiles anything: the parser owns compilation
// and decides when to re-list.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fyrsmithlabs/textparser/internal/ignore"
	"github.com/fyrsmithlabs/textparser/internal/template"
)

// ErrInvalidTemplatesDirectory is returned when the templates path is
// missing or not a directory.
var ErrInvalidTemplatesDirectory = errors.New("invalid templates directory")

// DefaultIgnoreFile is the ignore file name looked up inside a template
// directory.
const DefaultIgnoreFile = ".templateignore"

// Dir lists templates from a directory.
//
// Only regular, non-empty files directly inside the directory are listed.
// Hidden files (leading dot) and names matched by the ignore file are
// skipped. Symlinks to regular files are followed. Each source ID is the
// file name.
type Dir struct {
	path       string
	ignoreFile string
}

// DirOption configures a Dir.
type DirOption func(*Dir)

// WithIgnoreFile sets the ignore file name. An empty name disables ignoring.
func WithIgnoreFile(name string) DirOption {
	return func(d *Dir) {
		d.ignoreFile = name
	}
}

// NewDir validates path and returns a Dir store.
func NewDir(path string, opts ...DirOption) (*Dir, error) {
	if err := checkDir(path); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTemplatesDirectory, path, err)
	}

	d := &Dir{path: abs, ignoreFile: DefaultIgnoreFile}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Path returns the absolute directory path.
func (d *Dir) Path() string {
	return d.path
}

// List reads the directory. The ignore file is re-read on every call so
// edits to it take effect on the next reload.
func (d *Dir) List(ctx context.Context) ([]template.Source, error) {
	if err := checkDir(d.path); err != nil {
		return nil, err
	}

	matcher, err := ignore.Load(d.path, d.ignoreFile)
	if err != nil {
		return nil, fmt.Errorf("loading ignore file: %w", err)
	}

	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplatesDirectory, err)
	}

	var sources []template.Source
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := entry.Name()
		if strings.HasPrefix(name, ".") || matcher.Match(name) {
			continue
		}

		full := filepath.Join(d.path, name)
		info, err := os.Stat(full)
		if err != nil || !info.Mode().IsRegular() || info.Size() == 0 {
			continue
		}

		content, err := os.ReadFile(full)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", name, err)
		}
		if len(content) == 0 {
			continue
		}

		sources = append(sources, template.Source{ID: name, Text: string(content)})
	}

	return sources, nil
}

func checkDir(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidTemplatesDirectory)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTemplatesDirectory, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrInvalidTemplatesDirectory, path)
	}
	return nil
}

// Static serves a fixed list of sources.
type Static struct {
	sources []template.Source
}

// NewStatic returns a store over sources.
func NewStatic(sources ...template.Source) *Static {
	return &Static{sources: append([]template.Source(nil), sources...)}
}

// List returns a copy of the sources.
func (s *Static) List(ctx context.Context) ([]template.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]template.Source(nil), s.sources...), nil
}
