package parser

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/textparser/internal/extraction"
	"github.com/fyrsmithlabs/textparser/internal/logging"
	"github.com/fyrsmithlabs/textparser/internal/sanitize"
	"github.com/fyrsmithlabs/textparser/internal/selector"
	"github.com/fyrsmithlabs/textparser/internal/template"
)

const instrumentationName = "github.com/fyrsmithlabs/textparser/internal/parser"

// TemplateSource lists raw templates.
type TemplateSource interface {
	List(ctx context.Context) ([]template.Source, error)
}

// SkippedTemplate is a template that failed to compile on the last load.
type SkippedTemplate struct {
	ID  string
	Err error
}

// Parser matches texts against a fixed set of compiled templates.
// It is safe for concurrent use.
type Parser struct {
	source    TemplateSource
	compiler  *template.Compiler
	extractor extraction.Extractor
	recorder  Recorder
	logger    *logging.Logger
	tracer    trace.Tracer
	now       func() time.Time

	cacheSize    int
	matchTimeout time.Duration

	mu        sync.RWMutex
	templates []*template.Template
	skipped   []SkippedTemplate
}

// Option configures a Parser.
type Option func(*Parser)

// WithRecorder sets the event recorder. Events are still returned on each
// Result.
func WithRecorder(r Recorder) Option {
	return func(p *Parser) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithLogger sets the logger used for load warnings.
func WithLogger(l *logging.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithTracer sets the tracer for Parse and Reload spans. The default is the
// global otel tracer.
func WithTracer(t trace.Tracer) Option {
	return func(p *Parser) {
		if t != nil {
			p.tracer = t
		}
	}
}

// WithCache sets the compile cache size. Zero disables the cache.
func WithCache(size int) Option {
	return func(p *Parser) {
		p.cacheSize = size
	}
}

// WithMatchTimeout bounds a single template search. Zero means no bound.
func WithMatchTimeout(d time.Duration) Option {
	return func(p *Parser) {
		p.matchTimeout = d
	}
}

// WithExtractor replaces the regexp2 extraction engine.
func WithExtractor(e extraction.Extractor) Option {
	return func(p *Parser) {
		if e != nil {
			p.extractor = e
		}
	}
}

// New creates a parser and loads every template from src.
//
// Templates that fail to compile are skipped and reported by Skipped; an
// error from src itself fails construction.
func New(ctx context.Context, src TemplateSource, opts ...Option) (*Parser, error) {
	if src == nil {
		return nil, fmt.Errorf("template source is required")
	}

	p := &Parser{
		source:    src,
		extractor: extraction.NewEngine(),
		recorder:  NopRecorder{},
		logger:    logging.NewNop(),
		tracer:    otel.Tracer(instrumentationName),
		now:       time.Now,
		cacheSize: template.DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(p)
	}

	compiler, err := template.NewCompiler(
		template.WithCacheSize(p.cacheSize),
		template.WithMatchTimeout(p.matchTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("creating compiler: %w", err)
	}
	p.compiler = compiler

	if err := p.Reload(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// Reload lists and compiles the templates again and swaps them in. Parse
// calls already running keep the set they started with. On error the
// current set stays in place.
func (p *Parser) Reload(ctx context.Context) error {
	ctx, span := p.tracer.Start(ctx, "parser.Reload")
	defer span.End()

	sources, err := p.source.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "listing templates failed")
		return fmt.Errorf("listing templates: %w", err)
	}

	templates := make([]*template.Template, 0, len(sources))
	var skipped []SkippedTemplate
	for _, src := range sources {
		tpl, err := p.compiler.Load(src)
		if err != nil {
			skipped = append(skipped, SkippedTemplate{ID: src.ID, Err: err})
			p.logger.Warn(ctx, "skipping template",
				zap.String("template", src.ID),
				zap.Error(err),
			)
			continue
		}
		templates = append(templates, tpl)
	}
	templates = selector.Ordered(templates)

	p.mu.Lock()
	p.templates = templates
	p.skipped = skipped
	p.mu.Unlock()

	span.SetAttributes(
		attribute.Int("templates.loaded", len(templates)),
		attribute.Int("templates.skipped", len(skipped)),
	)
	p.logger.Info(ctx, "templates loaded",
		zap.Int("loaded", len(templates)),
		zap.Int("skipped", len(skipped)),
	)
	return nil
}

// Templates returns the loaded templates in enumeration order.
func (p *Parser) Templates() []*template.Template {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]*template.Template(nil), p.templates...)
}

// Skipped returns the templates rejected by the last load.
func (p *Parser) Skipped() []SkippedTemplate {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]SkippedTemplate(nil), p.skipped...)
}

// Parse matches text against the templates chosen by mode. The first
// template that matches supplies the fields. A text no template matches
// yields an empty Result and no error.
func (p *Parser) Parse(ctx context.Context, text string, mode selector.Mode) (*Result, error) {
	res := newResult(uuid.NewString())
	ctx = logging.WithParseID(ctx, res.parseID)

	ctx, span := p.tracer.Start(ctx, "parser.Parse", trace.WithAttributes(
		attribute.String("parse.id", res.parseID),
		attribute.String("parse.mode", mode.String()),
	))
	defer span.End()

	normalized := template.NormalizeWhitespace(text)
	p.emit(ctx, res, Event{Kind: KindParseStarted, Text: normalized})

	p.mu.RLock()
	templates := p.templates
	p.mu.RUnlock()

	for _, tpl := range selector.Select(normalized, templates, mode) {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "parse canceled")
			return nil, err
		}

		captures, ok, err := p.extractor.Extract(normalized, tpl.Compiled)
		p.emit(ctx, res, Event{
			Kind:       KindTemplateAttempted,
			TemplateID: tpl.ID,
			Matched:    ok,
			Err:        err,
		})
		span.AddEvent("template_attempted", trace.WithAttributes(
			attribute.String("template", tpl.ID),
			attribute.Bool("matched", ok),
		))
		if err != nil || !ok {
			continue
		}

		for _, c := range captures {
			res.set(c.Name, sanitize.Value(c.Value))
		}
		res.applied = tpl.ID
		break
	}

	p.emit(ctx, res, Event{
		Kind:       KindParseCompleted,
		TemplateID: res.applied,
		FieldCount: res.Len(),
	})
	span.SetAttributes(
		attribute.Bool("parse.matched", res.applied != ""),
		attribute.String("parse.template", res.applied),
		attribute.Int("parse.fields", res.Len()),
	)
	return res, nil
}

// ParseFile reads path and parses its content. The file is validated
// before any matching happens.
func (p *Parser) ParseFile(ctx context.Context, path string, mode selector.Mode) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParseFile, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrInvalidParseFile, path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParseFile, err)
	}
	return p.Parse(ctx, string(content), mode)
}

func (p *Parser) emit(ctx context.Context, res *Result, ev Event) {
	ev.ParseID = res.parseID
	ev.Time = p.now()
	res.events = append(res.events, ev)
	p.recorder.Record(ctx, ev)
}
