package parser

import (
	"context"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/textparser/internal/logging"
)

// Kind names an event emitted during a Parse call.
type Kind string

const (
	// KindParseStarted carries the normalized input text.
	KindParseStarted Kind = "parse_started"
	// KindTemplateAttempted is emitted once per candidate template.
	KindTemplateAttempted Kind = "template_attempted"
	// KindParseCompleted carries the field count and applied template.
	KindParseCompleted Kind = "parse_completed"
)

// Event is one step of a Parse call.
type Event struct {
	Kind       Kind      `json:"kind"`
	ParseID    string    `json:"parse_id"`
	Time       time.Time `json:"time"`
	Text       string    `json:"text,omitempty"`
	TemplateID string    `json:"template_id,omitempty"`
	Matched    bool      `json:"matched,omitempty"`
	FieldCount int       `json:"field_count,omitempty"`
	Err        error     `json:"-"`
}

// Recorder receives parse events. Implementations must be safe for
// concurrent use.
type Recorder interface {
	Record(ctx context.Context, ev Event)
}

// NopRecorder discards events.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Event) {}

// MultiRecorder fans events out to several recorders in order.
type MultiRecorder []Recorder

func (m MultiRecorder) Record(ctx context.Context, ev Event) {
	for _, r := range m {
		r.Record(ctx, ev)
	}
}

// LogRecorder writes events to a logger. The input text is only written at
// trace level.
type LogRecorder struct {
	logger *logging.Logger
}

// NewLogRecorder creates a recorder on logger. A nil logger discards.
func NewLogRecorder(logger *logging.Logger) *LogRecorder {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &LogRecorder{logger: logger}
}

func (r *LogRecorder) Record(ctx context.Context, ev Event) {
	ctx = logging.WithParseID(ctx, ev.ParseID)

	switch ev.Kind {
	case KindParseStarted:
		r.logger.Debug(ctx, "parse started", zap.Int("text.length", len(ev.Text)))
		if r.logger.Enabled(logging.TraceLevel) {
			r.logger.Trace(ctx, "parse input", zap.String("text", ev.Text))
		}
	case KindTemplateAttempted:
		if ev.Err != nil {
			r.logger.Warn(ctx, "template attempt failed", zap.Object("event", ev))
			return
		}
		r.logger.Debug(ctx, "template attempted",
			zap.String("template", ev.TemplateID),
			zap.Bool("matched", ev.Matched),
		)
	case KindParseCompleted:
		fields := []zap.Field{zap.Int("fields", ev.FieldCount)}
		if ev.TemplateID != "" {
			fields = append(fields, zap.String("template", ev.TemplateID))
		}
		r.logger.Info(ctx, "parse completed", fields...)
	default:
		r.logger.Warn(ctx, "unknown parse event", zap.String("kind", string(ev.Kind)))
	}
}

// MarshalLogObject lets events be logged with zap.Object.
func (ev Event) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("kind", string(ev.Kind))
	enc.AddString("parse_id", ev.ParseID)
	if ev.TemplateID != "" {
		enc.AddString("template", ev.TemplateID)
	}
	if ev.Kind == KindTemplateAttempted {
		enc.AddBool("matched", ev.Matched)
	}
	if ev.Kind == KindParseCompleted {
		enc.AddInt("fields", ev.FieldCount)
	}
	if ev.Err != nil {
		enc.AddString("error", ev.Err.Error())
	}
	return nil
}

var (
	_ Recorder = NopRecorder{}
	_ Recorder = MultiRecorder(nil)
	_ Recorder = (*LogRecorder)(nil)
)
