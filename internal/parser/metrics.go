package parser

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	outcomeMatched   = "matched"
	outcomeUnmatched = "unmatched"
	outcomeError     = "error"
)

// MetricsRecorder turns parse events into Prometheus metrics.
//
// Metrics:
//   - textparser_parses_total{outcome} - parse calls by matched/unmatched
//   - textparser_template_attempts_total{template,outcome} - template attempts
//   - textparser_extracted_fields - fields per matched parse
type MetricsRecorder struct {
	ParsesTotal     *prometheus.CounterVec
	AttemptsTotal   *prometheus.CounterVec
	ExtractedFields prometheus.Histogram
}

// NewMetricsRecorder registers the parser metrics on reg. Passing a fresh
// registry per recorder avoids duplicate registration panics in tests.
func NewMetricsRecorder(reg prometheus.Registerer) *MetricsRecorder {
	factory := promauto.With(reg)
	return &MetricsRecorder{
		ParsesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "textparser_parses_total",
				Help: "Total number of parse calls by outcome",
			},
			[]string{"outcome"},
		),
		AttemptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "textparser_template_attempts_total",
				Help: "Total number of template match attempts",
			},
			[]string{"template", "outcome"},
		),
		ExtractedFields: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "textparser_extracted_fields",
				Help:    "Number of fields extracted by matched parses",
				Buckets: []float64{1, 2, 4, 8, 16, 32, 64},
			},
		),
	}
}

func (m *MetricsRecorder) Record(_ context.Context, ev Event) {
	switch ev.Kind {
	case KindTemplateAttempted:
		outcome := outcomeUnmatched
		switch {
		case ev.Err != nil:
			outcome = outcomeError
		case ev.Matched:
			outcome = outcomeMatched
		}
		m.AttemptsTotal.WithLabelValues(ev.TemplateID, outcome).Inc()
	case KindParseCompleted:
		if ev.TemplateID == "" {
			m.ParsesTotal.WithLabelValues(outcomeUnmatched).Inc()
			return
		}
		m.ParsesTotal.WithLabelValues(outcomeMatched).Inc()
		m.ExtractedFields.Observe(float64(ev.FieldCount))
	}
}

var _ Recorder = (*MetricsRecorder)(nil)
