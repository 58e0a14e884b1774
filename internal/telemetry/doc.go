// Package telemetry sets up OpenTelemetry tracing and metrics for textparser.
//
// Telemetry is disabled by default. When disabled, Tracer and Meter return
// the global no-op implementations so callers never need nil checks.
//
// When enabled, spans and metrics are exported over OTLP (gRPC by default,
// or HTTP with protocol "http/protobuf"). Exporter failures degrade
// telemetry instead of failing startup:
//
//	tel, err := telemetry.New(ctx, cfg)
//	if err != nil {
//	    return err // invalid config only
//	}
//	defer tel.Shutdown(context.Background())
//
//	p, err := parser.New(ctx, src, parser.WithTracer(tel.Tracer("textparser/parser")))
//
// TestTelemetry records spans and metrics in memory for tests.
package telemetry
