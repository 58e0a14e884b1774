// Package logging provides structured logging for textparser.
//
// # Overview
//
// The package wraps Zap with:
//   - A custom Trace level (-2, below Debug) used for per-capture detail
//   - Stderr output, so parse results on stdout stay machine readable
//   - Optional OpenTelemetry output through the otelzap bridge
//   - Automatic context fields (trace_id, parse.id, request.id)
//   - Key-based redaction of sensitive captured fields
//   - Level-aware sampling (errors never sampled)
//
// # Usage
//
//	logger, err := logging.NewLogger(logging.NewDefaultConfig(), nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
//	ctx = logging.WithParseID(ctx, id)
//	logger.Info(ctx, "parse completed", zap.Int("fields", n))
//
// # Testing
//
// TestLogger records entries in memory:
//
//	tl := logging.NewTestLogger()
//	tl.Info(ctx, "parse started")
//	tl.AssertLogged(t, zapcore.InfoLevel, "parse started")
//
// Logger is safe for concurrent use. Child loggers (With, Named) do not
// affect their parent.
package logging
