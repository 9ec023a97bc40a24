// Package obslog provides context-scoped structured logging, adapted from
// the teacher's HTTP-request-correlation helper for this module's batch-run
// correlation needs (a run_id spanning one pipeline invocation in place of
// an HTTP request_id).
package obslog

import (
	"context"
	"log/slog"
)

type loggerContextKey struct{}

type runIDContextKey struct{}

// ContextWithLogger attaches a non-nil logger to the context.
func ContextWithLogger(ctx context.Context, lg *slog.Logger) context.Context {
	if ctx == nil || lg == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerContextKey{}, lg)
}

// FromContext returns the logger stored in the context, or the default slog
// logger when none is present.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.Default()
	}
	if v := ctx.Value(loggerContextKey{}); v != nil {
		if lg, ok := v.(*slog.Logger); ok && lg != nil {
			return lg
		}
	}
	return slog.Default()
}

// ContextWithRunID stores a non-empty run_id in the context so every stage
// and adapter call below the Pipeline Orchestrator can correlate its logs
// with one end-to-end analysis run.
func ContextWithRunID(ctx context.Context, runID string) context.Context {
	if ctx == nil || runID == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDContextKey{}, runID)
}

// RunIDFromContext retrieves the run_id from the context, or an empty
// string when none is present.
func RunIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v := ctx.Value(runIDContextKey{}); v != nil {
		if rid, ok := v.(string); ok {
			return rid
		}
	}
	return ""
}
