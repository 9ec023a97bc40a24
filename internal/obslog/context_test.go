package obslog

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextWithLogger_RoundTrip(t *testing.T) {
	lg := slog.Default().With("component", "test")
	ctx := ContextWithLogger(context.Background(), lg)
	assert.Same(t, lg, FromContext(ctx))
}

func TestFromContext_DefaultsWhenAbsent(t *testing.T) {
	assert.Equal(t, slog.Default(), FromContext(context.Background()))
	assert.Equal(t, slog.Default(), FromContext(nil))
}

func TestContextWithRunID_RoundTrip(t *testing.T) {
	ctx := ContextWithRunID(context.Background(), "run-123")
	assert.Equal(t, "run-123", RunIDFromContext(ctx))
}

func TestRunIDFromContext_EmptyWhenAbsent(t *testing.T) {
	assert.Equal(t, "", RunIDFromContext(context.Background()))
	assert.Equal(t, "", RunIDFromContext(nil))
}

func TestContextWithRunID_IgnoresEmptyID(t *testing.T) {
	ctx := ContextWithRunID(context.Background(), "")
	assert.Equal(t, "", RunIDFromContext(ctx))
}
