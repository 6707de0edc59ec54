package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := NewSlogAdapter(slog.New(handler)).With("stage", "mapper")

	logger.Debug("mapped schema", "name", "Pet")
	logger.Warn("fallback to any")

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, "stage=mapper")
	assert.Contains(t, out, "name=Pet")
	assert.Contains(t, out, "level=WARN")
}

func TestOrNop(t *testing.T) {
	assert.Equal(t, NopLogger{}, OrNop(nil))

	l := NewSlogAdapter(nil)
	assert.Same(t, l, OrNop(l))

	// NopLogger.With stays a NopLogger
	assert.Equal(t, NopLogger{}, NopLogger{}.With("k", "v"))
}
