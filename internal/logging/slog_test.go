package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T, level slog.Level) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: level})
	return NewSlogLogger(slog.New(h)), &buf
}

func records(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestSlogLogger_Levels(t *testing.T) {
	log, buf := newTestLogger(t, slog.LevelDebug)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	recs := records(t, buf)
	require.Len(t, recs, 4)

	tests := []struct {
		level string
		msg   string
		key   string
	}{
		{"DEBUG", "dbg", "a"},
		{"INFO", "inf", "b"},
		{"WARN", "wrn", "c"},
		{"ERROR", "err", "d"},
	}
	for i, tc := range tests {
		assert.Equal(t, tc.level, recs[i]["level"])
		assert.Equal(t, tc.msg, recs[i]["msg"])
		assert.EqualValues(t, i+1, recs[i][tc.key])
	}
}

func TestSlogLogger_FiltersBelowLevel(t *testing.T) {
	log, buf := newTestLogger(t, slog.LevelWarn)

	log.Debug(context.Background(), "hidden")
	log.Info(context.Background(), "hidden")
	log.Warn(context.Background(), "shown")

	recs := records(t, buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "shown", recs[0]["msg"])
}

func TestSlogLogger_WithAndContextArgs(t *testing.T) {
	log, buf := newTestLogger(t, slog.LevelInfo)

	ctx := ContextWith(context.Background(), "attempt", "a-1")
	ctx = ContextWith(ctx, "url", "https://api/x")
	log.With("component", "engine").Info(ctx, "fetch failed", "k", "v")

	recs := records(t, buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "engine", recs[0]["component"])
	assert.Equal(t, "a-1", recs[0]["attempt"])
	assert.Equal(t, "https://api/x", recs[0]["url"])
	assert.Equal(t, "v", recs[0]["k"])
}

func TestSlogLogger_NilContext(t *testing.T) {
	log, buf := newTestLogger(t, slog.LevelInfo)

	var ctx context.Context
	log.Info(ctx, "ok")
	require.Len(t, records(t, buf), 1)
}

func TestContextArgs_DoNotLeakBetweenBranches(t *testing.T) {
	base := ContextWith(context.Background(), "a", 1)
	left := ContextWith(base, "b", 2)
	right := ContextWith(base, "c", 3)

	assert.Equal(t, []any{"a", 1}, ContextArgs(base))
	assert.Equal(t, []any{"a", 1, "b", 2}, ContextArgs(left))
	assert.Equal(t, []any{"a", 1, "c", 3}, ContextArgs(right))
	assert.Nil(t, ContextArgs(context.Background()))
}
