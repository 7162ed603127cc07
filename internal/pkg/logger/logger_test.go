package logger

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in    string
		want  slog.Level
		known bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"", slog.LevelInfo, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLevel(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.known, ok)
		})
	}
}

func TestAdapterWithDoesNotAliasParent(t *testing.T) {
	parent := &slogAdapter{attrs: make([]any, 0, 8)}
	parent.attrs = append(parent.attrs, "component", "a")

	child1 := parent.With("k1", "v1").(*slogAdapter)
	child2 := parent.With("k2", "v2").(*slogAdapter)

	assert.Equal(t, []any{"component", "a", "k1", "v1"}, child1.attrs)
	assert.Equal(t, []any{"component", "a", "k2", "v2"}, child2.attrs)
	assert.Len(t, parent.attrs, 2)
}
