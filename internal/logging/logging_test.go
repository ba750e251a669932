package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWithLogger_RoundTrip(t *testing.T) {
	t.Parallel()
	log := Discard()
	ctx := WithLogger(context.Background(), log)
	if got := FromContext(ctx); got != log {
		t.Error("FromContext did not return the logger stored by WithLogger")
	}
}

func TestFromContext_Fallback(t *testing.T) {
	t.Parallel()
	if got := FromContext(context.Background()); got == nil {
		t.Fatal("FromContext returned nil for a bare context")
	}
}
