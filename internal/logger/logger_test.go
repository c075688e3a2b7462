package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewWithWriter(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"not-a-level", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewWithWriter(tt.level, &buf)
			if l.GetLevel() != tt.want {
				t.Errorf("Expected level %v, got %v", tt.want, l.GetLevel())
			}
		})
	}
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("info", &buf)
	l.Info().Str("session_key", "new").Msg("Session opened")

	out := buf.String()
	for _, want := range []string{"Session opened", "session_key", "pid", "git_revision"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected log output to contain %q, got %q", want, out)
		}
	}

	if zerolog.DefaultContextLogger == nil {
		t.Error("Expected default context logger to be installed")
	}
}
