package logging

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"WARN":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"":      zapcore.InfoLevel,
		"bogus": zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q): expected %v, got %v", in, want, got)
		}
	}
}

func TestNewLogger(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: "debug", Format: "console"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l.With(String("component", "test")).Info("[TEST] hello", Int("n", 1), Err(errors.New("boom")))
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error("discarded", Float64("x", 1.5))
	if err := l.Sync(); err != nil {
		t.Errorf("nop sync should not fail: %v", err)
	}
}

func TestErrNil(t *testing.T) {
	if f := Err(nil); f.Value != "<nil>" {
		t.Errorf("expected <nil>, got %v", f.Value)
	}
}

func TestNewLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "underwriting.log")
	l, err := NewLogger(LogConfig{Level: "info", Format: "json", Output: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l.Info("evaluation complete", String("evaluation_id", "abc"))
	l.Debug("filtered out")
	l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), `"evaluation_id":"abc"`) {
		t.Errorf("expected structured field in log, got %s", data)
	}
	if strings.Contains(string(data), "filtered out") {
		t.Error("debug line should be filtered at info level")
	}
}
