package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestTrimPathDepth(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		depth int
		want  string
	}{
		{name: "longer than depth", path: "a/b/c/d.go", depth: 3, want: "b/c/d.go"},
		{name: "equal to depth", path: "b/c/d.go", depth: 3, want: "b/c/d.go"},
		{name: "shorter than depth", path: "d.go", depth: 3, want: "d.go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := trimPathDepth(tt.path, tt.depth); got != tt.want {
				t.Errorf("trimPathDepth(%q, %d) = %q, want %q", tt.path, tt.depth, got, tt.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input  string
		want   slog.Level
		wantOK bool
	}{
		{input: "debug", want: slog.LevelDebug, wantOK: true},
		{input: "INFO", want: slog.LevelInfo, wantOK: true},
		{input: "Warn", want: slog.LevelWarn, wantOK: true},
		{input: "error", want: slog.LevelError, wantOK: true},
		{input: "", want: slog.LevelInfo, wantOK: false},
		{input: "verbose", want: slog.LevelInfo, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseLevel(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseLevel(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestNewLogger_ProductionWritesJSONWithCaller(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	log := newLogger(&buf, true, "")
	log.Debug("hidden")
	log.Info("token refreshed", "expires_in", 3600)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected exactly one record at INFO level, got %d: %q", len(lines), buf.String())
	}

	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", lines[0], err)
	}
	if rec["msg"] != "token refreshed" {
		t.Errorf("msg = %v, want %q", rec["msg"], "token refreshed")
	}
	caller, _ := rec["caller"].(string)
	if !strings.Contains(caller, "logger_test.go") {
		t.Errorf("caller = %q, want it to point at logger_test.go", caller)
	}
}

func TestNewLogger_LevelOverride(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	log := newLogger(&buf, false, "warn")
	log.Info("ignored")
	log.Warn("cooldown active")

	out := buf.String()
	if strings.Contains(out, "ignored") {
		t.Errorf("INFO record should be filtered at WARN level: %q", out)
	}
	if !strings.Contains(out, "cooldown active") {
		t.Errorf("WARN record missing: %q", out)
	}
}
