package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func newBufferLogger(t *testing.T, level, format string) (Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l, err := New(Config{Level: level, Format: format, Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return l, &buf
}

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log %q: %v", buf.String(), err)
	}
	return entry
}

func TestNew_Formats(t *testing.T) {
	for _, format := range []string{"json", "text", "console", ""} {
		t.Run("format="+format, func(t *testing.T) {
			l, buf := newBufferLogger(t, "info", format)
			l.Info("trainee registered", "username", "john.smith")

			out := buf.String()
			if !strings.Contains(out, "trainee registered") {
				t.Fatalf("output %q missing message", out)
			}
			isJSON := strings.HasPrefix(out, "{")
			wantJSON := format == "json" || format == ""
			if isJSON != wantJSON {
				t.Errorf("format %q produced JSON=%v, want %v", format, isJSON, wantJSON)
			}
		})
	}
}

func TestLogger_Levels(t *testing.T) {
	l, buf := newBufferLogger(t, "debug", "json")

	tests := []struct {
		level   string
		logFunc func(string, ...any)
	}{
		{"DEBUG", l.Debug},
		{"INFO", l.Info},
		{"WARN", l.Warn},
		{"ERROR", l.Error},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf.Reset()
			tt.logFunc("training created", "trainer", "anna.brown")

			entry := decodeEntry(t, buf)
			if entry["level"] != tt.level {
				t.Errorf("level = %v, want %s", entry["level"], tt.level)
			}
			if entry["msg"] != "training created" {
				t.Errorf("msg = %v", entry["msg"])
			}
			if entry["trainer"] != "anna.brown" {
				t.Errorf("trainer = %v", entry["trainer"])
			}
		})
	}
}

func TestLogger_With(t *testing.T) {
	l, buf := newBufferLogger(t, "info", "json")

	l.With("component", "httpserver").Info("listening")

	entry := decodeEntry(t, buf)
	if entry["component"] != "httpserver" {
		t.Errorf("component = %v, want httpserver", entry["component"])
	}
}

func TestSetLevel(t *testing.T) {
	l, buf := newBufferLogger(t, "warn", "json")
	t.Cleanup(func() { SetLevel("info") })

	l.Info("suppressed")
	if buf.Len() != 0 {
		t.Fatalf("info logged at warn level: %q", buf.String())
	}

	SetLevel("debug")
	if GetLevel() != "debug" {
		t.Fatalf("GetLevel() = %q, want debug", GetLevel())
	}
	l.Debug("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Fatal("debug message not logged after SetLevel(debug)")
	}
}

func TestNew_UnknownLevel(t *testing.T) {
	if _, err := New(Config{Level: "verbose"}); err == nil {
		t.Fatal("New accepted an unknown level")
	}
	l, err := New(Config{Output: &bytes.Buffer{}})
	if err != nil || l == nil {
		t.Fatalf("New with empty level = %v, %v", l, err)
	}
	if GetLevel() != "info" {
		t.Errorf("empty level resolved to %q, want info", GetLevel())
	}
}

func TestSetLevel_IgnoresUnknown(t *testing.T) {
	newBufferLogger(t, "error", "json")
	t.Cleanup(func() { SetLevel("info") })

	SetLevel("loud")
	if GetLevel() != "error" {
		t.Errorf("GetLevel() = %q after unknown SetLevel, want error", GetLevel())
	}
	SetLevel("WARNING")
	if GetLevel() != "warn" {
		t.Errorf("GetLevel() = %q, want warn", GetLevel())
	}
}

func TestValidLevel(t *testing.T) {
	for _, lvl := range []string{"debug", "Info", "WARN", "warning", "error"} {
		if !ValidLevel(lvl) {
			t.Errorf("ValidLevel(%q) = false", lvl)
		}
	}
	for _, lvl := range []string{"", "trace", "fatal"} {
		if ValidLevel(lvl) {
			t.Errorf("ValidLevel(%q) = true", lvl)
		}
	}
}

func TestSetDefault(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	l, buf := newBufferLogger(t, "debug", "json")
	SetDefault(l)

	if Default() != l {
		t.Fatal("Default() did not return the logger passed to SetDefault")
	}

	Default().Info("through default")
	if !strings.Contains(buf.String(), "through default") {
		t.Fatal("Default() logger did not write to the configured output")
	}

	buf.Reset()
	slog.Info("via slog", "password", "hunter2")
	if strings.Contains(buf.String(), "hunter2") {
		t.Error("slog default bypassed redaction")
	}
}

func TestLogger_Slog(t *testing.T) {
	l, buf := newBufferLogger(t, "info", "json")

	l.Slog().Info("raw slog", "token", "gdtk_ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	entry := decodeEntry(t, buf)
	if entry["token"] != "gdtk_ABC...XYZ" {
		t.Errorf("Slog() bypassed redaction: token = %v", entry["token"])
	}
}
