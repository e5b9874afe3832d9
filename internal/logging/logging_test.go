package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"
)

// captureLogOutput captures log output for testing by temporarily
// redirecting the logger to write to a buffer
func captureLogOutput(f func()) string {
	var buf bytes.Buffer

	oldLogger := defaultLogger
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	defaultLogger = slog.New(handler)
	defer func() { defaultLogger = oldLogger }()

	f()
	return buf.String()
}

func TestHelpers(t *testing.T) {
	tests := []struct {
		name      string
		log       func()
		wantLevel string
		wantMsg   string
	}{
		{
			name:      "debug",
			log:       func() { Debug("parsing", "element", "unit") },
			wantLevel: "DEBUG",
			wantMsg:   "parsing",
		},
		{
			name:      "info",
			log:       func() { Info("converted", "files", 2) },
			wantLevel: "INFO",
			wantMsg:   "converted",
		},
		{
			name:      "warn",
			log:       func() { Warn("schema_unavailable", "path", "x.json") },
			wantLevel: "WARN",
			wantMsg:   "schema_unavailable",
		},
		{
			name:      "error",
			log:       func() { Error("job_failed", "input", "a.xlf") },
			wantLevel: "ERROR",
			wantMsg:   "job_failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := captureLogOutput(tt.log)

			var entry map[string]any
			if err := json.Unmarshal([]byte(out), &entry); err != nil {
				t.Fatalf("log output is not JSON: %q", out)
			}
			if entry["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %v", entry["level"], tt.wantLevel)
			}
			if entry["msg"] != tt.wantMsg {
				t.Errorf("msg = %v, want %v", entry["msg"], tt.wantMsg)
			}
		})
	}
}

func TestConversionEvents(t *testing.T) {
	out := captureLogOutput(func() {
		ConversionStarted("demo.xlf", "out", "prefix", "demo")
		ConversionFinished("demo.xlf", 2, 250*time.Millisecond)
		ArtifactWritten("f1", "out/demo-file1.jliff.json", "out/demo-file1.tags.json")
		WatchEvent("WRITE", "demo.xlf")
	})

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d log lines, want 4", len(lines))
	}

	var finished map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &finished); err != nil {
		t.Fatal(err)
	}
	if finished["msg"] != "conversion_finished" {
		t.Errorf("msg = %v", finished["msg"])
	}
	if finished["file_count"] != float64(2) {
		t.Errorf("file_count = %v, want 2", finished["file_count"])
	}
	if finished["duration_ms"] != float64(250) {
		t.Errorf("duration_ms = %v, want 250", finished["duration_ms"])
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("text") != FormatText {
		t.Error("ParseFormat(text) != FormatText")
	}
	if ParseFormat("json") != FormatJSON {
		t.Error("ParseFormat(json) != FormatJSON")
	}
	if ParseFormat("") != FormatJSON {
		t.Error("ParseFormat default != FormatJSON")
	}
}
