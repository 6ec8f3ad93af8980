package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func writeRecord(t *testing.T, record map[string]interface{}) string {
	t.Helper()
	var buf bytes.Buffer
	w := NewFixedFormatWriter(&buf)

	data, _ := json.Marshal(record)
	n, err := w.Write(data)
	if err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if n != len(data) {
		t.Errorf("Write returned %d, want %d", n, len(data))
	}
	return buf.String()
}

func TestFixedFormatWriter_BasicMessage(t *testing.T) {
	line := writeRecord(t, map[string]interface{}{
		"level":     "info",
		"time":      "2026-10-18T09:12:00+09:00",
		"component": "lifecycle",
		"message":   "Service running",
		"service":   "sample_service",
	})

	if !strings.HasPrefix(line, "2026-10-18 09:12:00.000") {
		t.Errorf("timestamp mismatch: got %q", line)
	}
	if !strings.Contains(line, "[INF]") {
		t.Errorf("level not found: %q", line)
	}
	if !strings.Contains(line, "[lifecycle      ]") {
		t.Errorf("component not padded: %q", line)
	}
	if !strings.Contains(line, "Service running service=sample_service") {
		t.Errorf("message or extra field missing: %q", line)
	}
	if !strings.HasSuffix(line, "\n") {
		t.Errorf("missing trailing newline: %q", line)
	}
}

func TestFixedFormatWriter_DropsCaller(t *testing.T) {
	line := writeRecord(t, map[string]interface{}{
		"level":   "error",
		"time":    "2026-10-18T09:12:00Z",
		"message": "Failed to report service status",
		"caller":  "/src/servicekit/internal/lifecycle/driver.go:88",
		"error":   "rpc server unavailable",
	})

	if strings.Contains(line, "driver.go") {
		t.Errorf("caller should be dropped: %q", line)
	}
	if !strings.Contains(line, `error="rpc server unavailable"`) {
		t.Errorf("error field not quoted: %q", line)
	}
}

func TestFixedFormatWriter_NoExtraFields(t *testing.T) {
	line := writeRecord(t, map[string]interface{}{
		"level":     "info",
		"time":      "2026-10-18T09:12:00Z",
		"component": "main",
		"message":   "Service stopped",
	})

	if !strings.HasSuffix(line, "Service stopped\n") {
		t.Errorf("unexpected trailing content: %q", line)
	}
}

func TestFixedFormatWriter_LongComponent(t *testing.T) {
	line := writeRecord(t, map[string]interface{}{
		"level":     "warn",
		"time":      "2026-10-18T09:12:00Z",
		"component": "windows-service-glue",
		"message":   "truncated",
	})

	if !strings.Contains(line, "[windows-service]") {
		t.Errorf("component not truncated: %q", line)
	}
}

func TestFixedFormatWriter_InvalidJSON(t *testing.T) {
	var buf bytes.Buffer
	w := NewFixedFormatWriter(&buf)

	input := []byte("not json at all\n")
	n, err := w.Write(input)
	if err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if n != len(input) {
		t.Errorf("Write returned %d, want %d", n, len(input))
	}
	if buf.String() != "not json at all\n" {
		t.Errorf("invalid JSON not passed through: %q", buf.String())
	}
}

func TestFixedFormatWriter_UnknownLevel(t *testing.T) {
	line := writeRecord(t, map[string]interface{}{"level": "notice", "message": "x"})
	if !strings.Contains(line, "[???]") {
		t.Errorf("unknown level not marked: %q", line)
	}
}

func TestFixedFormatWriter_AllLevels(t *testing.T) {
	for level, abbr := range levelAbbrev {
		t.Run(level, func(t *testing.T) {
			line := writeRecord(t, map[string]interface{}{
				"level":   level,
				"time":    "2026-10-18T09:12:00Z",
				"message": "test",
			})
			if !strings.Contains(line, "["+abbr+"]") {
				t.Errorf("level %s: expected [%s] in %q", level, abbr, line)
			}
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"offset", "2026-10-18T09:12:00+09:00", "2026-10-18 09:12:00.000"},
		{"utc", "2026-10-18T09:12:00Z", "2026-10-18 09:12:00.000"},
		{"millis", "2026-10-18T09:12:00.123+09:00", "2026-10-18 09:12:00.123"},
		{"nanos", "2026-10-18T09:12:00.123456789Z", "2026-10-18 09:12:00.123"},
		{"short fraction", "2026-10-18T09:12:00.1Z", "2026-10-18 09:12:00.100"},
		{"negative offset", "2026-10-18T09:12:00-05:00", "2026-10-18 09:12:00.000"},
		{"empty", "", "                       "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatTimestamp(tt.input)
			if got != tt.want {
				t.Errorf("formatTimestamp(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if len(got) != timestampWidth {
				t.Errorf("formatTimestamp(%q) length = %d, want %d", tt.input, len(got), timestampWidth)
			}
		})
	}
}

func TestFormatExtra(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]interface{}
		want   string
	}{
		{"empty", map[string]interface{}{}, ""},
		{"sorted", map[string]interface{}{"state": "Running", "checkpoint": 0, "accepts": "Stop"}, "accepts=Stop checkpoint=0 state=Running"},
		{"quoted", map[string]interface{}{"error": "access is denied"}, `error="access is denied"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatExtra(tt.fields); got != tt.want {
				t.Errorf("formatExtra() = %q, want %q", got, tt.want)
			}
		})
	}
}
