package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func decode(t *testing.T, line string) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("Failed to unmarshal log entry %q: %v", line, err)
	}
	return entry
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{Level(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("Level.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"DEBUG", DebugLevel},
		{"debug", DebugLevel},
		{"Info", InfoLevel},
		{" warn ", WarnLevel},
		{"WARNING", WarnLevel},
		{"error", ErrorLevel},
		{"invalid", InfoLevel},
		{"", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFieldConstructors(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		key   string
		value any
	}{
		{"String", String("k", "v"), "k", "v"},
		{"Int", Int("n", 42), "n", 42},
		{"Bool", Bool("b", true), "b", true},
		{"Duration", Duration("d", 5*time.Second), "d", "5s"},
		{"Error", Error(errors.New("boom")), "error", "boom"},
		{"ErrorNil", Error(nil), "error", nil},
		{"Line", Line(7), "line", 7},
		{"Element", Element("Fe"), "element", "Fe"},
		{"Atoms", Atoms(3), "atoms", 3},
		{"Edges", Edges(2), "edges", 2},
		{"Scaling", Scaling(2.5), "scaling", float32(2.5)},
		{"Path", Path("/tmp/x.pdb"), "path", "/tmp/x.pdb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.field.Key != tt.key || tt.field.Value != tt.value {
				t.Errorf("%s = %+v, want {Key:%v Value:%v}", tt.name, tt.field, tt.key, tt.value)
			}
		})
	}
}

func TestScalingLogsShortestFloat32(t *testing.T) {
	var buf bytes.Buffer
	NewJSONLogger(&buf, InfoLevel).Info("build", Scaling(2.2))

	if !strings.Contains(buf.String(), `"scaling":2.2`) {
		t.Errorf("entry %q should carry scaling 2.2", buf.String())
	}
}

func TestJSONLogger_FlattenedFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, DebugLevel)

	logger.Info("atoms loaded", Atoms(12), Path("1abc.pdb"))

	entry := decode(t, strings.TrimSpace(buf.String()))
	if entry["level"] != "INFO" {
		t.Errorf("level = %v, want INFO", entry["level"])
	}
	if entry["msg"] != "atoms loaded" {
		t.Errorf("msg = %v, want 'atoms loaded'", entry["msg"])
	}
	if entry["atoms"] != float64(12) {
		t.Errorf("atoms = %v, want 12", entry["atoms"])
	}
	if entry["path"] != "1abc.pdb" {
		t.Errorf("path = %v, want 1abc.pdb", entry["path"])
	}
	if entry["time"] == "" || entry["time"] == nil {
		t.Error("time field is empty")
	}
}

func TestJSONLogger_ReservedKeysWin(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	logger.Info("real", String("msg", "spoofed"), String("level", "DEBUG"))

	entry := decode(t, strings.TrimSpace(buf.String()))
	if entry["msg"] != "real" || entry["level"] != "INFO" {
		t.Errorf("reserved keys overridden: %v", entry)
	}
}

func TestJSONLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, WarnLevel)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 log entries, got %d", len(lines))
	}
	if got := decode(t, lines[0])["level"]; got != "WARN" {
		t.Errorf("First entry level = %v, want WARN", got)
	}
	if got := decode(t, lines[1])["level"]; got != "ERROR" {
		t.Errorf("Second entry level = %v, want ERROR", got)
	}
}

func TestJSONLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	child := logger.With(Component("loader"), Path("a.pdb"))
	child.Info("skipped record", Line(3))

	entry := decode(t, strings.TrimSpace(buf.String()))
	if entry["component"] != "loader" {
		t.Errorf("component = %v, want loader", entry["component"])
	}
	if entry["path"] != "a.pdb" {
		t.Errorf("path = %v, want a.pdb", entry["path"])
	}
	if entry["line"] != float64(3) {
		t.Errorf("line = %v, want 3", entry["line"])
	}

	// Parent is unaffected by child fields
	buf.Reset()
	logger.Info("parent")
	if _, ok := decode(t, strings.TrimSpace(buf.String()))["component"]; ok {
		t.Error("parent logger picked up child fields")
	}
}

func TestJSONLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	logger.SetLevel(ErrorLevel)
	if logger.GetLevel() != ErrorLevel {
		t.Errorf("After SetLevel, level = %v, want ErrorLevel", logger.GetLevel())
	}

	logger.Info("info")
	if buf.Len() != 0 {
		t.Error("Expected no output for Info at ErrorLevel")
	}

	logger.Error("error")
	if buf.Len() == 0 {
		t.Error("Expected output for Error at ErrorLevel")
	}
}

func TestTimedOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	timer := StartTimer(logger, "build", Component("contact"))
	elapsed := timer.End(Edges(5))
	if elapsed < 0 {
		t.Errorf("End() returned negative duration %v", elapsed)
	}

	entry := decode(t, strings.TrimSpace(buf.String()))
	if entry["msg"] != "build" || entry["edges"] != float64(5) || entry["component"] != "contact" {
		t.Errorf("unexpected entry %v", entry)
	}
	if _, ok := entry["latency"]; !ok {
		t.Error("latency field missing")
	}

	buf.Reset()
	StartTimer(logger, "load").EndError(errors.New("bad line"))
	entry = decode(t, strings.TrimSpace(buf.String()))
	if entry["level"] != "ERROR" || entry["error"] != "bad line" {
		t.Errorf("unexpected error entry %v", entry)
	}

	buf.Reset()
	StartTimer(logger, "write").EndError(nil)
	entry = decode(t, strings.TrimSpace(buf.String()))
	if entry["level"] != "INFO" {
		t.Errorf("EndError(nil) level = %v, want INFO", entry["level"])
	}
	if _, ok := entry["error"]; ok {
		t.Errorf("EndError(nil) should not log an error field: %v", entry)
	}
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	logger.Info("ignored")
	if logger.With(String("a", "b")) == nil {
		t.Error("With() on NopLogger returned nil")
	}
	if logger.GetLevel() != InfoLevel {
		t.Errorf("GetLevel() = %v, want InfoLevel", logger.GetLevel())
	}
}
