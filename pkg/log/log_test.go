package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug": DebugLevel,
		"INFO":  InfoLevel,
		"Warn":  WarnLevel,
		"error": ErrorLevel,
		"":      InfoLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("parse %q: want %v got %v", in, want, got)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(WithLevel(WarnLevel), WithOutput(NewWriterOutput(&buf)))
	logger.Info("dropped")
	logger.Warn("kept")
	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("info line should be filtered: %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Fatalf("warn line missing: %q", out)
	}
}

func TestWithCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(WithOutput(NewWriterOutput(&buf)))
	child := logger.With(Component("relay"), Int("user", 7))
	child.Info("flush", Int("records", 3))
	line := buf.String()
	for _, want := range []string{"component=relay", "user=7", "records=3", "flush"} {
		if !strings.Contains(line, want) {
			t.Fatalf("line %q missing %q", line, want)
		}
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(WithFormatter(&JSONFormatter{}), WithOutput(NewWriterOutput(&buf)))
	logger.Error("boom", Str("where", "store"))
	var obj map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &obj); err != nil {
		t.Fatalf("invalid json line %q: %v", buf.String(), err)
	}
	if obj["level"] != "ERROR" || obj["msg"] != "boom" || obj["where"] != "store" {
		t.Fatalf("unexpected object: %v", obj)
	}
}

func TestApplyConfig(t *testing.T) {
	logger, err := ApplyConfig(&Config{Level: "debug", Format: "json"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if logger.GetLevel() != DebugLevel {
		t.Fatalf("want debug level, got %v", logger.GetLevel())
	}
	if _, err := ApplyConfig(&Config{Level: "nope"}); err == nil {
		t.Fatalf("expected error for bad level")
	}
}
