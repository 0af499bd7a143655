package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_JSONWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "info", Format: "json", Output: &buf, Component: "reconcile"})
	l.WithComponent("bills").Info("refreshed", "count", 3)
	l.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if rec["msg"] != "refreshed" || rec["count"] != float64(3) {
		t.Errorf("unexpected record %v", rec)
	}
}

func TestParseLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "WARN", Format: "text", Output: &buf})
	l.Info("skip")
	l.Warn("keep")
	if strings.Contains(buf.String(), "skip") || !strings.Contains(buf.String(), "keep") {
		t.Errorf("level filtering wrong: %q", buf.String())
	}
}
