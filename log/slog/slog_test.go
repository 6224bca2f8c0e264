package slog

import (
	"bytes"
	"encoding/json"
	stdslog "log/slog"
	"strings"
	"testing"

	"github.com/unkn0wn-root/multicache"
)

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	h := stdslog.NewJSONHandler(&buf, &stdslog.HandlerOptions{Level: stdslog.LevelDebug})
	l := New(stdslog.New(h))

	l.Debug("multicache: remote cache", multicache.Fields{"name": "contacts", "ttl": "2h"})
	l.Warn("w", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec["level"] != "DEBUG" || rec["name"] != "contacts" || rec["component"] != "multicache" {
		t.Fatalf("record: %+v", rec)
	}
	if !strings.Contains(lines[1], `"level":"WARN"`) {
		t.Fatalf("warn line: %s", lines[1])
	}
}
