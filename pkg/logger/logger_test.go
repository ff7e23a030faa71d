package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestLogger(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	log := New(&buf, LevelInfo, "test", func(context.Context) string { return "trace-1" })

	log.Debug(ctx, "suppressed")
	if buf.Len() != 0 {
		t.Fatalf("debug emitted below min level: %s", buf.String())
	}

	log.Info(ctx, "hello", "key", "value")
	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if rec["msg"] != "hello" || rec["service"] != "test" || rec["key"] != "value" {
		t.Fatalf("unexpected record: %v", rec)
	}
	if rec["trace_id"] != "trace-1" {
		t.Fatalf("missing trace id: %v", rec)
	}
}
