package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func newTestLogger() (*SlogLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return NewSlogLogger(slog.New(slog.NewJSONHandler(buf, nil))), buf
}

func lastRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log output is not JSON: %v (%q)", err, buf.String())
	}
	return rec
}

func TestSlogLogger_InfoWritesMessageAndArgs(t *testing.T) {
	log, buf := newTestLogger()

	log.Info(context.Background(), "server starting", "addr", ":8080")

	rec := lastRecord(t, buf)
	if rec["msg"] != "server starting" {
		t.Fatalf("unexpected msg: %v", rec["msg"])
	}
	if rec["addr"] != ":8080" {
		t.Fatalf("unexpected addr: %v", rec["addr"])
	}
}

func TestSlogLogger_WithAddsPersistentFields(t *testing.T) {
	log, buf := newTestLogger()

	child := log.With("module", "httpapi")
	child.Warn(context.Background(), "slow request")

	rec := lastRecord(t, buf)
	if rec["module"] != "httpapi" {
		t.Fatalf("expected module field, got %v", rec)
	}
	if rec["level"] != "WARN" {
		t.Fatalf("expected WARN level, got %v", rec["level"])
	}
}
