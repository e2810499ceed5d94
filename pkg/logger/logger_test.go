package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := SetOutput(&buf); err != nil {
		t.Fatalf("set output: %v", err)
	}
	if err := SetFormat("json"); err != nil {
		t.Fatalf("set format: %v", err)
	}
	defer func() {
		_ = SetFormat("text")
		_ = SetOutput(nil)
	}()

	Get().Info(context.Background(), "screened", String("job_id", "1021"), Int("score", 4), Error(errors.New("boom")))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if rec["msg"] != "screened" || rec["job_id"] != "1021" || rec["error"] != "boom" {
		t.Fatalf("unexpected record: %v", rec)
	}
	if src, _ := rec["source"].(string); !strings.Contains(src, "logger_test.go") {
		t.Fatalf("source should point at the caller, got %q", src)
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := SetOutput(&buf); err != nil {
		t.Fatalf("set output: %v", err)
	}
	defer func() { _ = SetOutput(nil) }()

	if err := SetLevelString("warn"); err != nil {
		t.Fatalf("set level: %v", err)
	}
	Get().Info(context.Background(), "hidden")
	Get().Warn(context.Background(), "visible")
	_ = SetLevelString("info")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "visible") {
		t.Fatalf("level filtering failed: %q", out)
	}
}

func TestLoggerNamedAndWith(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := SetOutput(&buf); err != nil {
		t.Fatalf("set output: %v", err)
	}
	defer func() { _ = SetOutput(nil) }()

	Named("worker").With(String("task", "t-1")).Info(context.Background(), "done")
	out := buf.String()
	if !strings.Contains(out, "logger=worker") || !strings.Contains(out, "task=t-1") {
		t.Fatalf("named logger attributes missing: %q", out)
	}
}

func TestSetLevelStringRejectsUnknown(t *testing.T) {
	if err := SetLevelString("loud"); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
	if err := SetFormat("xml"); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}
