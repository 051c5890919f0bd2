package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	_ = w.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("read output: %v", err)
	}
	return buf.String()
}

func TestInfoWritesJSONLine(t *testing.T) {
	Init("info")
	out := captureStdout(t, func() {
		Info("records.uploaded", map[string]any{"session_id": "s-1", "count": 2, "err": errors.New("boom")})
	})

	var payload map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &payload); err != nil {
		t.Fatalf("decode log json: %v (%q)", err, out)
	}
	if payload["msg"] != "records.uploaded" {
		t.Fatalf("unexpected msg: %v", payload["msg"])
	}
	if payload["level"] != "info" {
		t.Fatalf("unexpected level: %v", payload["level"])
	}
	if payload["session_id"] != "s-1" {
		t.Fatalf("unexpected session_id: %v", payload["session_id"])
	}
	if payload["err"] != "boom" {
		t.Fatalf("unexpected err: %v", payload["err"])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("missing ts")
	}
}

func TestDebugSuppressedAtInfo(t *testing.T) {
	Init("info")
	out := captureStdout(t, func() {
		Debug("hidden", nil)
	})
	if strings.TrimSpace(out) != "" {
		t.Fatalf("expected no output, got %q", out)
	}
}

func TestInitWriterHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWriter("warn", &buf)
	defer Init("info")

	Info("dropped", nil)
	Warn("kept", map[string]any{"k": "v"})

	out := strings.TrimSpace(buf.String())
	if strings.Contains(out, "dropped") {
		t.Fatalf("info line should be filtered: %s", out)
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if payload["msg"] != "kept" || payload["k"] != "v" || payload["level"] != "warn" {
		t.Fatalf("unexpected payload %v", payload)
	}
}
