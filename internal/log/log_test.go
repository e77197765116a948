package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_JSONWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: slog.LevelInfo, Format: "json", Component: "worker", Writer: &buf})

	l.Debug("hidden")
	l.Info("shown", FieldUserID, "u1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %q", buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("not json: %v", err)
	}
	if rec["component"] != "worker" || rec["user_id"] != "u1" || rec["msg"] != "shown" {
		t.Fatalf("record = %v", rec)
	}
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext must never return nil")
	}

	var buf bytes.Buffer
	l := New(Options{Writer: &buf}).With(FieldRequestID, "req_1")
	FromContext(WithLogger(context.Background(), l)).Info("hello")
	if !strings.Contains(buf.String(), "request_id=req_1") {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestFields(t *testing.T) {
	f := NewFields().
		WithRequestID("").
		WithHTTPRequest("GET", "/x", "", "").
		WithHTTPResponse(404, 3).
		WithError(errors.New("boom")).
		WithUser("u1")

	want := []any{"method", "GET", "path", "/x", "status_code", 404, "duration_ms", int64(3), "success", false, "error", "boom", "user_id", "u1"}
	if len(f) != len(want) {
		t.Fatalf("fields = %v", f)
	}
	for i := range want {
		if f[i] != want[i] {
			t.Fatalf("fields[%d] = %v, want %v", i, f[i], want[i])
		}
	}
}
