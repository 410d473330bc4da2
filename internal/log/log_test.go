package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestIsSensitiveKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"password", true},
		{"Password", true},
		{"generated_password", true},
		{"api_token", true},
		{"client_secret", true},
		{"mode", false},
		{"entropy_bits", false},
		{"length", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := IsSensitiveKey(tt.key); got != tt.want {
				t.Errorf("IsSensitiveKey(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestRedactingHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewRedactingHandler(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	logger.Info("generated", "password", "hunter2", "mode", "freeform")
	logger.With("secret", "s3cr3t").Info("with attrs")
	logger.Info("grouped", slog.Group("result", slog.String("password", "tr0ub4dor"), slog.Int("score", 80)))

	out := buf.String()
	for _, leaked := range []string{"hunter2", "s3cr3t", "tr0ub4dor"} {
		if strings.Contains(out, leaked) {
			t.Errorf("log output leaked %q: %s", leaked, out)
		}
	}
	if !strings.Contains(out, "mode=freeform") {
		t.Errorf("non-sensitive attribute missing: %s", out)
	}
	if !strings.Contains(out, "result.score=80") {
		t.Errorf("grouped non-sensitive attribute missing: %s", out)
	}
	if strings.Count(out, MaskValue) != 3 {
		t.Errorf("expected 3 masked values, got output: %s", out)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"defaults", Options{}, false},
		{"debug json", Options{Level: "debug", Format: "json"}, false},
		{"info text", Options{Level: "INFO", Format: "TEXT"}, false},
		{"bad level", Options{Level: "loud"}, true},
		{"bad format", Options{Format: "xml"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := New(&buf, tt.opts)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if logger == nil {
				t.Fatal("logger is nil")
			}
		})
	}
}

func TestNew_DefaultLevelIsWarn(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, Options{})
	if err != nil {
		t.Fatal(err)
	}

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info message logged at default level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("warn message missing at default level")
	}
}

func TestNew_JSONRedacts(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, Options{Level: "debug", Format: "json"})
	if err != nil {
		t.Fatal(err)
	}

	logger.Debug("event", "password", "hunter2")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("invalid JSON log line: %v", err)
	}
	if record["password"] != MaskValue {
		t.Errorf("password = %v, want %v", record["password"], MaskValue)
	}
}
