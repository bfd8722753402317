package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewStampsServiceField(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	l := New()
	var buf bytes.Buffer
	l.SetOutput(&buf)

	l.WithField("model", "gpt-realtime").Info("token issued")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %q", buf.String())
	}
	if entry["service"] != "voxbridge" {
		t.Fatalf("missing service field: %v", entry)
	}
	if entry["model"] != "gpt-realtime" {
		t.Fatalf("caller fields must survive the hook: %v", entry)
	}
}

func TestNewServiceFieldNotOverwritten(t *testing.T) {
	l := New()
	var buf bytes.Buffer
	l.SetOutput(&buf)

	l.WithField("service", "edge-proxy").Info("forwarded")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %q", buf.String())
	}
	if entry["service"] != "edge-proxy" {
		t.Fatalf("explicit service field must win: %v", entry)
	}
}

func TestNewLevelFromEnv(t *testing.T) {
	cases := []struct {
		env  string
		want logrus.Level
	}{
		{"", logrus.InfoLevel},
		{"debug", logrus.DebugLevel},
		{"WARN", logrus.WarnLevel},
		{"warning", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"nonsense", logrus.InfoLevel},
	}
	for _, tc := range cases {
		t.Setenv("LOG_LEVEL", tc.env)
		if got := New().GetLevel(); got != tc.want {
			t.Fatalf("LOG_LEVEL=%q: level %v, want %v", tc.env, got, tc.want)
		}
	}
}
