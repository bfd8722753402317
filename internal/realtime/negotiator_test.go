package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestCreateSessionTokenStreamingSkipsNetwork(t *testing.T) {
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
	}))
	defer srv.Close()

	n := NewNegotiator("sk-test", srv.URL, quietLogger())
	cfg := NewSessionConfig("gpt-4o-mini-realtime-preview", "en", "fr", "verse", TransportStreaming)

	token, err := n.CreateSessionToken(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if atomic.LoadInt64(&hits) != 0 {
		t.Fatalf("streaming transport must not call upstream, saw %d requests", hits)
	}
	if token.ClientSecret != nil {
		t.Fatalf("streaming token must carry no client secret")
	}
	if token.Transport != TransportStreaming {
		t.Fatalf("unexpected transport %q", token.Transport)
	}
	if token.Instructions != BuildInstruction("en", "fr") {
		t.Fatalf("token should carry the instruction template")
	}
	if token.CreatedAt == 0 {
		t.Fatalf("token should record creation time")
	}
}

func TestCreateSessionTokenPeerHappyPath(t *testing.T) {
	var gotAuth string
	var gotBody sessionRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"client_secret": map[string]any{"value": "eph-123", "expires_at": 1736000000},
			"model":         "gpt-realtime",
			"url":           "wss://upstream.example/v1/realtime",
			"created_at":    1735999000,
		})
	}))
	defer srv.Close()

	n := NewNegotiator("sk-test", srv.URL, quietLogger())
	cfg := NewSessionConfig("gpt-realtime", "en", "fr", "verse", TransportPeer)

	token, err := n.CreateSessionToken(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotAuth != "Bearer sk-test" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotBody.Model != "gpt-realtime" || gotBody.Voice != "verse" {
		t.Fatalf("unexpected request body: %+v", gotBody)
	}
	if gotBody.TurnDetection == nil || gotBody.TurnDetection.Threshold != 0.5 {
		t.Fatalf("expected server_vad turn_detection at 0.5, got %+v", gotBody.TurnDetection)
	}

	if token.ClientSecret == nil || *token.ClientSecret != "eph-123" {
		t.Fatalf("missing client secret in token: %+v", token)
	}
	if token.ExpiresAt == nil || *token.ExpiresAt != 1736000000 {
		t.Fatalf("missing expires_at in token: %+v", token)
	}
	if token.URL == nil || *token.URL != "wss://upstream.example/v1/realtime" {
		t.Fatalf("missing url in token: %+v", token)
	}
	if token.CreatedAt != 1735999000 {
		t.Fatalf("created_at not taken from upstream: %d", token.CreatedAt)
	}
}

func TestCreateSessionTokenPeerOmitsTurnDetectionWithoutVAD(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var fields map[string]json.RawMessage
		_ = json.Unmarshal(raw, &fields)
		if _, ok := fields["turn_detection"]; ok {
			t.Errorf("turn_detection must be absent when VAD is off: %s", raw)
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"client_secret": map[string]any{"value": "eph-123", "expires_at": 1},
			"url":           "wss://upstream.example/v1/realtime",
		})
	}))
	defer srv.Close()

	n := NewNegotiator("sk-test", srv.URL, quietLogger())
	cfg := NewSessionConfig("gpt-realtime", "en", "fr", "verse", TransportPeer)
	cfg.VAD = false

	if _, err := n.CreateSessionToken(context.Background(), cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateSessionTokenUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer srv.Close()

	n := NewNegotiator("sk-test", srv.URL, quietLogger())
	cfg := NewSessionConfig("gpt-realtime", "en", "fr", "verse", TransportPeer)

	_, err := n.CreateSessionToken(context.Background(), cfg)
	var upstream *UpstreamSessionError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamSessionError, got %v", err)
	}
	if upstream.Status != http.StatusTooManyRequests {
		t.Fatalf("unexpected status %d", upstream.Status)
	}
	if upstream.Body != `{"error":"rate limited"}` {
		t.Fatalf("upstream body not preserved: %q", upstream.Body)
	}
}

func TestCreateSessionTokenPeerMissingSecretIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model": "gpt-realtime",
			"url":   "wss://upstream.example/v1/realtime",
		})
	}))
	defer srv.Close()

	n := NewNegotiator("sk-test", srv.URL, quietLogger())
	cfg := NewSessionConfig("gpt-realtime", "en", "fr", "verse", TransportPeer)

	_, err := n.CreateSessionToken(context.Background(), cfg)
	var upstream *UpstreamSessionError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamSessionError for missing client_secret, got %v", err)
	}
}

func TestCreateSessionTokenPeerMissingMetadataIsTolerated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// no expires_at, no created_at: degraded but usable
		_ = json.NewEncoder(w).Encode(map[string]any{
			"client_secret": map[string]any{"value": "eph-123"},
			"url":           "wss://upstream.example/v1/realtime",
		})
	}))
	defer srv.Close()

	n := NewNegotiator("sk-test", srv.URL, quietLogger())
	cfg := NewSessionConfig("gpt-realtime", "en", "fr", "verse", TransportPeer)

	token, err := n.CreateSessionToken(context.Background(), cfg)
	if err != nil {
		t.Fatalf("degraded token should not fail: %v", err)
	}
	if token.ExpiresAt != nil {
		t.Fatalf("expires_at should surface as null, got %v", *token.ExpiresAt)
	}
	if token.CreatedAt == 0 {
		t.Fatalf("created_at should fall back to now")
	}
}
