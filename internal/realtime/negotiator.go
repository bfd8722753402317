package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// TokenPayload is what the token endpoint hands back to the client. For
// peer transport it carries the short-lived upstream credential; for
// streaming transport ClientSecret is always nil because the relay holds
// the upstream credentials.
type TokenPayload struct {
	ClientSecret *string   `json:"client_secret"`
	ExpiresAt    *int64    `json:"expires_at"`
	Model        string    `json:"model"`
	Voice        string    `json:"voice"`
	Instructions string    `json:"instructions"`
	URL          *string   `json:"url"`
	Transport    Transport `json:"transport"`
	CreatedAt    int64     `json:"created_at"`
}

// Negotiator builds the instruction/config payloads for the upstream
// realtime service and mints short-lived client tokens for peer sessions.
type Negotiator struct {
	apiKey      string
	sessionsURL string
	client      *http.Client
	log         *logrus.Logger
}

func NewNegotiator(apiKey, sessionsURL string, log *logrus.Logger) *Negotiator {
	return &Negotiator{
		apiKey:      apiKey,
		sessionsURL: sessionsURL,
		client:      &http.Client{Timeout: 15 * time.Second},
		log:         log,
	}
}

type sessionRequest struct {
	Model             string         `json:"model"`
	Voice             string         `json:"voice,omitempty"`
	InputAudioFormat  string         `json:"input_audio_format"`
	OutputAudioFormat string         `json:"output_audio_format"`
	Instructions      string         `json:"instructions"`
	TurnDetection     *TurnDetection `json:"turn_detection,omitempty"`
}

type sessionResponse struct {
	ClientSecret *struct {
		Value     string `json:"value"`
		ExpiresAt int64  `json:"expires_at"`
	} `json:"client_secret"`
	Model     string `json:"model"`
	URL       string `json:"url"`
	CreatedAt int64  `json:"created_at"`
}

// CreateSessionToken exchanges provider credentials for a short-lived
// client token when the session uses peer transport. Streaming sessions
// never touch the network here: the relay authenticates per-connection.
func (n *Negotiator) CreateSessionToken(ctx context.Context, cfg SessionConfig) (*TokenPayload, error) {
	instructions := BuildInstruction(cfg.SourceLang, cfg.TargetLang)

	if cfg.Transport == TransportStreaming {
		return &TokenPayload{
			Model:        cfg.Model,
			Voice:        cfg.Voice,
			Instructions: instructions,
			Transport:    TransportStreaming,
			CreatedAt:    time.Now().Unix(),
		}, nil
	}

	reqBody := sessionRequest{
		Model:             cfg.Model,
		Voice:             cfg.Voice,
		InputAudioFormat:  cfg.InputAudioFormat,
		OutputAudioFormat: cfg.OutputAudioFormat,
		Instructions:      instructions,
	}
	if cfg.VAD {
		reqBody.TurnDetection = &TurnDetection{Type: "server_vad", Threshold: 0.5}
	}

	raw, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("encode session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.sessionsURL, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+n.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("session request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamSessionError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var parsed sessionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode session response: %w", err)
	}

	token := &TokenPayload{
		Model:        parsed.Model,
		Voice:        cfg.Voice,
		Instructions: instructions,
		Transport:    TransportPeer,
		CreatedAt:    parsed.CreatedAt,
	}
	if token.Model == "" {
		token.Model = cfg.Model
	}
	if parsed.ClientSecret != nil && parsed.ClientSecret.Value != "" {
		token.ClientSecret = &parsed.ClientSecret.Value
		if parsed.ClientSecret.ExpiresAt != 0 {
			token.ExpiresAt = &parsed.ClientSecret.ExpiresAt
		}
	}
	if parsed.URL != "" {
		token.URL = &parsed.URL
	}

	// A peer session is unusable without a secret and a place to take it.
	if token.ClientSecret == nil || token.URL == nil {
		return nil, &UpstreamSessionError{
			Status: resp.StatusCode,
			Body:   "upstream response missing client_secret or url",
		}
	}

	if token.ExpiresAt == nil || token.CreatedAt == 0 {
		n.log.WithFields(logrus.Fields{
			"model":      token.Model,
			"expires_at": token.ExpiresAt,
			"created_at": token.CreatedAt,
		}).Warn("realtime token missing metadata")
	}
	if token.CreatedAt == 0 {
		token.CreatedAt = time.Now().Unix()
	}

	return token, nil
}
