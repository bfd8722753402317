package realtime

import (
	"fmt"
	"strings"
)

// SessionConfig describes one requested translation session. Built per
// request, never mutated after construction.
type SessionConfig struct {
	Model             string
	SourceLang        string // ISO 639-1
	TargetLang        string
	Voice             string
	InputAudioFormat  string
	OutputAudioFormat string
	VAD               bool
	Transport         Transport
}

// NewSessionConfig fills in the audio defaults: pcm16 in both directions,
// except streaming sessions which emit g711_ulaw for phone-grade playback.
func NewSessionConfig(model, sourceLang, targetLang, voice string, transport Transport) SessionConfig {
	output := "pcm16"
	if transport == TransportStreaming {
		output = "g711_ulaw"
	}
	return SessionConfig{
		Model:             model,
		SourceLang:        sourceLang,
		TargetLang:        targetLang,
		Voice:             voice,
		InputAudioFormat:  "pcm16",
		OutputAudioFormat: output,
		VAD:               true,
		Transport:         transport,
	}
}

// BuildInstruction produces the translation directive shared with the
// upstream model. The wording is a behavioural contract: it forbids
// greetings and commentary and demands meaning/tone preservation.
func BuildInstruction(sourceLang, targetLang string) string {
	return fmt.Sprintf(
		"You are a concise interpreter. Translate everything you hear from %s into %s.\n"+
			"Preserve tone and timing. Do not add commentary or greetings.",
		strings.ToUpper(sourceLang), strings.ToUpper(targetLang),
	)
}

// TurnDetection configures upstream voice-activity detection.
type TurnDetection struct {
	Type      string  `json:"type"`
	Threshold float64 `json:"threshold"`
}

// SessionUpdateBody is the session state primed on a fresh upstream
// connection, identical for both transports.
type SessionUpdateBody struct {
	Voice             string         `json:"voice,omitempty"`
	Instructions      string         `json:"instructions"`
	InputAudioFormat  string         `json:"input_audio_format"`
	OutputAudioFormat string         `json:"output_audio_format"`
	TurnDetection     *TurnDetection `json:"turn_detection,omitempty"`
}

// SessionUpdate is the control message sent upstream immediately after the
// socket opens.
type SessionUpdate struct {
	Type    string            `json:"type"`
	Session SessionUpdateBody `json:"session"`
}

// BuildSessionUpdate derives the session.update message from a session
// config. Pure; no network.
func BuildSessionUpdate(cfg SessionConfig) SessionUpdate {
	body := SessionUpdateBody{
		Voice:             cfg.Voice,
		Instructions:      BuildInstruction(cfg.SourceLang, cfg.TargetLang),
		InputAudioFormat:  cfg.InputAudioFormat,
		OutputAudioFormat: cfg.OutputAudioFormat,
	}
	if cfg.VAD {
		body.TurnDetection = &TurnDetection{Type: "server_vad", Threshold: 0.5}
	}
	return SessionUpdate{Type: "session.update", Session: body}
}
