package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

type Config struct {
	Port string

	OpenAIAPIKey string

	RealtimeModel     string
	RealtimeMiniModel string
	RealtimeTransport string // auto|peer|streaming
	RealtimeBaseURL   string
	SessionsURL       string

	TranscriptionModel string
	TranslationModel   string
	TTSModel           string
	DefaultVoice       string

	STTProvider       string // openai|google
	TranslateProvider string // openai|vertex

	GoogleProjectID string
	GoogleLocation  string
	VertexModel     string
}

func Load() (*Config, error) {
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY is missing; set it in the environment or a .env file")
	}

	transport := strings.ToLower(getenv("REALTIME_TRANSPORT", "auto"))
	switch transport {
	case "auto", "peer", "streaming":
	default:
		return nil, fmt.Errorf("REALTIME_TRANSPORT must be auto, peer or streaming, got %q", transport)
	}

	return &Config{
		Port: getenv("PORT", "8080"),

		OpenAIAPIKey: apiKey,

		RealtimeModel:     getenv("REALTIME_MODEL", "gpt-realtime"),
		RealtimeMiniModel: getenv("REALTIME_MINI_MODEL", "gpt-4o-mini-realtime-preview"),
		RealtimeTransport: transport,
		RealtimeBaseURL:   getenv("REALTIME_BASE_URL", "wss://api.openai.com/v1/realtime"),
		SessionsURL:       getenv("REALTIME_SESSIONS_URL", "https://api.openai.com/v1/realtime/sessions"),

		TranscriptionModel: getenv("TRANSCRIPTION_MODEL", "gpt-4o-mini-transcribe"),
		TranslationModel:   getenv("TRANSLATION_MODEL", "gpt-4o-mini"),
		TTSModel:           getenv("TTS_MODEL", "gpt-4o-mini-tts"),
		DefaultVoice:       getenv("DEFAULT_VOICE", "verse"),

		STTProvider:       strings.ToLower(getenv("STT_PROVIDER", "openai")),
		TranslateProvider: strings.ToLower(getenv("TRANSLATE_PROVIDER", "openai")),

		GoogleProjectID: strings.TrimSpace(os.Getenv("GOOGLE_PROJECT_ID")),
		GoogleLocation:  getenv("GOOGLE_LOCATION", "us-central1"),
		VertexModel:     getenv("VERTEX_MODEL", "gemini-1.5-flash"),
	}, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
