package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	openai "github.com/sashabaranov/go-openai"

	"github.com/voxbridge/voxbridge/config"
	"github.com/voxbridge/voxbridge/internal/api/handlers"
	"github.com/voxbridge/voxbridge/internal/api/middleware"
	"github.com/voxbridge/voxbridge/internal/api/routes"
	"github.com/voxbridge/voxbridge/internal/logger"
	"github.com/voxbridge/voxbridge/internal/pipeline"
	"github.com/voxbridge/voxbridge/internal/providers/stt"
	"github.com/voxbridge/voxbridge/internal/providers/translate"
	"github.com/voxbridge/voxbridge/internal/providers/tts"
	"github.com/voxbridge/voxbridge/internal/realtime"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	l := logger.New()
	ctx := context.Background()

	openaiClient := openai.NewClient(cfg.OpenAIAPIKey)

	var sttProvider stt.Provider
	switch cfg.STTProvider {
	case "google":
		sttProvider, err = stt.NewGoogleSpeech(ctx)
		if err != nil {
			log.Fatalf("google speech init error: %v", err)
		}
	default:
		sttProvider = stt.NewOpenAITranscriber(openaiClient, cfg.TranscriptionModel)
	}
	defer sttProvider.Close()

	var translator translate.Provider
	switch cfg.TranslateProvider {
	case "vertex":
		translator, err = translate.NewVertexGemini(ctx, cfg.GoogleProjectID, cfg.GoogleLocation, cfg.VertexModel)
		if err != nil {
			log.Fatalf("vertex init error: %v", err)
		}
	default:
		translator = translate.NewOpenAIChat(openaiClient, cfg.TranslationModel)
	}
	defer translator.Close()

	ttsProvider := tts.NewOpenAISpeech(openaiClient, cfg.TTSModel)
	defer ttsProvider.Close()

	resolver := realtime.NewResolver(realtime.Transport(cfg.RealtimeTransport))
	negotiator := realtime.NewNegotiator(cfg.OpenAIAPIKey, cfg.SessionsURL, l)
	relay := realtime.NewRelay(cfg.OpenAIAPIKey, cfg.RealtimeBaseURL, resolver, l)
	p := pipeline.New(sttProvider, translator, ttsProvider, cfg.TranslationModel, cfg.DefaultVoice, l)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(l))

	routes.RegisterRoutes(r, routes.Deps{
		Token:     handlers.NewTokenHandler(resolver, negotiator, cfg.RealtimeModel, cfg.DefaultVoice, l),
		Translate: handlers.NewTranslateHandler(p, l),
		Relay:     handlers.NewRelayHandler(relay, cfg.RealtimeMiniModel, l),
		SelfTest:  handlers.NewSelfTestHandler(resolver, negotiator, cfg.OpenAIAPIKey, cfg.RealtimeBaseURL, cfg.RealtimeModel, l),
	})

	l.WithField("port", cfg.Port).Info("voxbridge backend starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
