package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/voxbridge/voxbridge/internal/providers/stt"
	"github.com/voxbridge/voxbridge/internal/providers/translate"
	"github.com/voxbridge/voxbridge/internal/providers/tts"
	"github.com/voxbridge/voxbridge/internal/realtime"
)

const (
	StageTranscription = "transcription"
	StageTranslation   = "translation"
	StageTTS           = "tts"
)

// Request is one batch translation invocation.
type Request struct {
	Audio      []byte
	Filename   string
	SourceLang string
	TargetLang string
	Voice      string
}

// Result aggregates the final audio with the intermediate text and
// per-stage wall-clock timings. Owned by the caller; never persisted.
type Result struct {
	AudioBytes             []byte
	AudioFormat            string
	TranscriptionText      string
	TranslatedText         string
	DetectedSourceLanguage string
	Voice                  string
	Model                  string
	Timing                 map[string]int64
}

// Pipeline runs transcribe -> translate -> synthesize against external
// services, strictly in order: each stage's output feeds the next.
type Pipeline struct {
	stt        stt.Provider
	translator translate.Provider
	tts        tts.Provider

	model string // translation model reported in results
	voice string // default voice when the request has none

	log *logrus.Logger
}

func New(sttProvider stt.Provider, translator translate.Provider, ttsProvider tts.Provider, model, defaultVoice string, log *logrus.Logger) *Pipeline {
	return &Pipeline{
		stt:        sttProvider,
		translator: translator,
		tts:        ttsProvider,
		model:      model,
		voice:      defaultVoice,
		log:        log,
	}
}

// Translate runs the three stages sequentially and returns either a full
// result or the first failure tagged with its stage. No retries.
func (p *Pipeline) Translate(ctx context.Context, req Request) (*Result, error) {
	if len(req.Audio) == 0 {
		return nil, ErrEmptyInput
	}

	voice := req.Voice
	if voice == "" {
		voice = p.voice
	}
	filename := req.Filename
	if filename == "" {
		filename = "input.wav"
	}

	timing := make(map[string]int64, 4)
	started := time.Now()

	transcriptionStart := time.Now()
	transcription, err := p.stt.Transcribe(ctx, req.Audio, filename, req.SourceLang)
	timing["transcription_duration_ms"] = time.Since(transcriptionStart).Milliseconds()
	if err != nil {
		return nil, &StageError{Stage: StageTranscription, Err: err}
	}

	transcript := strings.TrimSpace(transcription.Text)
	if transcript == "" {
		return nil, ErrEmptyTranscription
	}

	instruction := realtime.BuildInstruction(req.SourceLang, req.TargetLang)

	translationStart := time.Now()
	translated, err := p.translator.Translate(ctx, instruction, transcript)
	timing["translation_duration_ms"] = time.Since(translationStart).Milliseconds()
	if err != nil {
		return nil, &StageError{Stage: StageTranslation, Err: err}
	}

	translated = strings.TrimSpace(translated)
	if translated == "" {
		return nil, ErrEmptyTranslation
	}

	ttsStart := time.Now()
	audio, err := p.tts.Synthesize(ctx, translated, voice)
	timing["tts_duration_ms"] = time.Since(ttsStart).Milliseconds()
	if err != nil {
		return nil, &StageError{Stage: StageTTS, Err: err}
	}

	// Wall clock across all three stages, so scheduling gaps count too.
	timing["total_latency_ms"] = time.Since(started).Milliseconds()

	detected := transcription.Language
	if detected == "" {
		detected = req.SourceLang
	}

	p.log.WithFields(logrus.Fields{
		"source":   req.SourceLang,
		"target":   req.TargetLang,
		"voice":    voice,
		"total_ms": timing["total_latency_ms"],
	}).Info("audio translation complete")

	return &Result{
		AudioBytes:             audio,
		AudioFormat:            "wav",
		TranscriptionText:      transcript,
		TranslatedText:         translated,
		DetectedSourceLanguage: detected,
		Voice:                  voice,
		Model:                  p.model,
		Timing:                 timing,
	}, nil
}
