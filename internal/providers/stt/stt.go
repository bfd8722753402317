package stt

import "context"

// Result carries the transcript plus whatever source-language detection the
// backing service offers (empty when the service reports none).
type Result struct {
	Text     string
	Language string
}

type Provider interface {
	Transcribe(ctx context.Context, audio []byte, filename, language string) (Result, error)
	Close() error
}
