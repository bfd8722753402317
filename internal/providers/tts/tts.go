package tts

import "context"

type Provider interface {
	// Synthesize returns spoken audio for text in an uncompressed wav
	// container.
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
	Close() error
}
