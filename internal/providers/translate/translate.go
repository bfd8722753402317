package translate

import "context"

type Provider interface {
	// Translate renders text according to the supplied instruction and
	// returns the translated text only.
	Translate(ctx context.Context, instruction, text string) (string, error)
	Close() error
}
