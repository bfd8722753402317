package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput means no audio was supplied; raised before any external
	// call is made.
	ErrEmptyInput = errors.New("audio payload is empty")
	// ErrEmptyTranscription means the speech-to-text stage returned only
	// whitespace. Translating nothing is a hard failure, not a degraded
	// success.
	ErrEmptyTranscription = errors.New("transcription produced no text")
	// ErrEmptyTranslation means the translation stage returned only
	// whitespace.
	ErrEmptyTranslation = errors.New("translation produced no text")
)

// StageError wraps an external-service failure with the stage it happened
// in. The pipeline is all-or-nothing: a StageError means no result exists.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
