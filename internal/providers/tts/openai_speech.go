package tts

import (
	"context"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

type OpenAISpeech struct {
	client *openai.Client
	model  string
}

func NewOpenAISpeech(client *openai.Client, model string) *OpenAISpeech {
	return &OpenAISpeech{client: client, model: model}
}

func (p *OpenAISpeech) Close() error { return nil }

func (p *OpenAISpeech) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	resp, err := p.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(p.model),
		Input:          text,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatWav,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Close()

	return io.ReadAll(resp)
}
