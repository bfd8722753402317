package stt

import (
	"bytes"
	"context"

	openai "github.com/sashabaranov/go-openai"
)

type OpenAITranscriber struct {
	client *openai.Client
	model  string
}

func NewOpenAITranscriber(client *openai.Client, model string) *OpenAITranscriber {
	return &OpenAITranscriber{client: client, model: model}
}

func (p *OpenAITranscriber) Close() error { return nil }

func (p *OpenAITranscriber) Transcribe(ctx context.Context, audio []byte, filename, language string) (Result, error) {
	resp, err := p.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    p.model,
		FilePath: filename, // names the in-memory upload; no file is read
		Reader:   bytes.NewReader(audio),
		Language: language,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return Result{}, err
	}

	return Result{Text: resp.Text, Language: resp.Language}, nil
}
