package transcriber

import (
	"context"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/lesson-recorder/internal/config"
	"github.com/sashabaranov/go-openai"
)

type openAIBackend struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates the cloud backend on the OpenAI transcription endpoint
func NewOpenAI(cfg config.OpenAIConfig) Backend {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.TranscribeModel
	if model == "" {
		model = openai.Whisper1
	}

	return &openAIBackend{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}
}

// Transcribe uploads the audio and returns the recognized text as is
func (o *openAIBackend) Transcribe(ctx context.Context, audioPath, language string) (string, error) {
	req := openai.AudioRequest{
		Model:    o.model,
		FilePath: audioPath,
	}
	if language != "" && !strings.EqualFold(language, "auto") {
		req.Language = language
	}

	resp, err := o.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai transcription: %w", err)
	}
	return resp.Text, nil
}
