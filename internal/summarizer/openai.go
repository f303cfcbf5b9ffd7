package summarizer

import (
	"context"
	"errors"
	"fmt"

	"github.com/nguyentantai21042004/lesson-recorder/internal/config"
	"github.com/sashabaranov/go-openai"
)

type openAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates a provider on the OpenAI chat completions API
func NewOpenAI(cfg config.OpenAIConfig) Provider {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.SummaryModel
	if model == "" {
		model = openai.GPT4oMini
	}

	return &openAIProvider{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}
}

func (o *openAIProvider) Name() string {
	return "openai/" + o.model
}

func (o *openAIProvider) Generate(ctx context.Context, prompt Prompt) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.System},
			{Role: openai.ChatMessageRoleUser, Content: prompt.User},
		},
		Temperature: prompt.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty response from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}
