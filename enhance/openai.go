package enhance

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAI enhances text through a chat-completion endpoint. BaseURL
// may point at any OpenAI-compatible server (Groq, a local llama
// server), which is why the provider takes it explicitly.
type OpenAI struct {
	client *openai.Client
	model  string
}

func NewOpenAI(apiKey, baseURL, model string) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAI{client: openai.NewClientWithConfig(cfg), model: model}
}

func (o *OpenAI) Name() string { return "openai-chat" }

func (o *OpenAI) Enhance(ctx context.Context, text string, prompt Prompt) (string, error) {
	system := prompt.System
	if system == "" {
		system = DefaultSystemPrompt
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return "", fmt.Errorf("enhance request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("enhance request: empty response")
	}

	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", fmt.Errorf("enhance request: empty completion")
	}
	return out, nil
}
