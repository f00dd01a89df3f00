package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModels is the preferred list used with the OpenAI backend.
var DefaultOpenAIModels = []string{"gpt-4o-mini", "gpt-4o", "gpt-4.1-mini"}

// OpenAIBackend talks to the OpenAI API. The models endpoint carries no
// capability list, so chat models are recognised by name.
type OpenAIBackend struct {
	client *openai.Client
}

func NewOpenAIBackend(apiKey string) (*OpenAIBackend, error) {
	if apiKey == "" {
		return nil, errors.New("openai: API key is missing")
	}
	return &OpenAIBackend{client: openai.NewClient(apiKey)}, nil
}

func (o *OpenAIBackend) ListModels(ctx context.Context) ([]ModelInfo, error) {
	list, err := o.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("openai: list models: %w", err)
	}
	out := make([]ModelInfo, 0, len(list.Models))
	for _, m := range list.Models {
		info := ModelInfo{Name: m.ID}
		if isChatModel(m.ID) {
			info.Actions = []string{ActionGenerateContent}
		}
		out = append(out, info)
	}
	return out, nil
}

func (o *OpenAIBackend) Generate(ctx context.Context, model, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func isChatModel(id string) bool {
	if !strings.HasPrefix(id, "gpt-") {
		return false
	}
	for _, skip := range []string{"audio", "realtime", "image", "tts", "transcribe", "instruct"} {
		if strings.Contains(id, skip) {
			return false
		}
	}
	return true
}
