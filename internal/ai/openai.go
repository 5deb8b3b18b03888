package ai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Compile-time interface check
var _ Analyst = (*OpenAI)(nil)

// ChatService defines the interface for making chat completion API calls.
// This abstraction enables testing without calling the real OpenAI API.
type ChatService interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// OpenAI implements the analysis service using OpenAI's chat completions.
type OpenAI struct {
	chat  ChatService
	model openai.ChatModel
}

// NewOpenAI creates a new OpenAI analyst.
func NewOpenAI(apiKey, model string) *OpenAI {
	if apiKey == "" {
		return &OpenAI{model: openai.ChatModel(model)}
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAI{
		chat:  client.Chat.Completions,
		model: openai.ChatModel(model),
	}
}

// Analyze sends the localized analysis prompt and post-processes the output.
func (o *OpenAI) Analyze(ctx context.Context, content string, lang Language) (string, error) {
	if o.chat == nil {
		return "", ErrNotConfigured
	}

	resp, err := o.chat.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(AnalysisPrompt(lang, content)),
		}),
		Model: openai.F(o.model),
	})
	if err != nil {
		return "", fmt.Errorf("requesting analysis: %w", err)
	}

	var raw string
	if len(resp.Choices) > 0 {
		raw = resp.Choices[0].Message.Content
	}

	return classify(raw, lang)
}

// Provider returns the backend identifier.
func (o *OpenAI) Provider() string {
	return "openai/" + string(o.model)
}
