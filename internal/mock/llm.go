package mock

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const systemPrompt = "You are a helpful NASA data analysis assistant. Provide concise and accurate responses to queries about NASA missions, technologies, and space exploration."

// ErrAdvisorUnavailable is returned when no language model is configured
var ErrAdvisorUnavailable = errors.New("advanced analysis is not available")

// Advisor answers free-form questions for /advanced_analyze
type Advisor interface {
	Complete(ctx context.Context, query string) (string, error)
}

// LLMOptions configures the OpenAI-compatible chat client
type LLMOptions struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int64
}

// ChatAdvisor asks an OpenAI-compatible chat completion endpoint
type ChatAdvisor struct {
	client *openai.Client
	opts   LLMOptions
}

// NewChatAdvisor creates an advisor. Groq and other compatible providers
// work by pointing BaseURL at them.
func NewChatAdvisor(opts LLMOptions) (*ChatAdvisor, error) {
	if opts.APIKey == "" {
		return nil, ErrAdvisorUnavailable
	}
	if opts.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1000
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	return &ChatAdvisor{
		client: openai.NewClient(reqOpts...),
		opts:   opts,
	}, nil
}

func (a *ChatAdvisor) Complete(ctx context.Context, query string) (string, error) {
	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.F(a.opts.Model),
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(query),
		}),
		MaxTokens: openai.F(a.opts.MaxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
