// Package genai provides chat completion operations against a DeepSeek
// endpoint using the OpenAI-compatible API.
package genai

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/BeatGrid/StrategyPipe/internal/models"
)

// Defaults for the chat completion endpoint.
const (
	// DefaultBaseURL points at the DeepSeek OpenAI-compatible API.
	DefaultBaseURL = "https://api.deepseek.com"
	// DefaultModel is the chat model used when none is configured.
	DefaultModel = "deepseek-chat"
	// EnvAPIKey is the primary environment variable holding the API key.
	EnvAPIKey = "DEEPSEEK_API_KEY"
	// EnvAPIKeyFallback is checked when EnvAPIKey is unset, for
	// deployments that recycled the older variable name.
	EnvAPIKeyFallback = "GEMINI_API_KEY"
)

// ErrNoChoicesReturned indicates the completion response carried no choices.
var ErrNoChoicesReturned = errors.New("no choices returned")

// chatService defines minimal interface for chat completions.
type chatService interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Opts holds configuration options for the GenAI client.
type Opts struct {
	// APIKey is the bearer token for the completion endpoint.
	APIKey string
	// BaseURL overrides the completion endpoint.
	BaseURL string
	// Model overrides the chat model.
	Model string
}

// Option defines a functional option for GenAI client configuration.
type Option func(*Opts)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithBaseURL sets the completion endpoint base URL.
func WithBaseURL(url string) Option {
	return func(o *Opts) { o.BaseURL = url }
}

// WithModel sets the chat model.
func WithModel(model string) Option {
	return func(o *Opts) { o.Model = model }
}

// Client wraps the chat completion service for planner conversations.
type Client struct {
	chat  chatService
	model string
}

// NewClient initializes a GenAI client. The API key falls back to the
// DEEPSEEK_API_KEY environment variable, then GEMINI_API_KEY for
// deployments that recycled the older variable name.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv(EnvAPIKey)
	}
	if apiKey == "" {
		apiKey = os.Getenv(EnvAPIKeyFallback)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("API key not set")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	cli := openai.NewClient(option.WithAPIKey(apiKey), option.WithBaseURL(baseURL))
	return &Client{chat: &cli.Chat.Completions, model: model}, nil
}

// Chat sends a system prompt plus conversation history and returns the
// assistant's reply. The full history is resent each turn.
func (c *Client) Chat(ctx context.Context, systemPrompt string, history []models.ChatMessage) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	if systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}
	for _, msg := range history {
		if msg.Role == models.ChatRoleUser {
			messages = append(messages, openai.UserMessage(msg.Text))
		} else {
			messages = append(messages, openai.AssistantMessage(msg.Text))
		}
	}
	resp, err := c.chat.New(ctx, openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrNoChoicesReturned
	}
	return resp.Choices[0].Message.Content, nil
}

// ChatJSON sends the same conversation with JSON response mode enabled,
// for the structured extraction pass.
func (c *Client) ChatJSON(ctx context.Context, systemPrompt string, history []models.ChatMessage) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	if systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}
	for _, msg := range history {
		if msg.Role == models.ChatRoleUser {
			messages = append(messages, openai.UserMessage(msg.Text))
		} else {
			messages = append(messages, openai.AssistantMessage(msg.Text))
		}
	}
	resp, err := c.chat.New(ctx, openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: messages,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrNoChoicesReturned
	}
	return resp.Choices[0].Message.Content, nil
}
