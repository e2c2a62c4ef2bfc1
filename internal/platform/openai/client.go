// Package openai implements mealplan.Completer on top of the OpenAI chat
// completions API or any server that speaks the same protocol.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"daitician/internal/config"
	"daitician/internal/mealplan"
)

// Client is a client for the OpenAI chat completions API.
type Client struct {
	client openai.Client
}

// NewClient creates a new OpenAI client. Retries are disabled: every
// Complete call results in a single HTTP request.
func NewClient(cfg *config.Config) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	return &Client{client: openai.NewClient(opts...)}
}

// Complete sends messages to the chat completions endpoint.
func (c *Client) Complete(ctx context.Context, messages []mealplan.Message, params mealplan.Params) (mealplan.Completion, error) {
	chatMessages := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case mealplan.RoleSystem:
			chatMessages = append(chatMessages, openai.SystemMessage(m.Content))
		case mealplan.RoleUser:
			chatMessages = append(chatMessages, openai.UserMessage(m.Content))
		default:
			return mealplan.Completion{}, fmt.Errorf("unsupported message role %q", m.Role)
		}
	}

	req := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(params.Model),
		Messages: chatMessages,
	}
	if params.MaxTokens > 0 {
		req.MaxTokens = openai.Int(int64(params.MaxTokens))
	}
	if params.Candidates > 0 {
		req.N = openai.Int(int64(params.Candidates))
	}
	req.Temperature = openai.Float(params.Temperature)

	resp, err := c.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return mealplan.Completion{}, fmt.Errorf("failed to create chat completion: %w", err)
	}

	completion := mealplan.Completion{
		Usage: mealplan.TokenUsage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}
	for _, choice := range resp.Choices {
		completion.Candidates = append(completion.Candidates, choice.Message.Content)
	}
	return completion, nil
}
