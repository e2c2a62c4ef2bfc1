package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"daitician/internal/config"
	"daitician/internal/mealplan"
)

// Client is a client for the Gemini API.
type Client struct {
	client  *genai.Client
	timeout time.Duration
}

// NewClient creates a new Gemini client.
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	return newClient(ctx, cfg)
}

func newClient(ctx context.Context, cfg *config.Config, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(cfg.APIKey)}, opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Client{client: client, timeout: cfg.Timeout}, nil
}

// Complete generates content for the given messages. System messages become
// the model's system instruction; user messages are sent as text parts.
func (c *Client) Complete(ctx context.Context, messages []mealplan.Message, params mealplan.Params) (mealplan.Completion, error) {
	model := c.client.GenerativeModel(params.Model)
	if params.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(params.MaxTokens))
	}
	if params.Candidates > 0 {
		model.SetCandidateCount(int32(params.Candidates))
	}
	model.SetTemperature(float32(params.Temperature))

	system, parts, err := splitMessages(messages)
	if err != nil {
		return mealplan.Completion{}, err
	}
	if system != nil {
		model.SystemInstruction = system
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return mealplan.Completion{}, fmt.Errorf("failed to generate content: %w", err)
	}
	return completionFromResponse(resp)
}

// Close closes the underlying Gemini client.
func (c *Client) Close() error {
	return c.client.Close()
}

func splitMessages(messages []mealplan.Message) (*genai.Content, []genai.Part, error) {
	var (
		system *genai.Content
		parts  []genai.Part
	)
	for _, m := range messages {
		switch m.Role {
		case mealplan.RoleSystem:
			system = genai.NewUserContent(genai.Text(m.Content))
		case mealplan.RoleUser:
			parts = append(parts, genai.Text(m.Content))
		default:
			return nil, nil, fmt.Errorf("unsupported message role %q", m.Role)
		}
	}
	if len(parts) == 0 {
		return nil, nil, fmt.Errorf("no user message to send")
	}
	return system, parts, nil
}

// completionFromResponse keeps only the first candidate. A first candidate
// without text is an error even when later candidates have some.
func completionFromResponse(resp *genai.GenerateContentResponse) (mealplan.Completion, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return mealplan.Completion{}, fmt.Errorf("empty response from Gemini")
	}

	var completion mealplan.Completion
	if resp.UsageMetadata != nil {
		completion.Usage = mealplan.TokenUsage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	first := resp.Candidates[0]
	if first == nil || first.Content == nil {
		return mealplan.Completion{}, fmt.Errorf("first candidate from Gemini has no content")
	}
	var sb strings.Builder
	for _, part := range first.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return mealplan.Completion{}, fmt.Errorf("unexpected response format from Gemini")
	}
	completion.Candidates = []string{sb.String()}
	return completion, nil
}
