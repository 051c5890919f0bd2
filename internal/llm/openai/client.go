package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"poster-backend/internal/llm"
	"poster-backend/internal/shared/telemetry"
)

const defaultModel = "gpt-4o"

// Client implements llm.Model using OpenAI chat completions with image input.
type Client struct {
	api   *openai.Client
	model string
}

// NewClient constructs a new OpenAI client. baseURL may be empty.
func NewClient(apiKey, model, baseURL string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	cfg := openai.DefaultConfig(apiKey)
	if strings.TrimSpace(baseURL) != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &Client{api: openai.NewClientWithConfig(cfg), model: model}, nil
}

func (c *Client) Name() string { return "openai:" + c.model }

// Generate sends the image as a base64 data URI followed by the prompt.
func (c *Client) Generate(ctx context.Context, req llm.Request) (string, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: req.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURI(req.Image),
							Detail: openai.ImageURLDetailHigh,
						},
					},
					{
						Type: openai.ChatMessagePartTypeText,
						Text: req.Prompt,
					},
				},
			},
		},
	}

	resp, err := c.api.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	telemetry.Info("llm.response", map[string]any{
		"model":             c.model,
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
	})
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func dataURI(img llm.Image) string {
	return "data:" + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

var _ llm.Model = (*Client)(nil)
