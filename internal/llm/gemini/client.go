package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"poster-backend/internal/llm"
	"poster-backend/internal/shared/telemetry"
)

const defaultModel = "gemini-2.5-pro"

// Client implements llm.Model on the Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// Option customises the underlying genai client config.
type Option func(*genai.ClientConfig)

// WithBaseURL points the client at a different API endpoint.
func WithBaseURL(baseURL string) Option {
	return func(cfg *genai.ClientConfig) {
		cfg.HTTPOptions.BaseURL = baseURL
	}
}

// NewClient constructs a Gemini client.
func NewClient(ctx context.Context, apiKey, model string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

func (c *Client) Name() string { return "gemini:" + c.model }

// Generate sends the image inline followed by the prompt and returns the joined text parts.
func (c *Client) Generate(ctx context.Context, req llm.Request) (string, error) {
	temp := req.Temperature
	genConfig := &genai.GenerateContentConfig{
		Temperature: &temp,
	}

	parts := []*genai.Part{
		genai.NewPartFromBytes(req.Image.Data, req.Image.MIMEType),
		genai.NewPartFromText(req.Prompt),
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.model, []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}, genConfig)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := extractText(resp)
	fields := map[string]any{"model": c.model, "length": len(text)}
	if resp != nil && resp.UsageMetadata != nil {
		fields["prompt_tokens"] = resp.UsageMetadata.PromptTokenCount
		fields["candidates_tokens"] = resp.UsageMetadata.CandidatesTokenCount
	}
	telemetry.Info("llm.response", fields)
	return text, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return ""
	}

	var texts []string
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		if part.Text != "" {
			texts = append(texts, part.Text)
		}
	}
	return strings.Join(texts, "")
}

var _ llm.Model = (*Client)(nil)
