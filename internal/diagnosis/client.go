package diagnosis

import (
	"context"
	"time"

	"poster-backend/internal/llm"
	"poster-backend/internal/shared/telemetry"
)

const defaultTemperature = 0.2

// Client runs the single outbound diagnosis call for one poster image.
type Client struct {
	Fetcher      Fetcher
	Model        llm.Model
	Prompt       string
	Temperature  float32
	FetchTimeout time.Duration
	ModelTimeout time.Duration
}

// NewClient constructs a Client with the fixed diagnostic prompt.
func NewClient(fetcher Fetcher, model llm.Model) *Client {
	return &Client{
		Fetcher:     fetcher,
		Model:       model,
		Prompt:      llm.DiagnosticPrompt,
		Temperature: defaultTemperature,
	}
}

// Analyze fetches the image, sends it to the model and returns the raw report.
// Every failure is reported as ErrAnalysisFailed; an empty response becomes
// EmptyReportText.
func (c *Client) Analyze(ctx context.Context, imageReference string) (string, error) {
	start := time.Now()
	fields := map[string]any{
		"image_reference": imageReference,
		"request_id":      telemetry.RequestIDFromContext(ctx),
	}

	if c.Fetcher == nil || c.Model == nil {
		return "", c.fail(fields, "setup", llm.ErrNotConfigured)
	}

	fetchCtx, cancel := withOptionalTimeout(ctx, c.FetchTimeout)
	img, err := c.Fetcher.Fetch(fetchCtx, imageReference)
	cancel()
	if err != nil {
		return "", c.fail(fields, "fetch", err)
	}
	fields["mime_type"] = img.MIMEType
	fields["image_bytes"] = len(img.Data)

	modelCtx, cancel := withOptionalTimeout(ctx, c.ModelTimeout)
	defer cancel()
	text, err := c.Model.Generate(modelCtx, llm.Request{
		Prompt:      c.Prompt,
		Image:       img,
		Temperature: c.Temperature,
	})
	if err != nil {
		return "", c.fail(fields, "generate", err)
	}

	fields["model"] = c.Model.Name()
	fields["duration_ms"] = float64(time.Since(start).Microseconds()) / 1000.0
	if text == "" {
		telemetry.Warn("diagnosis.empty_response", fields)
		return EmptyReportText, nil
	}
	telemetry.Info("diagnosis.complete", fields)
	return text, nil
}

func (c *Client) fail(fields map[string]any, stage string, cause error) error {
	fields["stage"] = stage
	fields["error"] = cause.Error()
	telemetry.Error("diagnosis.failed", fields)
	return ErrAnalysisFailed
}

func withOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
