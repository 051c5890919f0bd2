package llm

import (
	"context"
	"errors"
)

// Model abstracts multimodal providers used for poster diagnosis.
type Model interface {
	Generate(ctx context.Context, req Request) (string, error)
	Name() string
}

// Image is an encoded-ready image payload.
type Image struct {
	Data     []byte
	MIMEType string
}

// Request is one single-shot inference call: an image plus an instruction.
type Request struct {
	Prompt      string
	Image       Image
	Temperature float32
}

// ErrNotConfigured is returned by the placeholder model.
var ErrNotConfigured = errors.New("llm provider not configured")

// PlaceholderModel stands in when no provider credentials are configured.
type PlaceholderModel struct{}

// Generate returns ErrNotConfigured.
func (PlaceholderModel) Generate(ctx context.Context, req Request) (string, error) {
	_ = ctx
	_ = req
	return "", ErrNotConfigured
}

func (PlaceholderModel) Name() string { return "none" }
