package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/genai"

	"poster-backend/internal/llm"
)

func TestExtractText(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		want string
	}{
		{name: "nil", resp: nil, want: ""},
		{name: "no candidates", resp: &genai.GenerateContentResponse{}, want: ""},
		{
			name: "joins text parts and skips thoughts",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{
					{Text: "thinking", Thought: true},
					{Text: "Report "},
					nil,
					{Text: "body"},
				}},
			}}},
			want: "Report body",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := extractText(tt.resp); got != tt.want {
				t.Fatalf("extractText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(context.Background(), " ", "m"); err == nil {
		t.Fatalf("expected error without api key")
	}
}

func TestGenerateSendsInlineImage(t *testing.T) {
	var gotPath string
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": "diagnosis text"}},
				},
			}},
		})
	}))
	defer srv.Close()

	client, err := NewClient(context.Background(), "test-key", "gemini-test", WithBaseURL(srv.URL+"/"))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	text, err := client.Generate(context.Background(), llm.Request{
		Prompt:      "describe",
		Image:       llm.Image{Data: []byte("png-bytes"), MIMEType: "image/png"},
		Temperature: 0.2,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "diagnosis text" {
		t.Fatalf("unexpected text %q", text)
	}
	if !strings.Contains(gotPath, "gemini-test:generateContent") {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if !strings.Contains(gotBody, "image/png") || !strings.Contains(gotBody, "describe") {
		t.Fatalf("request body missing image or prompt: %s", gotBody)
	}
}
