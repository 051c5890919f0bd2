package report

import (
	"reflect"
	"testing"
)

func TestSplitExtractsPayload(t *testing.T) {
	raw := `Report body here JSON_DATA_START {"cta_text":"Register"} JSON_DATA_END`

	got := Split(raw)
	if !got.Parsed() {
		t.Fatalf("expected parsed outcome, got %s (%v)", got.Outcome, got.Reason)
	}
	if got.DisplayText != "Report body here" {
		t.Fatalf("unexpected display text %q", got.DisplayText)
	}
	want := map[string]any{"cta_text": "Register"}
	if !reflect.DeepEqual(got.Payload, want) {
		t.Fatalf("payload = %#v, want %#v", got.Payload, want)
	}
	if got.Poster == nil || got.Poster.CTAText != "Register" {
		t.Fatalf("unexpected poster %#v", got.Poster)
	}
}

func TestSplitPayloadDeepEqualsJSON(t *testing.T) {
	raw := "一、总分与结论\n| 项目 | 内容 |\n\nJSON_DATA_START\n" +
		`{"theme_color":"#123456","highlights":["a","b"],"illustration_rect":{"top":10,"left":"5","width":50,"height":40},"speakers":[{"name":"Li","title":"CTO"}]}` +
		"\nJSON_DATA_END\ntrailing"

	got := Split(raw)
	if !got.Parsed() {
		t.Fatalf("expected parsed outcome, got %v", got.Reason)
	}
	if got.DisplayText != "一、总分与结论\n| 项目 | 内容 |" {
		t.Fatalf("unexpected display text %q", got.DisplayText)
	}
	want := map[string]any{
		"theme_color": "#123456",
		"highlights":  []any{"a", "b"},
		"illustration_rect": map[string]any{
			"top": float64(10), "left": "5", "width": float64(50), "height": float64(40),
		},
		"speakers": []any{map[string]any{"name": "Li", "title": "CTO"}},
	}
	if !reflect.DeepEqual(got.Payload, want) {
		t.Fatalf("payload = %#v, want %#v", got.Payload, want)
	}
	rect := got.Poster.IllustrationRect
	if rect == nil || rect.Left == nil || *rect.Left != 5 || *rect.Width != 50 {
		t.Fatalf("unexpected rect %#v", rect)
	}
}

func TestSplitFallbacks(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "no markers", raw: "Just a report without data"},
		{name: "start only", raw: `report JSON_DATA_START {"a":1}`},
		{name: "end only", raw: `report {"a":1} JSON_DATA_END`},
		{name: "invalid json", raw: `report JSON_DATA_START {"a": } JSON_DATA_END`},
		{name: "array not object", raw: `report JSON_DATA_START [1,2] JSON_DATA_END`},
		{name: "null body", raw: `report JSON_DATA_START null JSON_DATA_END`},
		{name: "end before start", raw: `report JSON_DATA_END {"a":1} JSON_DATA_START`},
		{name: "empty", raw: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.raw)
			if got.Outcome != OutcomeFallback {
				t.Fatalf("expected fallback, got %s", got.Outcome)
			}
			if got.DisplayText != tt.raw {
				t.Fatalf("display text = %q, want raw input", got.DisplayText)
			}
			if got.Payload != nil || got.Poster != nil {
				t.Fatalf("expected no payload, got %#v / %#v", got.Payload, got.Poster)
			}
			if got.Reason == nil {
				t.Fatalf("expected a fallback reason")
			}

			again := Split(got.DisplayText)
			if again.Outcome != got.Outcome || again.DisplayText != got.DisplayText || again.Payload != nil {
				t.Fatalf("split is not idempotent on fallback: %#v", again)
			}
		})
	}
}

func TestSplitDropsMistypedPosterFields(t *testing.T) {
	raw := `r JSON_DATA_START {"theme_color":7,"highlights":"nope","optimized_header":{"title":"T","subtitle":3},"speakers":[{"name":"A"},"x",{}],"event_details":[],"cta_text":"Go"} JSON_DATA_END`

	got := Split(raw)
	if !got.Parsed() {
		t.Fatalf("expected parsed outcome, got %v", got.Reason)
	}
	p := got.Poster
	if p.ThemeColor != "" || p.Highlights != nil || p.EventDetails != nil {
		t.Fatalf("expected mistyped fields dropped: %#v", p)
	}
	if p.OptimizedHeader == nil || p.OptimizedHeader.Title != "T" || p.OptimizedHeader.Subtitle != "" {
		t.Fatalf("unexpected header %#v", p.OptimizedHeader)
	}
	if len(p.Speakers) != 1 || p.Speakers[0].Name != "A" {
		t.Fatalf("unexpected speakers %#v", p.Speakers)
	}
	if p.CTAText != "Go" {
		t.Fatalf("unexpected cta %q", p.CTAText)
	}
}
