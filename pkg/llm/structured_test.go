package llm

import (
	"context"
	"testing"
)

type fixedProvider struct {
	reply string
	opts  Options
}

func (f *fixedProvider) Chat(ctx context.Context, history []Message, options ...Option) (string, error) {
	return f.reply, nil
}

func (f *fixedProvider) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	f.opts = Options{}
	for _, opt := range options {
		opt(&f.opts)
	}
	return f.reply, nil
}

func TestStripMarkdownFence(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"bare json", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"plain fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding whitespace", "  \n{\"a\": 1}\n  ", `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(StripMarkdownFence(tt.raw)); got != tt.want {
				t.Errorf("StripMarkdownFence(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestGenerateStructured(t *testing.T) {
	provider := &fixedProvider{reply: "```json\n{\"mastered\": [\"osmosis\"]}\n```"}

	var out struct {
		Mastered []string `json:"mastered"`
	}
	if err := GenerateStructured(context.Background(), provider, "analyze", &out); err != nil {
		t.Fatalf("GenerateStructured returned error: %v", err)
	}
	if len(out.Mastered) != 1 || out.Mastered[0] != "osmosis" {
		t.Errorf("out = %+v", out)
	}
	if provider.opts.Temperature != 0.0 {
		t.Errorf("temperature = %v, want forced 0.0", provider.opts.Temperature)
	}
}

func TestGenerateStructuredBadJSON(t *testing.T) {
	provider := &fixedProvider{reply: "not json at all"}

	var out map[string]interface{}
	if err := GenerateStructured(context.Background(), provider, "analyze", &out); err == nil {
		t.Error("expected parse error for non-JSON output")
	}
}
