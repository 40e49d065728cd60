package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// GenerateStructured asks the provider for a JSON object and decodes it into out.
// Models frequently wrap JSON in a markdown fence, so the raw text is cleaned
// before unmarshalling.
func GenerateStructured(ctx context.Context, provider LLMProvider, prompt string, out interface{}, options ...Option) error {
	options = append(options, WithTemperature(0.0))
	raw, err := provider.Generate(ctx, prompt, options...)
	if err != nil {
		return err
	}

	cleaned := StripMarkdownFence(raw)
	if err := json.Unmarshal(cleaned, out); err != nil {
		return fmt.Errorf("parse structured response: %w | raw: %s", err, string(cleaned))
	}
	return nil
}

// StripMarkdownFence removes a surrounding ```json ... ``` (or bare ```) fence.
func StripMarkdownFence(raw string) []byte {
	b := []byte(raw)
	b = bytes.TrimSpace(b)
	b = bytes.TrimPrefix(b, []byte("```json"))
	b = bytes.TrimPrefix(b, []byte("```"))
	b = bytes.TrimSuffix(b, []byte("```"))
	return bytes.TrimSpace(b)
}
