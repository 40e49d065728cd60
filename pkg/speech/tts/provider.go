package tts

import (
	"context"
	"fmt"
)

// Provider defines the contract for any text-to-speech backend
type Provider interface {
	// Synthesize converts text to audio bytes (MP3)
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// NewProvider selects a concrete TTS backend from configuration
func NewProvider(providerType, elevenApiKey, voiceId, model string) (Provider, error) {
	switch providerType {
	case "elevenlabs":
		if elevenApiKey == "" {
			return nil, fmt.Errorf("elevenlabs provider requires an API key")
		}
		return NewElevenLabsProvider(elevenApiKey, voiceId, model), nil
	default:
		return nil, fmt.Errorf("unsupported TTS provider: %s", providerType)
	}
}
