package stt

import (
	"context"
	"fmt"
)

// Provider defines the contract for any speech-to-text backend
type Provider interface {
	// Transcribe converts raw audio bytes to text. The format is the
	// container/codec hint sent by the client (webm, wav, mp3, ogg).
	Transcribe(ctx context.Context, audioData []byte, format string) (string, error)
}

// NewProvider selects a concrete STT backend from configuration
func NewProvider(providerType, deepgramApiKey string) (Provider, error) {
	switch providerType {
	case "deepgram":
		if deepgramApiKey == "" {
			return nil, fmt.Errorf("deepgram provider requires an API key")
		}
		return NewDeepgramProvider(deepgramApiKey), nil
	default:
		return nil, fmt.Errorf("unsupported STT provider: %s", providerType)
	}
}

// MimeType maps a client format hint to a content type for upload APIs
func MimeType(format string) string {
	switch format {
	case "wav":
		return "audio/wav"
	case "mp3":
		return "audio/mpeg"
	case "ogg":
		return "audio/ogg"
	default:
		return "audio/webm"
	}
}
