package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type ElevenLabsProvider struct {
	ApiKey  string
	VoiceId string
	Model   string
	Client  *http.Client
}

var _ Provider = &ElevenLabsProvider{}

func NewElevenLabsProvider(apiKey, voiceId, model string) *ElevenLabsProvider {
	if voiceId == "" {
		voiceId = "21m00Tcm4TlvDq8ikWAM" // Default voice
	}
	if model == "" {
		model = "eleven_turbo_v2"
	}
	return &ElevenLabsProvider{
		ApiKey:  apiKey,
		VoiceId: voiceId,
		Model:   model,
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type elevenLabsRequest struct {
	Text    string `json:"text"`
	ModelId string `json:"model_id"`
}

func (p *ElevenLabsProvider) Synthesize(ctx context.Context, text string) ([]byte, error) {
	payload := elevenLabsRequest{
		Text:    text,
		ModelId: p.Model,
	}
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("https://api.elevenlabs.io/v1/text-to-speech/%s", p.VoiceId)

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(payloadJson))
	if err != nil {
		return nil, err
	}

	req.Header.Set("xi-api-key", p.ApiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	res, err := p.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(
			"status error, got status %d. with response body %s",
			res.StatusCode,
			string(resBody),
		)
	}

	return resBody, nil
}
