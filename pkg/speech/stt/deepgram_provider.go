package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type DeepgramProvider struct {
	ApiKey string
	Client *http.Client
}

var _ Provider = &DeepgramProvider{}

func NewDeepgramProvider(apiKey string) *DeepgramProvider {
	return &DeepgramProvider{
		ApiKey: apiKey,
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type deepgramAlternative struct {
	Transcript string `json:"transcript"`
}

type deepgramChannel struct {
	Alternatives []deepgramAlternative `json:"alternatives"`
}

type deepgramResults struct {
	Channels []deepgramChannel `json:"channels"`
}

type deepgramResponse struct {
	Results deepgramResults `json:"results"`
}

func (p *DeepgramProvider) Transcribe(ctx context.Context, audioData []byte, format string) (string, error) {
	endpoint := "https://api.deepgram.com/v1/listen?model=nova-2&smart_format=true&punctuate=true&language=en"

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(audioData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Authorization", "Token "+p.ApiKey)
	req.Header.Set("Content-Type", MimeType(format))

	res, err := p.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf(
			"status error, got status %d. with response body %s",
			res.StatusCode,
			string(resBody),
		)
	}

	var dgRes deepgramResponse
	if err := json.Unmarshal(resBody, &dgRes); err != nil {
		return "", err
	}

	if len(dgRes.Results.Channels) == 0 || len(dgRes.Results.Channels[0].Alternatives) == 0 {
		return "", nil
	}

	return dgRes.Results.Channels[0].Alternatives[0].Transcript, nil
}
