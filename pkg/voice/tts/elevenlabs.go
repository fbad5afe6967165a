package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	elevenLabsDefaultBaseURL = "https://api.elevenlabs.io"
	elevenLabsDefaultModel   = "eleven_turbo_v2_5"
	elevenLabsDefaultVoice   = "21m00Tcm4TlvDq8ikWAM"
	elevenLabsDefaultFormat  = "mp3_44100_128"
)

// ElevenLabsProvider implements the TTS Provider interface using the
// ElevenLabs HTTP synthesis endpoint.
type ElevenLabsProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewElevenLabs creates a new ElevenLabs TTS provider.
func NewElevenLabs(apiKey string) *ElevenLabsProvider {
	return &ElevenLabsProvider{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    elevenLabsDefaultBaseURL,
		httpClient: &http.Client{},
	}
}

// NewElevenLabsWithClient creates a new ElevenLabs TTS provider with a
// custom HTTP client.
func NewElevenLabsWithClient(apiKey string, client *http.Client) *ElevenLabsProvider {
	if client == nil {
		client = &http.Client{}
	}
	return &ElevenLabsProvider{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    elevenLabsDefaultBaseURL,
		httpClient: client,
	}
}

// WithBaseURL overrides the API endpoint. Useful for tests.
func (e *ElevenLabsProvider) WithBaseURL(base string) *ElevenLabsProvider {
	base = strings.TrimSpace(base)
	if base != "" {
		e.baseURL = strings.TrimRight(base, "/")
	}
	return e
}

// Name returns the provider identifier.
func (e *ElevenLabsProvider) Name() string {
	return "elevenlabs"
}

type elevenLabsRequest struct {
	Text          string             `json:"text"`
	ModelID       string             `json:"model_id"`
	VoiceSettings elevenLabsSettings `json:"voice_settings"`
}

type elevenLabsSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// Synthesize converts text to audio using the ElevenLabs API.
func (e *ElevenLabsProvider) Synthesize(ctx context.Context, text string, opts SynthesizeOptions) (*Synthesis, error) {
	if e.apiKey == "" {
		return nil, fmt.Errorf("elevenlabs api key is required")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty text")
	}

	voice := opts.Voice
	if voice == "" {
		voice = elevenLabsDefaultVoice
	}
	model := opts.Model
	if model == "" {
		model = elevenLabsDefaultModel
	}
	format := opts.Format
	if format == "" {
		format = elevenLabsDefaultFormat
	}

	payload, err := json.Marshal(elevenLabsRequest{
		Text:    text,
		ModelID: model,
		VoiceSettings: elevenLabsSettings{
			Stability:       0.5,
			SimilarityBoost: 0.75,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=%s",
		e.baseURL, url.PathEscape(voice), url.QueryEscape(format))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("xi-api-key", e.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("elevenlabs error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("elevenlabs returned no audio")
	}
	return &Synthesis{Audio: audio, Format: format}, nil
}
