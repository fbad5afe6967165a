package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

const (
	groqDefaultBaseURL = "https://api.groq.com/openai/v1"
	groqDefaultModel   = "whisper-large-v3"
)

// GroqProvider implements the STT Provider interface using Groq's
// Whisper transcription endpoint.
type GroqProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewGroq creates a new Groq STT provider.
func NewGroq(apiKey string) *GroqProvider {
	return &GroqProvider{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    groqDefaultBaseURL,
		httpClient: &http.Client{},
	}
}

// NewGroqWithClient creates a new Groq STT provider with a custom HTTP client.
func NewGroqWithClient(apiKey string, client *http.Client) *GroqProvider {
	if client == nil {
		client = &http.Client{}
	}
	return &GroqProvider{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    groqDefaultBaseURL,
		httpClient: client,
	}
}

// WithBaseURL overrides the API endpoint. Useful for tests.
func (g *GroqProvider) WithBaseURL(base string) *GroqProvider {
	base = strings.TrimSpace(base)
	if base != "" {
		g.baseURL = strings.TrimRight(base, "/")
	}
	return g
}

// Name returns the provider identifier.
func (g *GroqProvider) Name() string {
	return "groq"
}

// Transcribe converts audio to text using Groq's Whisper API.
func (g *GroqProvider) Transcribe(ctx context.Context, audio io.Reader, opts TranscribeOptions) (*Transcript, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("groq api key is required")
	}

	audioData, err := io.ReadAll(audio)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	if len(audioData) == 0 {
		return nil, fmt.Errorf("empty audio")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("file", "audio."+getExtension(opts.Format))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := fw.Write(audioData); err != nil {
		return nil, fmt.Errorf("write audio data: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = groqDefaultModel
	}
	if err := mw.WriteField("model", model); err != nil {
		return nil, fmt.Errorf("write model field: %w", err)
	}
	if err := mw.WriteField("response_format", "json"); err != nil {
		return nil, fmt.Errorf("write response_format field: %w", err)
	}
	if opts.Language != "" {
		if err := mw.WriteField("language", opts.Language); err != nil {
			return nil, fmt.Errorf("write language field: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/audio/transcriptions", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("groq request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("groq error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded groqTranscriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	t := &Transcript{Text: strings.TrimSpace(decoded.Text)}
	if decoded.Language != nil {
		t.Language = *decoded.Language
	}
	if decoded.Duration != nil {
		t.Duration = *decoded.Duration
	}
	return t, nil
}

type groqTranscriptionResponse struct {
	Text     string   `json:"text"`
	Language *string  `json:"language,omitempty"`
	Duration *float64 `json:"duration,omitempty"`
}

// getExtension returns the file extension for the given audio format.
func getExtension(format string) string {
	switch format {
	case "wav", "mp3", "webm", "ogg", "flac", "m4a", "mp4", "mpeg", "mpga", "oga":
		return format
	default:
		return "wav"
	}
}
