package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	// DefaultBaseURL is the Groq OpenAI-compatible API endpoint.
	DefaultBaseURL = "https://api.groq.com/openai/v1"

	// DefaultModel matches the model the interview flow was tuned against.
	DefaultModel = "llama-3.3-70b-versatile"

	defaultMaxTokens = 512
)

// GroqProvider implements Completer against Groq's chat completions API.
type GroqProvider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// Option configures a GroqProvider.
type Option func(*GroqProvider)

// WithBaseURL overrides the API endpoint. Useful for tests.
func WithBaseURL(base string) Option {
	return func(p *GroqProvider) {
		if strings.TrimSpace(base) != "" {
			p.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(p *GroqProvider) {
		if client != nil {
			p.httpClient = client
		}
	}
}

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(p *GroqProvider) {
		if strings.TrimSpace(model) != "" {
			p.model = model
		}
	}
}

// NewGroq creates a new Groq completion provider.
func NewGroq(apiKey string, opts ...Option) *GroqProvider {
	p := &GroqProvider{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    DefaultBaseURL,
		model:      DefaultModel,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider identifier.
func (p *GroqProvider) Name() string {
	return "groq"
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   *int          `json:"max_completion_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

type chatErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends a chat completion request and returns the reply text.
func (p *GroqProvider) Complete(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(p.apiKey) == "" {
		return "", fmt.Errorf("groq: api key is required")
	}

	body := chatRequest{Model: p.model}
	if req.System != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: req.System})
	}
	body.Messages = append(body.Messages, chatMessage{Role: "user", Content: req.Prompt})

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	body.MaxTokens = &maxTokens
	if req.Temperature > 0 {
		body.Temperature = &req.Temperature
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("groq request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", parseGroqError(resp)
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("groq: response contained no choices")
	}
	return strings.TrimSpace(decoded.Choices[0].Message.Content), nil
}

func parseGroqError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	var decoded chatErrorResponse
	if err := json.Unmarshal(raw, &decoded); err == nil && decoded.Error.Message != "" {
		return fmt.Errorf("groq error %d: %s", resp.StatusCode, decoded.Error.Message)
	}
	return fmt.Errorf("groq error %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
}
