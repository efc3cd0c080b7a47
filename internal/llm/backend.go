// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm refines search queries and summarizes abstracts through a chat
// completion API. Both operations are best-effort: failures are logged and
// replaced by fallback text so the pipeline never aborts on the LLM.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pdiddy/paper-fetcher/pkg/types"
)

// DefaultModel is the chat model used when none is configured.
const DefaultModel = openai.GPT3Dot5Turbo

var (
	// ErrRateLimited means the API refused the call for rate or quota limits.
	ErrRateLimited = errors.New("llm rate limit or quota exceeded")

	// ErrDisabled is returned by the Disabled backend.
	ErrDisabled = errors.New("llm calls disabled")

	// ErrMissingAPIKey is returned when an OpenAI backend is built without a key.
	ErrMissingAPIKey = errors.New("OpenAI API key is not set (OPENAI_API_KEY)")
)

// Backend abstracts the chat completion API so tests can supply a mock.
type Backend interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Request is one single-turn chat completion.
type Request struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float32
}

// OpenAIBackend calls the OpenAI chat completions API.
type OpenAIBackend struct {
	client *openai.Client
	model  string
}

// NewOpenAIBackend builds a backend from cfg. A nil httpClient uses the
// library default.
func NewOpenAIBackend(cfg types.AIConfig, httpClient *http.Client) (*OpenAIBackend, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	if httpClient != nil {
		clientCfg.HTTPClient = httpClient
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &OpenAIBackend{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}, nil
}

// Complete sends req as a system+user message pair and returns the trimmed
// text of the first choice. HTTP 429 answers are reported as ErrRateLimited.
func (b *OpenAIBackend) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		if isRateLimit(err) {
			return "", fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("chat completion returned empty content")
	}
	return text, nil
}

func isRateLimit(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	return false
}

// Disabled is a Backend that never calls out; every request fails with
// ErrDisabled.
type Disabled struct{}

// Complete always returns ErrDisabled.
func (Disabled) Complete(context.Context, Request) (string, error) {
	return "", ErrDisabled
}
