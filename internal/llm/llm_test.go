// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-fetcher/pkg/types"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// mockBackend records requests and replays a fixed answer.
type mockBackend struct {
	reply string
	err   error
	reqs  []Request
}

func (m *mockBackend) Complete(_ context.Context, req Request) (string, error) {
	m.reqs = append(m.reqs, req)
	return m.reply, m.err
}

func TestEnhance(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
		want  string
	}{
		{"uses refined query", "  CRISPR base editing  ", nil, "CRISPR base editing"},
		{"rate limit falls back", "", fmt.Errorf("%w: 429", ErrRateLimited), "how does crispr editing work"},
		{"other error falls back", "", errors.New("boom"), "how does crispr editing work"},
		{"empty answer falls back", "   ", nil, "how does crispr editing work"},
		{"disabled falls back", "", ErrDisabled, "how does crispr editing work"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mb := &mockBackend{reply: tt.reply, err: tt.err}
			e := &Enhancer{Backend: mb, Logger: quietLogger}

			got := e.Enhance(context.Background(), "how does crispr editing work")
			assert.Equal(t, tt.want, got)

			require.Len(t, mb.reqs, 1)
			assert.Equal(t, enhanceSystemPrompt, mb.reqs[0].System)
			assert.Equal(t, "how does crispr editing work", mb.reqs[0].User)
			assert.Equal(t, 50, mb.reqs[0].MaxTokens)
			assert.InDelta(t, 0.2, mb.reqs[0].Temperature, 1e-6)
		})
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
		want  string
	}{
		{"returns summary", "Editing lowered LDL.\n", nil, "Editing lowered LDL."},
		{"rate limit", "", fmt.Errorf("%w: 429", ErrRateLimited), SummaryQuotaExceeded},
		{"other error", "", errors.New("timeout"), SummaryUnavailable},
		{"disabled", "", ErrDisabled, SummaryUnavailable},
		{"empty answer", "", nil, SummaryUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mb := &mockBackend{reply: tt.reply, err: tt.err}
			s := &Summarizer{Backend: mb, Logger: quietLogger}

			assert.Equal(t, tt.want, s.Summarize(context.Background(), "An abstract."))
			require.Len(t, mb.reqs, 1)
			assert.Equal(t, summarizeSystemPrompt, mb.reqs[0].System)
			assert.Equal(t, 100, mb.reqs[0].MaxTokens)
			assert.InDelta(t, 0.5, mb.reqs[0].Temperature, 1e-6)
		})
	}
}

func TestSummarizeEmptyTextSkipsBackend(t *testing.T) {
	mb := &mockBackend{reply: "should not be used"}
	s := &Summarizer{Backend: mb, Logger: quietLogger}
	assert.Equal(t, SummaryUnavailable, s.Summarize(context.Background(), "  "))
	assert.Empty(t, mb.reqs)
}

func TestNewOpenAIBackendRequiresKey(t *testing.T) {
	_, err := NewOpenAIBackend(types.AIConfig{}, nil)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

type chatRequest struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float32 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func openAITestServer(t *testing.T, status int, body string, got *chatRequest) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		if got != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newTestBackend(t *testing.T, ts *httptest.Server, model string) *OpenAIBackend {
	t.Helper()
	b, err := NewOpenAIBackend(types.AIConfig{APIKey: "sk-test", BaseURL: ts.URL + "/", Model: model}, ts.Client())
	require.NoError(t, err)
	return b
}

const sampleCompletion = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-3.5-turbo",
  "choices": [
    {"index": 0, "message": {"role": "assistant", "content": "  crispr[tiab] AND base editing  "}, "finish_reason": "stop"}
  ],
  "usage": {"prompt_tokens": 30, "completion_tokens": 8, "total_tokens": 38}
}`

func TestOpenAIBackendComplete(t *testing.T) {
	var got chatRequest
	ts := openAITestServer(t, http.StatusOK, sampleCompletion, &got)
	b := newTestBackend(t, ts, "")

	text, err := b.Complete(context.Background(), Request{
		System: "sys", User: "usr", MaxTokens: 50, Temperature: 0.2,
	})
	require.NoError(t, err)
	assert.Equal(t, "crispr[tiab] AND base editing", text)

	assert.Equal(t, DefaultModel, got.Model)
	assert.Equal(t, 50, got.MaxTokens)
	assert.InDelta(t, 0.2, got.Temperature, 1e-6)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "sys", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "usr", got.Messages[1].Content)
}

func TestOpenAIBackendQuotaIsRateLimit(t *testing.T) {
	ts := openAITestServer(t, http.StatusTooManyRequests,
		`{"error": {"message": "You exceeded your current quota", "type": "insufficient_quota", "param": null, "code": "insufficient_quota"}}`, nil)
	b := newTestBackend(t, ts, "gpt-4o-mini")

	_, err := b.Complete(context.Background(), Request{System: "s", User: "u"})
	assert.ErrorIs(t, err, ErrRateLimited)

	s := &Summarizer{Backend: b, Logger: quietLogger}
	assert.Equal(t, SummaryQuotaExceeded, s.Summarize(context.Background(), "abstract"))
}

func TestOpenAIBackendServerError(t *testing.T) {
	ts := openAITestServer(t, http.StatusInternalServerError,
		`{"error": {"message": "internal", "type": "server_error"}}`, nil)
	b := newTestBackend(t, ts, "")

	_, err := b.Complete(context.Background(), Request{System: "s", User: "u"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRateLimited)
}

func TestOpenAIBackendNoChoices(t *testing.T) {
	ts := openAITestServer(t, http.StatusOK, `{"id": "x", "choices": []}`, nil)
	b := newTestBackend(t, ts, "")

	_, err := b.Complete(context.Background(), Request{System: "s", User: "u"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}
