// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

const (
	enhanceSystemPrompt   = "You are an expert research assistant. Simplify the following query for PubMed search, extracting essential concepts."
	summarizeSystemPrompt = "Summarize the following research abstract."
)

// Fallback summaries.
const (
	SummaryQuotaExceeded = "Summary not available due to quota limits."
	SummaryUnavailable   = "Summary not available."
)

// Enhancer rewrites free-text queries into terse PubMed search terms.
type Enhancer struct {
	Backend Backend
	Logger  *slog.Logger
}

// Enhance returns the refined query, or query itself when the backend
// fails or answers with nothing.
func (e *Enhancer) Enhance(ctx context.Context, query string) string {
	refined, err := e.Backend.Complete(ctx, Request{
		System:      enhanceSystemPrompt,
		User:        query,
		MaxTokens:   50,
		Temperature: 0.2,
	})
	if err != nil {
		logFailure(logger(e.Logger), "query enhancement", err)
		return query
	}
	refined = strings.TrimSpace(refined)
	if refined == "" {
		return query
	}
	return refined
}

// Summarizer condenses abstracts.
type Summarizer struct {
	Backend Backend
	Logger  *slog.Logger
}

// Summarize returns a short summary of text, or one of the fallback
// strings when the backend fails.
func (s *Summarizer) Summarize(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return SummaryUnavailable
	}

	summary, err := s.Backend.Complete(ctx, Request{
		System:      summarizeSystemPrompt,
		User:        text,
		MaxTokens:   100,
		Temperature: 0.5,
	})
	if err != nil {
		logFailure(logger(s.Logger), "summarization", err)
		if errors.Is(err, ErrRateLimited) {
			return SummaryQuotaExceeded
		}
		return SummaryUnavailable
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return SummaryUnavailable
	}
	return summary
}

func logFailure(l *slog.Logger, op string, err error) {
	switch {
	case errors.Is(err, ErrDisabled):
		l.Debug("skipping LLM "+op, "reason", "disabled")
	case errors.Is(err, ErrRateLimited):
		l.Warn("quota exceeded, skipping LLM "+op, "error", err)
	default:
		l.Error("LLM "+op+" failed", "error", err)
	}
}

func logger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
