// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pubmed is a small client for NCBI E-utilities: esearch for PubMed
// IDs, esummary for document metadata, and efetch for abstracts and author
// affiliations. Requests are paced to NCBI's published limits and HTTP 429
// responses are retried.
package pubmed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/paper-fetcher/internal/httputil"
	"github.com/pdiddy/paper-fetcher/pkg/types"
)

// DefaultBaseURL is the E-utilities root. Tests point Client.BaseURL at an
// httptest server instead.
const DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

const (
	defaultMaxResults = 100
	defaultTimeout    = 30 * time.Second
	defaultTool       = "paper-fetcher"
	defaultUserAgent  = "paper-fetcher/0.1"

	// NCBI allows 3 requests/s without an API key and 10 with one.
	anonymousRate = 3
	keyedRate     = 10

	maxBodyBytes = 32 << 20
)

// StatusError reports a non-200 response from an E-utilities endpoint.
type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("E-utilities %s returned HTTP %d", e.Endpoint, e.StatusCode)
}

// Client queries PubMed through E-utilities.
type Client struct {
	// BaseURL is the E-utilities root, without a trailing slash.
	BaseURL string

	http    *http.Client
	cfg     types.FetchConfig
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewClient returns a Client for cfg, filling in defaults for unset fields.
// A nil httpClient gets one with cfg.Timeout.
func NewClient(cfg types.FetchConfig, httpClient *http.Client, logger *slog.Logger) *Client {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaultMaxResults
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Tool == "" {
		cfg.Tool = defaultTool
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}

	perSecond := float64(anonymousRate)
	if cfg.APIKey != "" {
		perSecond = keyedRate
	}
	if cfg.RequestsPerSecond > 0 {
		perSecond = cfg.RequestsPerSecond
	}

	baseURL := DefaultBaseURL
	if cfg.BaseURL != "" {
		baseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}

	return &Client{
		BaseURL: baseURL,
		http:    httpClient,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
		logger:  logger,
	}
}

// MaxResults returns the effective esearch retmax.
func (c *Client) MaxResults() int { return c.cfg.MaxResults }

// get issues a paced GET against endpoint and returns the response body.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	params.Set("tool", c.cfg.Tool)
	if c.cfg.Email != "" {
		params.Set("email", c.cfg.Email)
	}
	if c.cfg.APIKey != "" {
		params.Set("api_key", c.cfg.APIKey)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for %s rate limit: %w", endpoint, err)
	}

	reqURL := strings.TrimSuffix(c.BaseURL, "/") + "/" + endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	c.logger.Debug("E-utilities request", "endpoint", endpoint, "id", params.Get("id"), "term", params.Get("term"))

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.cfg.MaxRetries, c.logger)
	if err != nil {
		return nil, fmt.Errorf("E-utilities %s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", endpoint, err)
	}
	return body, nil
}

// Document fetches the esummary metadata and the efetch article for pmid and
// merges them. efetch authors (which carry affiliations) replace the
// esummary author list whenever efetch returns any.
func (c *Client) Document(ctx context.Context, pmid string) (types.Document, error) {
	doc, err := c.Summary(ctx, pmid)
	if err != nil {
		return types.Document{}, err
	}

	article, err := c.Details(ctx, pmid)
	if err != nil {
		return types.Document{}, err
	}

	doc.Abstract = article.Abstract
	if len(article.Authors) > 0 {
		doc.Authors = article.Authors
	}
	if doc.Title == "" {
		doc.Title = article.Title
	}
	return doc, nil
}
