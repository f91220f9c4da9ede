// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

/*
Package embedding provides sentence embeddings from a local inference
server speaking the OpenAI-compatible /v1/embeddings JSON shape (llama.cpp,
Ollama, text-embeddings-inference and similar).

The production embedder is a stack of three layers, outermost first:

  - Cached: bounded LRU keyed by the SHA-256 of the text
  - Breaker: sony/gobreaker circuit breaker with Prometheus state metrics
  - Client: rate-limited HTTP client with a per-request timeout

New assembles the stack from a Config. Embedding failures are never fatal to
callers: the text similarity analyzer drops the embedding signal and
reweights the remaining ones.
*/
package embedding

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

// maxErrorBodySize bounds how much of an error response is read.
const maxErrorBodySize = 64 * 1024

// embeddingsPath is appended to the configured endpoint.
const embeddingsPath = "/v1/embeddings"

// ErrEmptyEmbedding is returned when the server answers without a vector.
var ErrEmptyEmbedding = errors.New("embedding response contained no vector")

// Embedder produces a sentence embedding for a text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Config configures the embedding stack.
type Config struct {
	// Endpoint is the inference server base URL, e.g. http://localhost:8081.
	Endpoint string `koanf:"endpoint"`

	// Model is sent as the request's model field.
	Model string `koanf:"model"`

	// APIKey, when set, is sent as a bearer token.
	APIKey string `koanf:"api_key"`

	Timeout time.Duration `koanf:"timeout"`

	// RequestsPerSecond and Burst bound the outgoing request rate.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`

	// CacheSize bounds the number of cached vectors.
	CacheSize int `koanf:"cache_size"`

	Breaker BreakerConfig `koanf:"breaker"`
}

// DefaultConfig returns settings for a local inference server.
func DefaultConfig() Config {
	return Config{
		Model:             "all-MiniLM-L6-v2",
		Timeout:           5 * time.Second,
		RequestsPerSecond: 20,
		Burst:             5,
		CacheSize:         2048,
		Breaker:           DefaultBreakerConfig(),
	}
}

type embeddingRequest struct {
	Input string `json:"input"`
	Model string `json:"model,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// Client calls the embeddings endpoint. It is safe for concurrent use.
type Client struct {
	endpoint string
	model    string
	apiKey   string
	http     *http.Client
	limiter  *rate.Limiter
}

// NewClient creates a Client for cfg.Endpoint.
func NewClient(cfg *Config) (*Client, error) {
	u, err := url.Parse(cfg.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid embedding endpoint %q", cfg.Endpoint)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultConfig().Timeout
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := max(cfg.Burst, 1)

	return &Client{
		endpoint: strings.TrimRight(cfg.Endpoint, "/") + embeddingsPath,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(limit, burst),
	}, nil
}

// Embed returns the embedding of text.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("embedding rate limit: %w", err)
	}

	body, err := json.Marshal(embeddingRequest{Input: text, Model: c.model})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding server returned status %d: %s", resp.StatusCode, readBodyForError(resp.Body))
	}

	var out embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, ErrEmptyEmbedding
	}
	return out.Data[0].Embedding, nil
}

// readBodyForError reads at most maxErrorBodySize bytes of r.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	return bytes.TrimSpace(body)
}
