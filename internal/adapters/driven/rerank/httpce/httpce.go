// Package httpce provides a cross-encoder scorer adapter backed by an
// HTTP reranker sidecar (a small server wrapping a sentence-transformers
// cross-encoder model).
package httpce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/chengahtung/local-lode/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.CrossEncoder = (*Client)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:8500"
	DefaultModel   = "cross-encoder/ms-marco-MiniLM-L-6-v2"
	DefaultTimeout = 60 * time.Second
)

// Config holds configuration for the cross-encoder client.
type Config struct {
	// BaseURL is the reranker server base URL (default: http://localhost:8500).
	BaseURL string

	// Model is the cross-encoder model to score with.
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// Client scores query-document pairs via the /rerank endpoint. Calls are
// serialised: the sidecar holds one model instance and concurrent
// requests would thrash its load/unload cycle.
type Client struct {
	client  *http.Client
	baseURL string
	model   string

	mu sync.Mutex
}

// rerankRequest is the sidecar request format. KeepAlive mirrors the
// Ollama convention: a truthy duration keeps the model resident, "0"
// unloads it after the call.
type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	KeepAlive string   `json:"keep_alive"`
}

// rerankResponse is the sidecar response format. Scores are parallel to
// the request documents.
type rerankResponse struct {
	Scores []float64 `json:"scores"`
}

// New creates a cross-encoder client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
	}
}

// Score returns one relevance score per document.
func (c *Client) Score(ctx context.Context, query string, documents []string, keepLoaded bool) ([]float64, error) {
	if len(documents) == 0 {
		return []float64{}, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	keepAlive := "0"
	if keepLoaded {
		keepAlive = "5m"
	}
	jsonBody, err := json.Marshal(rerankRequest{
		Model:     c.model,
		Query:     query,
		Documents: documents,
		KeepAlive: keepAlive,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/rerank",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("reranker error (status %d): failed to read response", resp.StatusCode)
		}
		return nil, fmt.Errorf("reranker error (status %d): %s", resp.StatusCode, string(body))
	}

	var rerankResp rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&rerankResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(rerankResp.Scores) != len(documents) {
		return nil, fmt.Errorf("reranker returned %d scores for %d documents",
			len(rerankResp.Scores), len(documents))
	}
	return rerankResp.Scores, nil
}
