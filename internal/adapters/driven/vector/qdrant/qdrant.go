// Package qdrant provides a vector index adapter backed by the Qdrant
// REST API. Embedding happens inside the adapter: callers hand over
// text, the adapter turns it into vectors via the configured embedder.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/chengahtung/local-lode/internal/core/domain"
	"github.com/chengahtung/local-lode/internal/core/ports/driven"
	"github.com/chengahtung/local-lode/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:6333"
	DefaultCollection = "local_lode"
	DefaultTimeout    = 60 * time.Second

	// scrollPageSize is the page size for id enumeration.
	scrollPageSize = 512
)

// Config holds configuration for the Qdrant index.
type Config struct {
	// BaseURL is the Qdrant REST API base URL (default: http://localhost:6333).
	BaseURL string

	// Collection is the collection name (default: local_lode).
	Collection string

	// Timeout is the per-request timeout (default: 60s).
	Timeout time.Duration

	// UpsertsPerSecond throttles write requests. Zero means no throttle.
	UpsertsPerSecond float64
}

// Index talks to one Qdrant collection.
type Index struct {
	client     *http.Client
	baseURL    string
	collection string
	embedder   driven.Embedder
	limiter    *rate.Limiter
}

// New creates a Qdrant index over the given embedder.
func New(cfg Config, embedder driven.Embedder) *Index {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.UpsertsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.UpsertsPerSecond), 1)
	}

	return &Index{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		collection: cfg.Collection,
		embedder:   embedder,
		limiter:    limiter,
	}
}

// Ensure creates the collection if it does not exist. An existing
// collection with a different vector size is an error, not silently
// recreated: the caller must reset explicitly.
func (x *Index) Ensure(ctx context.Context) error {
	exists, size, err := x.collectionSize(ctx)
	if err != nil {
		return err
	}
	if !exists {
		logger.Debug("qdrant: creating collection %s (dim=%d)", x.collection, x.embedder.Dimensions())
		return x.createCollection(ctx)
	}
	if size > 0 && size != x.embedder.Dimensions() {
		return fmt.Errorf("collection %s has vector size %d, embedder produces %d",
			x.collection, size, x.embedder.Dimensions())
	}
	return nil
}

// Query embeds the text and runs a similarity search restricted to the
// given metadata types. Hits come back closest first with a similarity
// normalised from Qdrant's cosine score.
func (x *Index) Query(ctx context.Context, text string, k int, types []domain.FileType) ([]driven.VectorHit, error) {
	vector, err := x.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	typeValues := make([]string, len(types))
	for i, t := range types {
		typeValues[i] = string(t)
	}
	reqBody := map[string]any{
		"vector":       vector,
		"limit":        k,
		"with_payload": true,
		"filter": map[string]any{
			"must": []map[string]any{
				{"key": "type", "match": map[string]any{"any": typeValues}},
			},
		},
	}

	var resp struct {
		Result []struct {
			ID      string         `json:"id"`
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	path := fmt.Sprintf("/collections/%s/points/search", x.collection)
	if err := x.do(ctx, http.MethodPost, path, reqBody, &resp); err != nil {
		return nil, err
	}

	hits := make([]driven.VectorHit, len(resp.Result))
	for i, item := range resp.Result {
		score := item.Score
		document, _ := item.Payload["document"].(string)
		hits[i] = driven.VectorHit{
			ID:         item.ID,
			Document:   document,
			Metadata:   metadataFromPayload(item.Payload),
			Similarity: normalizeCosine(score),
			Distance:   &score,
		}
	}
	return hits, nil
}

// Upsert embeds the documents and writes them as points. The document
// text rides along in the payload so hits can be returned without a
// second lookup.
func (x *Index) Upsert(ctx context.Context, ids []string, documents []string, metadatas []map[string]any) error {
	if len(ids) != len(documents) || len(ids) != len(metadatas) {
		return fmt.Errorf("upsert: mismatched slice lengths: %d ids, %d documents, %d metadatas",
			len(ids), len(documents), len(metadatas))
	}
	if len(ids) == 0 {
		return nil
	}

	vectors, err := x.embedder.EmbedBatch(ctx, documents)
	if err != nil {
		return fmt.Errorf("embed batch: %w", err)
	}

	points := make([]map[string]any, len(ids))
	for i := range ids {
		payload := make(map[string]any, len(metadatas[i])+1)
		for k, v := range metadatas[i] {
			payload[k] = v
		}
		payload["document"] = documents[i]
		points[i] = map[string]any{
			"id":      ids[i],
			"vector":  vectors[i],
			"payload": payload,
		}
	}

	if err := x.limiter.Wait(ctx); err != nil {
		return err
	}
	path := fmt.Sprintf("/collections/%s/points?wait=true", x.collection)
	return x.do(ctx, http.MethodPut, path, map[string]any{"points": points}, nil)
}

// ListIDs enumerates every stored point id via the scroll API.
func (x *Index) ListIDs(ctx context.Context) ([]string, error) {
	var (
		ids    []string
		offset any
	)
	for {
		reqBody := map[string]any{
			"limit":        scrollPageSize,
			"with_payload": false,
			"with_vector":  false,
		}
		if offset != nil {
			reqBody["offset"] = offset
		}

		var resp struct {
			Result struct {
				Points []struct {
					ID string `json:"id"`
				} `json:"points"`
				NextPageOffset any `json:"next_page_offset"`
			} `json:"result"`
		}
		path := fmt.Sprintf("/collections/%s/points/scroll", x.collection)
		if err := x.do(ctx, http.MethodPost, path, reqBody, &resp); err != nil {
			return nil, err
		}

		for _, p := range resp.Result.Points {
			ids = append(ids, p.ID)
		}
		if resp.Result.NextPageOffset == nil {
			return ids, nil
		}
		offset = resp.Result.NextPageOffset
	}
}

// Delete removes the given ids in one call.
func (x *Index) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	path := fmt.Sprintf("/collections/%s/points/delete?wait=true", x.collection)
	return x.do(ctx, http.MethodPost, path, map[string]any{"points": ids}, nil)
}

// normalizeCosine maps Qdrant's cosine score from [-1,1] into [0,1].
// Out-of-range scores yield nil rather than a clamped guess.
func normalizeCosine(score float64) *float64 {
	if score < -1.0 || score > 1.0 {
		return nil
	}
	sim := (score + 1.0) / 2.0
	return &sim
}

// metadataFromPayload strips the adapter-private document field from the
// stored payload.
func metadataFromPayload(payload map[string]any) map[string]any {
	meta := make(map[string]any, len(payload))
	for k, v := range payload {
		if k == "document" {
			continue
		}
		meta[k] = v
	}
	return meta
}

func (x *Index) collectionSize(ctx context.Context) (bool, int, error) {
	var resp struct {
		Result struct {
			Config struct {
				Params struct {
					Vectors struct {
						Size int `json:"size"`
					} `json:"vectors"`
				} `json:"params"`
			} `json:"config"`
		} `json:"result"`
	}

	path := fmt.Sprintf("/collections/%s", x.collection)
	err := x.do(ctx, http.MethodGet, path, nil, &resp)
	if err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) && apiErr.status == http.StatusNotFound {
			return false, 0, nil
		}
		return false, 0, err
	}
	return true, resp.Result.Config.Params.Vectors.Size, nil
}

func (x *Index) createCollection(ctx context.Context) error {
	reqBody := map[string]any{
		"vectors": map[string]any{
			"size":     x.embedder.Dimensions(),
			"distance": "Cosine",
		},
	}
	path := fmt.Sprintf("/collections/%s", x.collection)
	return x.do(ctx, http.MethodPut, path, reqBody, nil)
}

// apiError carries the HTTP status of a failed Qdrant call so callers
// can distinguish missing collections from real failures.
type apiError struct {
	status int
	body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("qdrant API error: %d %s", e.status, e.body)
}

func (x *Index) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal qdrant request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, x.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create qdrant request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := x.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read qdrant response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return &apiError{status: resp.StatusCode, body: string(data)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse qdrant response: %w", err)
	}
	return nil
}
