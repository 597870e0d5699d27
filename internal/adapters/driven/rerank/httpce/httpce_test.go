package httpce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL, Model: "test-ce"})
}

func TestScore(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rerank", r.URL.Path)

		var req rerankRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-ce", req.Model)
		assert.Equal(t, "q", req.Query)
		assert.Equal(t, []string{"d1", "d2"}, req.Documents)
		assert.Equal(t, "5m", req.KeepAlive)

		json.NewEncoder(w).Encode(rerankResponse{Scores: []float64{0.9, -1.2}})
	})

	scores, err := c.Score(context.Background(), "q", []string{"d1", "d2"}, true)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.9, -1.2}, scores)
}

func TestScoreReleaseAfterCall(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req rerankRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "0", req.KeepAlive)
		json.NewEncoder(w).Encode(rerankResponse{Scores: []float64{0.1}})
	})

	_, err := c.Score(context.Background(), "q", []string{"d"}, false)
	require.NoError(t, err)
}

func TestScoreEmptyDocumentsSkipsRequest(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	scores, err := c.Score(context.Background(), "q", nil, true)
	require.NoError(t, err)
	assert.Empty(t, scores)
}

func TestScoreCountMismatch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(rerankResponse{Scores: []float64{0.1}})
	})
	_, err := c.Score(context.Background(), "q", []string{"d1", "d2"}, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 scores for 2 documents")
}

func TestScoreServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	})
	_, err := c.Score(context.Background(), "q", []string{"d"}, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestScoreSerialisesCalls(t *testing.T) {
	var inFlight, maxInFlight int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			old := atomic.LoadInt32(&maxInFlight)
			if n <= old || atomic.CompareAndSwapInt32(&maxInFlight, old, n) {
				break
			}
		}
		json.NewEncoder(w).Encode(rerankResponse{Scores: []float64{0.1}})
		atomic.AddInt32(&inFlight, -1)
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Score(context.Background(), "q", []string{"d"}, true)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxInFlight), "requests must not overlap")
}
