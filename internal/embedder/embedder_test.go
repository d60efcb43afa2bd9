package embedder_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vecfs-dev/vecfs/internal/embedder"
	"github.com/vecfs-dev/vecfs/internal/sparse"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, nil))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestLazyInitializesOnce(t *testing.T) {
	calls := 0
	l := embedder.NewLazy(func() (embedder.Embedder, error) {
		calls++
		return embedder.NoopEmbedder{}, nil
	})

	_, err := l.Get()
	require.NoError(t, err)
	_, err = l.Get()
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestLazyEmbedDelegatesToResolvedEmbedder(t *testing.T) {
	l := embedder.NewLazy(func() (embedder.Embedder, error) {
		return orderedStub{}, nil
	})

	vec, err := l.Embed(context.Background(), "bb", embedder.ModeQuery)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, vec[0], 1e-9)
}

func TestLazyEmbedPropagatesFactoryError(t *testing.T) {
	l := embedder.NewLazy(func() (embedder.Embedder, error) {
		return nil, embedder.ErrNoopEmbedder
	})

	_, err := l.Embed(context.Background(), "x", embedder.ModeQuery)
	assert.ErrorIs(t, err, embedder.ErrNoopEmbedder)
}

func TestNoopEmbedderFails(t *testing.T) {
	_, err := embedder.NoopEmbedder{}.Embed(context.Background(), "hi", embedder.ModeQuery)
	assert.ErrorIs(t, err, embedder.ErrNoopEmbedder)
}

func TestOllamaEmbedderProducesSparseVector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"embedding": []float64{0.9, 0.001, -0.8, 0},
		})
	}))
	defer srv.Close()

	e := embedder.NewOllamaEmbedder(srv.URL, "test-model", 0.01, false, discardLogger())
	vec, err := e.Embed(context.Background(), "hello", embedder.ModeDocument)
	require.NoError(t, err)
	assert.Len(t, vec, 2)
	assert.InDelta(t, 0.9, vec[0], 1e-9)
	assert.InDelta(t, -0.8, vec[2], 1e-9)
}

func TestOllamaEmbedderPropagatesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer srv.Close()

	e := embedder.NewOllamaEmbedder(srv.URL, "test-model", 0.01, false, discardLogger())
	_, err := e.Embed(context.Background(), "hello", embedder.ModeDocument)
	assert.Error(t, err)
}

func TestOpenAIEmbedderProducesSparseVector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"embedding": []float64{0.5, 0.0001}, "index": 0},
			},
		})
	}))
	defer srv.Close()

	e := embedder.NewOpenAIEmbedderWithURL(srv.URL, "key", "", 0.01, false, discardLogger())
	vec, err := e.Embed(context.Background(), "hello", embedder.ModeQuery)
	require.NoError(t, err)
	assert.Len(t, vec, 1)
	assert.InDelta(t, 0.5, vec[0], 1e-9)
}

func TestOpenAIEmbedderRetriesOn429(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float64{0.3}, "index": 0}},
		})
	}))
	defer srv.Close()

	e := embedder.NewOpenAIEmbedderWithURL(srv.URL, "key", "", 0.01, false, discardLogger())
	vec, err := e.Embed(context.Background(), "hello", embedder.ModeQuery)
	require.NoError(t, err)
	assert.Len(t, vec, 1)
	assert.Equal(t, 2, attempts)
}

func TestEmbedBatchPreservesOrder(t *testing.T) {
	e := orderedStub{}
	texts := []string{"a", "bb", "ccc"}
	vecs, err := embedder.EmbedBatch(context.Background(), e, texts, embedder.ModeDocument)
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	for i, text := range texts {
		assert.InDelta(t, float64(len(text)), vecs[i][0], 1e-9)
	}
}

type orderedStub struct{}

func (orderedStub) Embed(_ context.Context, text string, _ embedder.Mode) (sparse.Vector, error) {
	return sparse.Vector{0: float64(len(text))}, nil
}

func TestOpenAIErrorBodyIsSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "invalid request", "type": "invalid_request_error"},
		})
	}))
	defer srv.Close()

	e := embedder.NewOpenAIEmbedderWithURL(srv.URL, "key", "", 0.01, false, discardLogger())
	_, err := e.Embed(context.Background(), "hello", embedder.ModeQuery)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid request")
}

func TestSortStableForDeterminism(t *testing.T) {
	xs := []int{3, 1, 2}
	sort.Ints(xs)
	assert.Equal(t, []int{1, 2, 3}, xs)
}
