package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vecfs-dev/vecfs/internal/dispatch"
	"github.com/vecfs-dev/vecfs/internal/embedder"
	"github.com/vecfs-dev/vecfs/internal/httpapi"
	"github.com/vecfs-dev/vecfs/internal/sparse"
	"github.com/vecfs-dev/vecfs/internal/store"
)

type fixedEmbedder struct{}

func (fixedEmbedder) Embed(context.Context, string, embedder.Mode) (sparse.Vector, error) {
	return sparse.Vector{1: 1}, nil
}

func newTestServer(authToken string) *httptest.Server {
	disp := &dispatch.Dispatcher{
		Store:    store.NewMemStore(),
		Embedder: fixedEmbedder{},
		Logger:   slog.New(slog.NewTextHandler(discardWriter{}, nil)),
	}
	srv := httpapi.NewServer(disp, disp.Logger, authToken)
	return httptest.NewServer(srv.Handler())
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func postTool(t *testing.T, ts *httptest.Server, tool string, args map[string]any, bearer string) *http.Response {
	t.Helper()
	body, err := json.Marshal(args)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/v1/tools/"+tool, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func TestHealthz(t *testing.T) {
	ts := newTestServer("")
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMemorizeThenSearchOverHTTP(t *testing.T) {
	ts := newTestServer("")
	defer ts.Close()

	resp := postTool(t, ts, "memorize", map[string]any{"id": "a", "text": "hello"}, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postTool(t, ts, "search", map[string]any{"query": "hello"}, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Results []struct {
			ID string `json:"id"`
		} `json:"results"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Results, 1)
	assert.Equal(t, "a", out.Results[0].ID)
}

func TestInvalidArgumentMapsToBadRequest(t *testing.T) {
	ts := newTestServer("")
	defer ts.Close()

	resp := postTool(t, ts, "search", map[string]any{}, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUnknownToolIsNotFound(t *testing.T) {
	ts := newTestServer("")
	defer ts.Close()

	resp := postTool(t, ts, "bogus", map[string]any{}, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAuthRequiredWhenTokenConfigured(t *testing.T) {
	ts := newTestServer("secret")
	defer ts.Close()

	resp := postTool(t, ts, "delete", map[string]any{"id": "x"}, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = postTool(t, ts, "delete", map[string]any{"id": "x"}, "secret")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
