package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/vecfs-dev/vecfs/internal/sparse"
)

const ollamaHTTPTimeout = 30 * time.Second

// OllamaEmbedder implements Embedder using the Ollama HTTP API,
// thresholding the dense response into a sparse vector.
type OllamaEmbedder struct {
	baseURL   string
	model     string
	threshold float64
	normalise bool
	client    *http.Client
	logger    *slog.Logger
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// NewOllamaEmbedder creates a new Ollama-based embedder. threshold and
// normalise are forwarded to sparse.DenseToSparse for every embed call.
func NewOllamaEmbedder(baseURL, model string, threshold float64, normalise bool, logger *slog.Logger) *OllamaEmbedder {
	return &OllamaEmbedder{
		baseURL:   baseURL,
		model:     model,
		threshold: threshold,
		normalise: normalise,
		client:    &http.Client{Timeout: ollamaHTTPTimeout},
		logger:    logger,
	}
}

// Embed implements Embedder. mode is accepted for interface symmetry
// with OpenAIEmbedder; the Ollama embeddings endpoint has no separate
// query/document prompt, so it is not forwarded.
func (o *OllamaEmbedder) Embed(ctx context.Context, text string, _ Mode) (sparse.Vector, error) {
	reqBody := ollamaEmbedRequest{Model: o.model, Prompt: text}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("ollama embedder: marshalling request: %w", err)
	}

	url := o.baseURL + "/api/embeddings"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("ollama embedder: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama embedder: calling API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama embedder: API returned %d: %s", resp.StatusCode, string(body))
	}

	var result ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("ollama embedder: decoding response: %w", err)
	}
	if len(result.Embedding) == 0 {
		return nil, fmt.Errorf("ollama embedder: empty embedding returned")
	}

	vec := sparse.DenseToSparse(result.Embedding, o.threshold, o.normalise)
	o.logger.Debug("generated embedding", "model", o.model, "dims", len(vec))
	return vec, nil
}
