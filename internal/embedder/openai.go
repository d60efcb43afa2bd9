package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/vecfs-dev/vecfs/internal/sparse"
)

const (
	openAIEmbedURL     = "https://api.openai.com/v1/embeddings"
	openAIHTTPTimeout  = 30 * time.Second
	openAIDefaultModel = "text-embedding-3-small"

	openAIMaxRetries    = 3
	openAIMaxRetryAfter = 60 * time.Second
	maxResponseSize     = 10 * 1024 * 1024 // 10 MB
)

// OpenAIEmbedder implements Embedder using an OpenAI-compatible
// embeddings endpoint, thresholding the dense response into a sparse
// vector.
type OpenAIEmbedder struct {
	apiKey      string
	model       string
	threshold   float64
	normalise   bool
	endpointURL string
	client      *http.Client
	logger      *slog.Logger
}

type openAIEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type openAIEmbedData struct {
	Embedding []float64 `json:"embedding"`
	Index     int       `json:"index"`
}

type openAIEmbedResponse struct {
	Data []openAIEmbedData `json:"data"`
}

type openAIErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// NewOpenAIEmbedder creates a new OpenAI-based embedder. model defaults
// to text-embedding-3-small when empty.
func NewOpenAIEmbedder(apiKey, model string, threshold float64, normalise bool, logger *slog.Logger) *OpenAIEmbedder {
	return NewOpenAIEmbedderWithURL(openAIEmbedURL, apiKey, model, threshold, normalise, logger)
}

// NewOpenAIEmbedderWithURL creates an OpenAI-based embedder against a
// custom endpoint URL, for testing against an httptest server.
func NewOpenAIEmbedderWithURL(endpointURL, apiKey, model string, threshold float64, normalise bool, logger *slog.Logger) *OpenAIEmbedder {
	if model == "" {
		model = openAIDefaultModel
	}
	return &OpenAIEmbedder{
		apiKey:      apiKey,
		model:       model,
		threshold:   threshold,
		normalise:   normalise,
		endpointURL: endpointURL,
		client:      &http.Client{Timeout: openAIHTTPTimeout},
		logger:      logger,
	}
}

// Embed implements Embedder. mode is accepted for interface symmetry;
// the OpenAI embeddings endpoint has no separate query/document input,
// so it is not forwarded.
func (o *OpenAIEmbedder) Embed(ctx context.Context, text string, _ Mode) (sparse.Vector, error) {
	vecs, err := o.embedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("openai embedder: no embedding returned")
	}
	return vecs[0], nil
}

// embedBatch calls the embeddings API with a slice of input strings and
// retries on 429 and 5xx responses. Results are sorted by index before
// return so output order always matches input order.
func (o *OpenAIEmbedder) embedBatch(ctx context.Context, texts []string) ([]sparse.Vector, error) {
	reqBody := openAIEmbedRequest{Model: o.model, Input: texts}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("openai embedder: marshaling request: %w", err)
	}

	var (
		resp    *http.Response
		rawBody []byte
	)

	for attempt := 0; attempt < openAIMaxRetries; attempt++ {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, o.endpointURL, bytes.NewReader(bodyBytes))
		if reqErr != nil {
			return nil, fmt.Errorf("openai embedder: creating request: %w", reqErr)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+o.apiKey)

		resp, err = o.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("openai embedder: calling API: %w", err)
		}

		rawBody, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("openai embedder: reading response body: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < openAIMaxRetries-1 {
			wait := parseRetryAfter(resp.Header.Get("Retry-After"), openAIMaxRetryAfter)
			o.logger.Warn("openai rate limited, retrying", "attempt", attempt+1, "wait", wait)
			if waitErr := sleepOrDone(ctx, wait); waitErr != nil {
				return nil, waitErr
			}
			continue
		}
		if resp.StatusCode >= 500 && attempt < openAIMaxRetries-1 {
			wait := time.Duration(1<<attempt) * time.Second
			o.logger.Warn("openai server error, retrying", "attempt", attempt+1, "status", resp.StatusCode, "wait", wait)
			if waitErr := sleepOrDone(ctx, wait); waitErr != nil {
				return nil, waitErr
			}
			continue
		}
		break
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr openAIErrorResponse
		if jsonErr := json.Unmarshal(rawBody, &apiErr); jsonErr == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("openai embedder: API error %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		bodyPreview := string(rawBody)
		if len(bodyPreview) > 512 {
			bodyPreview = bodyPreview[:512] + "..."
		}
		return nil, fmt.Errorf("openai embedder: API returned %d: %s", resp.StatusCode, bodyPreview)
	}

	var result openAIEmbedResponse
	if err = json.Unmarshal(rawBody, &result); err != nil {
		return nil, fmt.Errorf("openai embedder: decoding response: %w", err)
	}
	if len(result.Data) == 0 {
		return nil, fmt.Errorf("openai embedder: no embeddings in response")
	}

	sort.Slice(result.Data, func(i, j int) bool {
		return result.Data[i].Index < result.Data[j].Index
	})

	vecs := make([]sparse.Vector, len(result.Data))
	for i := range result.Data {
		vecs[i] = sparse.DenseToSparse(result.Data[i].Embedding, o.threshold, o.normalise)
	}

	o.logger.Debug("generated embeddings via OpenAI", "model", o.model, "count", len(vecs))
	return vecs, nil
}

func sleepOrDone(ctx context.Context, wait time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

// parseRetryAfter parses the Retry-After header (seconds as integer)
// and returns a wait duration capped at maxWait, falling back to one
// second if the header is absent, malformed, or not a positive number.
func parseRetryAfter(header string, maxWait time.Duration) time.Duration {
	if header == "" {
		return time.Second
	}
	secs, err := strconv.Atoi(header)
	if err != nil || secs <= 0 {
		return time.Second
	}
	wait := time.Duration(secs) * time.Second
	if wait > maxWait {
		return maxWait
	}
	return wait
}
