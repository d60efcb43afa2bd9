// Package dispatch validates tool arguments, invokes the embedder and
// store, and formats the text responses the four memory tools return.
// It has no knowledge of any particular wire transport.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/vecfs-dev/vecfs/internal/embedder"
	"github.com/vecfs-dev/vecfs/internal/metrics"
	"github.com/vecfs-dev/vecfs/internal/store"
)

// Kind classifies a dispatch error for the transport layer, which maps
// each kind onto its own wire error shape.
type Kind int

const (
	InvalidArgument Kind = iota
	EmbedderUnavailable
	EmbedderFailure
	StorageFailure
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid_argument"
	case EmbedderUnavailable:
		return "embedder_unavailable"
	case EmbedderFailure:
		return "embedder_failure"
	case StorageFailure:
		return "storage_failure"
	default:
		return "unknown"
	}
}

// Error is the one error type every dispatch operation returns. Tool
// names the operation that failed; Msg is the human-readable reason.
type Error struct {
	Kind Kind
	Tool string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Tool, e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Tool, e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func invalidArgf(tool, format string, args ...any) *Error {
	return &Error{Kind: InvalidArgument, Tool: tool, Msg: fmt.Sprintf(format, args...)}
}

func embedderUnavailable(tool string) *Error {
	return &Error{Kind: EmbedderUnavailable, Tool: tool, Msg: "no embedder is configured"}
}

func embedderFailure(tool string, err error) *Error {
	return &Error{Kind: EmbedderFailure, Tool: tool, Msg: "embedder failed", Err: err}
}

func storageFailure(tool string, err error) *Error {
	return &Error{Kind: StorageFailure, Tool: tool, Msg: "storage operation failed", Err: err}
}

// Dispatcher wires a Store and an optional Embedder to the four tool
// operations. Embedder may be nil: search and memorize then fail fast
// with EmbedderUnavailable, while feedback and delete remain usable.
type Dispatcher struct {
	Store              store.Store
	Embedder           embedder.Embedder
	Logger             *slog.Logger
	DefaultSearchLimit int
}

// Hit is the wire-safe view of a SearchHit: no raw vector field.
type Hit struct {
	ID         string         `json:"id"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Score      float64        `json:"score"`
	Timestamp  int64          `json:"timestamp"`
	Similarity float64        `json:"similarity"`
}

// Search embeds req.Query (mode=query), ranks the store against it,
// and returns the hits with their vectors stripped.
func (d *Dispatcher) Search(ctx context.Context, req *SearchRequest) ([]Hit, error) {
	if d.Embedder == nil {
		return nil, embedderUnavailable("search")
	}

	query, err := d.Embedder.Embed(ctx, req.Query, embedder.ModeQuery)
	if err != nil {
		metrics.Inc(metrics.EmbedderErrors)
		return nil, embedderFailure("search", err)
	}

	limit := req.Limit
	if limit == 0 {
		limit = d.defaultLimit()
	}

	results, err := d.Store.Search(ctx, query, limit)
	if err != nil {
		return nil, storageFailure("search", err)
	}
	metrics.Inc(metrics.SearchTotal)

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		hits = append(hits, Hit{
			ID:         r.ID,
			Metadata:   r.Metadata,
			Score:      r.Score,
			Timestamp:  r.Timestamp,
			Similarity: r.Similarity,
		})
	}
	return hits, nil
}

func (d *Dispatcher) defaultLimit() int {
	if d.DefaultSearchLimit > 0 {
		return d.DefaultSearchLimit
	}
	return store.DefaultSearchLimit
}

// Memorize embeds req.Text (mode=document) and upserts an entry whose
// metadata is req.Metadata with "text" overwritten to req.Text, score
// reset to 0.
func (d *Dispatcher) Memorize(ctx context.Context, req *MemorizeRequest) (string, error) {
	if d.Embedder == nil {
		return "", embedderUnavailable("memorize")
	}

	vec, err := d.Embedder.Embed(ctx, req.Text, embedder.ModeDocument)
	if err != nil {
		metrics.Inc(metrics.EmbedderErrors)
		return "", embedderFailure("memorize", err)
	}

	metadata := make(map[string]any, len(req.Metadata)+1)
	for k, v := range req.Metadata {
		metadata[k] = v
	}
	metadata["text"] = req.Text

	_, err = d.Store.StoreEntry(ctx, store.Entry{
		ID:       req.ID,
		Vector:   vec,
		Metadata: metadata,
		Score:    0,
	})
	if err != nil {
		return "", storageFailure("memorize", err)
	}
	metrics.Inc(metrics.MemorizeTotal)

	return "Stored entry: " + req.ID, nil
}

// Feedback applies req.ScoreAdjustment to the entry's score. A missing
// id is a normal text outcome, not an error.
func (d *Dispatcher) Feedback(ctx context.Context, req *FeedbackRequest) (string, error) {
	found, err := d.Store.UpdateScore(ctx, req.ID, req.ScoreAdjustment)
	if err != nil {
		return "", storageFailure("feedback", err)
	}
	if !found {
		metrics.Inc(metrics.NotFoundTotal)
		return "Entry not found: " + req.ID, nil
	}
	metrics.Inc(metrics.FeedbackTotal)
	return "Updated score for entry: " + req.ID, nil
}

// Delete removes the entry with the given id. A missing id is a normal
// text outcome, not an error.
func (d *Dispatcher) Delete(ctx context.Context, req *DeleteRequest) (string, error) {
	found, err := d.Store.Delete(ctx, req.ID)
	if err != nil {
		return "", storageFailure("delete", err)
	}
	if !found {
		metrics.Inc(metrics.NotFoundTotal)
		return "Entry not found: " + req.ID, nil
	}
	metrics.Inc(metrics.DeleteTotal)
	return "Deleted entry: " + req.ID, nil
}

func requireFinite(tool, field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return invalidArgf(tool, "%s must be a finite number", field)
	}
	return nil
}
