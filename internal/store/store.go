// Package store owns the on-disk memory log and the in-memory cache
// kept consistent with it, and answers ranked similarity queries.
package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/vecfs-dev/vecfs/internal/sparse"
)

// ErrNotFound is returned by Get when the requested entry does not
// exist. UpdateScore and Delete report a missing id as a plain boolean
// instead — a missing id is a normal outcome of feedback and delete,
// not a failure.
var ErrNotFound = errors.New("vecfs: entry not found")

// FeedbackWeight is the default bound on how much the reinforcement
// score can move a ranking relative to cosine similarity. An operator
// overrides it per-store via WithFeedbackWeight, wired from
// search.feedback_weight in config. See Search.
const FeedbackWeight = 0.10

// DefaultSearchLimit is the limit search assumes when none is given.
const DefaultSearchLimit = 5

// Option configures an optional parameter accepted by NewFileStore and
// NewMemStore.
type Option func(*options)

type options struct {
	feedbackWeight float64
}

func newOptions(opts []Option) options {
	o := options{feedbackWeight: FeedbackWeight}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithFeedbackWeight overrides the default reinforcement weight a
// store blends into Search's ranking, letting an operator tune
// search.feedback_weight without recompiling.
func WithFeedbackWeight(weight float64) Option {
	return func(o *options) { o.feedbackWeight = weight }
}

// Entry is the persisted unit: a stable id, its sparse vector, free-form
// metadata, a reinforcement score and a last-touched timestamp.
type Entry struct {
	ID        string         `json:"id"`
	Vector    sparse.Vector  `json:"vector"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Score     float64        `json:"score"`
	Timestamp int64          `json:"timestamp"`

	// Unknown preserves top-level JSON keys this version of vecfs does
	// not know about, so a rewrite never drops data written by a newer
	// or differently-configured instance.
	Unknown map[string]json.RawMessage `json:"-"`
}

// entryKnownFields lists the JSON keys Entry itself owns; anything else
// found on an object line is round-tripped via Unknown.
var entryKnownFields = map[string]bool{
	"id": true, "vector": true, "metadata": true, "score": true, "timestamp": true,
}

// entryAlias has Entry's known fields without its custom (Un)MarshalJSON,
// so those methods can delegate the part encoding/json already does well.
type entryAlias struct {
	ID        string         `json:"id"`
	Vector    sparse.Vector  `json:"vector"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Score     float64        `json:"score"`
	Timestamp int64          `json:"timestamp"`
}

// MarshalJSON emits the known fields plus any Unknown top-level keys
// carried over from a previous rewrite, satisfying the forward-
// compatibility requirement that unrecognised keys survive a rewrite.
func (e Entry) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(entryAlias{
		ID: e.ID, Vector: e.Vector, Metadata: e.Metadata, Score: e.Score, Timestamp: e.Timestamp,
	})
	if err != nil {
		return nil, err
	}
	if len(e.Unknown) == 0 {
		return known, nil
	}

	merged := make(map[string]json.RawMessage, len(e.Unknown)+5)
	for k, v := range e.Unknown {
		merged[k] = v
	}
	var knownMap map[string]json.RawMessage
	if err := json.Unmarshal(known, &knownMap); err != nil {
		return nil, err
	}
	for k, v := range knownMap {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// UnmarshalJSON decodes the known fields and stashes every other
// top-level key in Unknown.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var alias entryAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	e.ID, e.Vector, e.Metadata, e.Score, e.Timestamp = alias.ID, alias.Vector, alias.Metadata, alias.Score, alias.Timestamp

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for k := range entryKnownFields {
		delete(raw, k)
	}
	if len(raw) > 0 {
		e.Unknown = raw
	} else {
		e.Unknown = nil
	}
	return nil
}

// SearchHit augments an Entry with the similarity and rank score
// computed for one particular query. Callers that serialize a hit for
// a tool response use dispatch.Hit instead, since Entry's custom
// MarshalJSON would otherwise be promoted over SearchHit's own fields.
type SearchHit struct {
	Entry
	Similarity float64 `json:"similarity"`
	RankScore  float64 `json:"-"`
}

// Stats summarizes a store's contents for operator tooling.
type Stats struct {
	EntryCount  int            `json:"entry_count"`
	FileBytes   int64          `json:"file_bytes"`
	MetadataKey map[string]int `json:"metadata_keys"`
}

// Store is the Entry Store contract: create/upsert/delete plus ranked
// retrieval, single-writer, cache-coherent with the log on disk.
type Store interface {
	// StoreEntry inserts or updates entry. Callers that want to reset
	// reinforcement on re-assertion pass Score 0 explicitly; Timestamp
	// is always stamped to now regardless of what the caller set.
	// Returns true when the id was new, false when an existing entry
	// was replaced.
	StoreEntry(ctx context.Context, entry Entry) (inserted bool, err error)

	// Search ranks every cached entry against query by cosine
	// similarity blended with a bounded feedback boost, and returns the
	// top limit hits. A limit of 0 returns no hits.
	Search(ctx context.Context, query sparse.Vector, limit int) ([]SearchHit, error)

	// UpdateScore adds adjustment to the entry's score. found is false,
	// with no error, when id does not exist.
	UpdateScore(ctx context.Context, id string, adjustment float64) (found bool, err error)

	// Delete removes the entry with the given id. found is false, with
	// no error, when id does not exist.
	Delete(ctx context.Context, id string) (found bool, err error)

	// Get returns a single entry by id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Entry, error)

	// List returns entries in stable insertion order, starting after
	// cursor (the id of the last entry of the previous page, "" for the
	// first page). The returned cursor is "" when no more remain.
	List(ctx context.Context, cursor string, limit int) (entries []Entry, nextCursor string, err error)

	// Stats reports summary statistics about the store's contents.
	Stats(ctx context.Context) (*Stats, error)

	// Close releases any resources held by the store.
	Close() error
}
