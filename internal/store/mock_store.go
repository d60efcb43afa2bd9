package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vecfs-dev/vecfs/internal/sparse"
)

// MemStore is an in-memory Store implementation, used by tests that
// want Store's exact ranking and upsert semantics without touching
// disk.
type MemStore struct {
	mu             sync.RWMutex
	entries        map[string]*Entry
	feedbackWeight float64
}

// NewMemStore creates an empty in-memory store.
func NewMemStore(opts ...Option) *MemStore {
	o := newOptions(opts)
	return &MemStore{entries: make(map[string]*Entry), feedbackWeight: o.feedbackWeight}
}

// StoreEntry implements Store.
func (m *MemStore) StoreEntry(_ context.Context, entry Entry) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry.Metadata = copyMetadata(entry.Metadata)
	entry.Timestamp = time.Now().UnixMilli()

	_, existed := m.entries[entry.ID]
	m.entries[entry.ID] = &entry
	return !existed, nil
}

// Search implements Store.
func (m *MemStore) Search(_ context.Context, query sparse.Vector, limit int) ([]SearchHit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 {
		return nil, nil
	}

	queryNorm := sparse.Norm(query)
	hits := make([]SearchHit, 0, len(m.entries))
	for _, e := range m.entries {
		sim := sparse.Cosine(query, e.Vector, queryNorm)
		hits = append(hits, SearchHit{
			Entry:      *e,
			Similarity: sim,
			RankScore:  sim + feedbackBoost(e.Score, m.feedbackWeight),
		})
	}

	sortHits(hits)

	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// UpdateScore implements Store.
func (m *MemStore) UpdateScore(_ context.Context, id string, adjustment float64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return false, nil
	}
	e.Score += adjustment
	e.Timestamp = time.Now().UnixMilli()
	return true, nil
}

// Delete implements Store.
func (m *MemStore) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[id]; !ok {
		return false, nil
	}
	delete(m.entries, id)
	return true, nil
}

// Get implements Store.
func (m *MemStore) Get(_ context.Context, id string) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *e
	cp.Metadata = copyMetadata(e.Metadata)
	return &cp, nil
}

// List implements Store, except for ordering: MemStore keeps no
// insertion order, so entries are listed in ascending id order.
func (m *MemStore) List(_ context.Context, cursor string, limit int) ([]Entry, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.entries))
	for id := range m.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	start := 0
	if cursor != "" {
		idx := sort.SearchStrings(ids, cursor)
		if idx == len(ids) || ids[idx] != cursor {
			return nil, "", nil
		}
		start = idx + 1
	}
	if start >= len(ids) {
		return nil, "", nil
	}

	end := len(ids)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	out := make([]Entry, 0, end-start)
	for _, id := range ids[start:end] {
		out = append(out, *m.entries[id])
	}

	var next string
	if end < len(ids) {
		next = out[len(out)-1].ID
	}
	return out, next, nil
}

// Stats implements Store.
func (m *MemStore) Stats(_ context.Context) (*Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st := &Stats{EntryCount: len(m.entries), MetadataKey: make(map[string]int)}
	for _, e := range m.entries {
		for k := range e.Metadata {
			st.MetadataKey[k]++
		}
	}
	return st, nil
}

// Close implements Store.
func (m *MemStore) Close() error {
	return nil
}

func copyMetadata(meta map[string]any) map[string]any {
	if len(meta) == 0 {
		return meta
	}
	out := make(map[string]any, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}
