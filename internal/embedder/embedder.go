// Package embedder converts text into sparse vectors for the store to
// index and search against.
package embedder

import (
	"context"
	"sync"

	"github.com/vecfs-dev/vecfs/internal/sparse"
)

// Mode distinguishes the two ways a text string is embedded: a search
// query, or a document being memorized. Some providers use different
// model prompts or prefixes for the two.
type Mode string

const (
	ModeQuery    Mode = "query"
	ModeDocument Mode = "document"
)

// Embedder converts text into a sparse vector. Implementations must be
// safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string, mode Mode) (sparse.Vector, error)
}

// Lazy wraps a factory that builds an Embedder on first use and caches
// the result, so a misconfigured or slow-to-initialise provider only
// pays its setup cost once, on the first call that actually needs it.
type Lazy struct {
	once sync.Once
	new  func() (Embedder, error)
	val  Embedder
	err  error
}

// NewLazy returns a Lazy that calls newEmbedder at most once, the
// first time Get is called.
func NewLazy(newEmbedder func() (Embedder, error)) *Lazy {
	return &Lazy{new: newEmbedder}
}

// Get returns the underlying Embedder, initialising it on the first
// call. Every call after the first returns the cached value or error
// without invoking the factory again.
func (l *Lazy) Get() (Embedder, error) {
	l.once.Do(func() {
		l.val, l.err = l.new()
	})
	return l.val, l.err
}

// Embed implements Embedder by resolving the underlying embedder on
// first use — the once-cell the Tool Dispatcher relies on to defer a
// possibly slow or misconfigured provider's setup until a caller
// actually needs it — and delegating every call to it afterward.
func (l *Lazy) Embed(ctx context.Context, text string, mode Mode) (sparse.Vector, error) {
	e, err := l.Get()
	if err != nil {
		return nil, err
	}
	return e.Embed(ctx, text, mode)
}
