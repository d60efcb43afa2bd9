package embedder

import (
	"context"
	"errors"

	"github.com/vecfs-dev/vecfs/internal/sparse"
)

// ErrNoopEmbedder is returned by NoopEmbedder.Embed. It exists so tests
// that need a non-nil Embedder with no network access can exercise the
// EmbedderFailure path deliberately.
var ErrNoopEmbedder = errors.New("embedder: noop embedder cannot produce vectors")

// NoopEmbedder always fails. It is not used in production wiring — a
// genuinely unconfigured embedder is represented by a nil Embedder on
// the dispatcher, which fails fast with EmbedderUnavailable instead of
// reaching this far.
type NoopEmbedder struct{}

func (NoopEmbedder) Embed(context.Context, string, Mode) (sparse.Vector, error) {
	return nil, ErrNoopEmbedder
}
