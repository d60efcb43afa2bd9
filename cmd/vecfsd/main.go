// Command vecfsd is both the vecfs operator CLI and the long-running
// server process: `vecfsd serve` speaks MCP over stdio, `vecfsd api`
// speaks plain HTTP/JSON, and the remaining subcommands let an
// operator drive the four memory tools directly from a shell.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vecfs-dev/vecfs/internal/config"
	"github.com/vecfs-dev/vecfs/internal/dispatch"
	"github.com/vecfs-dev/vecfs/internal/embedder"
	"github.com/vecfs-dev/vecfs/internal/store"
)

var cfg *config.Config

func main() {
	rootCmd := &cobra.Command{
		Use:   "vecfsd",
		Short: "vecfs — a local-first long-term memory store for AI agents",
		Long:  "vecfs maps short pieces of text to sparse numeric fingerprints, persists them to an append-friendly log, and answers semantic-similarity queries augmented by reinforcement feedback.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
	}

	rootCmd.AddCommand(
		searchCmd(),
		memorizeCmd(),
		feedbackCmd(),
		deleteCmd(),
		getCmd(),
		listCmd(),
		statsCmd(),
		importCmd(),
		serveCmd(),
		apiCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if cfg != nil && cfg.Logging.Level == "debug" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newEmbedder returns the configured Embedder, or nil when no provider
// is configured — the dispatcher treats a nil Embedder as "absent" per
// spec.md §4.4 and fails search/memorize fast while leaving
// feedback/delete usable.
//
// Construction itself is deferred behind a Lazy once-cell (spec.md §9:
// "owned by the Tool Dispatcher; the first successful initialisation
// publishes the embedder handle atomically"), so a long-running serve
// or api process never pays a provider's setup cost — or surfaces a
// misconfiguration, like an openai provider missing an API key — until
// the first search or memorize actually needs it.
func newEmbedder(logger *slog.Logger) embedder.Embedder {
	if cfg.Embedder.Provider == "" || cfg.Embedder.Provider == "none" {
		return nil
	}
	return embedder.NewLazy(func() (embedder.Embedder, error) {
		switch cfg.Embedder.Provider {
		case "ollama":
			return embedder.NewOllamaEmbedder(
				cfg.Embedder.BaseURL,
				cfg.Embedder.Model,
				cfg.Embedder.Threshold,
				cfg.Embedder.Normalise,
				logger,
			), nil
		case "openai":
			if cfg.Embedder.APIKey == "" {
				return nil, fmt.Errorf("embedder: openai provider requires embedder.api_key (or VECFS_EMBEDDER_API_KEY)")
			}
			return embedder.NewOpenAIEmbedder(
				cfg.Embedder.APIKey,
				cfg.Embedder.Model,
				cfg.Embedder.Threshold,
				cfg.Embedder.Normalise,
				logger,
			), nil
		default:
			return nil, fmt.Errorf("embedder: unknown provider %q", cfg.Embedder.Provider)
		}
	})
}

func newStore() store.Store {
	return store.NewFileStore(cfg.Storage.File, store.WithFeedbackWeight(cfg.Search.FeedbackWeight))
}

func newDispatcher(logger *slog.Logger) *dispatch.Dispatcher {
	return &dispatch.Dispatcher{
		Store:              newStore(),
		Embedder:           newEmbedder(logger),
		Logger:             logger,
		DefaultSearchLimit: cfg.Search.DefaultLimit,
	}
}
