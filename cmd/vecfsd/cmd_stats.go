package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vecfs-dev/vecfs/internal/metrics"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show store contents and runtime operation counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			st := newStore()
			defer func() { _ = st.Close() }()

			stats, err := st.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("stats: %w", err)
			}

			fmt.Printf("Entries:    %d\n", stats.EntryCount)
			fmt.Printf("File bytes: %d\n", stats.FileBytes)
			if len(stats.MetadataKey) > 0 {
				fmt.Println("\nMetadata keys:")
				for k, c := range stats.MetadataKey {
					fmt.Printf("  %-20s %d\n", k, c)
				}
			}

			fmt.Println("\nRuntime metrics (since process start):")
			fmt.Printf("  %-20s %d\n", "search_total", metrics.SearchTotal.Value())
			fmt.Printf("  %-20s %d\n", "memorize_total", metrics.MemorizeTotal.Value())
			fmt.Printf("  %-20s %d\n", "feedback_total", metrics.FeedbackTotal.Value())
			fmt.Printf("  %-20s %d\n", "delete_total", metrics.DeleteTotal.Value())
			fmt.Printf("  %-20s %d\n", "not_found_total", metrics.NotFoundTotal.Value())
			fmt.Printf("  %-20s %d\n", "embedder_errors_total", metrics.EmbedderErrors.Value())

			return nil
		},
	}
}
