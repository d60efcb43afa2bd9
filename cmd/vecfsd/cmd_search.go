package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vecfs-dev/vecfs/internal/dispatch"
)

func searchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search stored memories by semantic similarity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			d := newDispatcher(logger)
			defer func() { _ = d.Store.Close() }()

			hits, err := d.Search(cmd.Context(), &dispatch.SearchRequest{Query: args[0], Limit: limit})
			if err != nil {
				return describeDispatchError(err)
			}

			if len(hits) == 0 {
				fmt.Println("No results found.")
				return nil
			}
			out, err := json.MarshalIndent(hits, "", "  ")
			if err != nil {
				return fmt.Errorf("search: marshaling results: %w", err)
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "max results (default: configured search.default_limit)")
	return cmd
}
