package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func listCmd() *cobra.Command {
	var (
		cursor string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored memories in insertion order",
		RunE: func(cmd *cobra.Command, args []string) error {
			st := newStore()
			defer func() { _ = st.Close() }()

			entries, next, err := st.List(cmd.Context(), cursor, limit)
			if err != nil {
				return fmt.Errorf("list: %w", err)
			}

			for _, e := range entries {
				fmt.Printf("%s\t%s\t%.2f\n", e.ID, truncate(textOf(e.Metadata), 80), e.Score)
			}
			if next != "" {
				fmt.Printf("\n--cursor %s for more\n", next)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cursor, "cursor", "", "resume after this id")
	cmd.Flags().IntVar(&limit, "limit", 50, "max entries (0 = all remaining)")
	return cmd
}

func textOf(metadata map[string]any) string {
	if s, ok := metadata["text"].(string); ok {
		return s
	}
	return ""
}

func truncate(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
