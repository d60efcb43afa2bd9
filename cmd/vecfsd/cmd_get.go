package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vecfs-dev/vecfs/internal/store"
)

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [id]",
		Short: "Retrieve a single memory by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := newStore()
			defer func() { _ = st.Close() }()

			entry, err := st.Get(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("get: no such entry: %s", args[0])
				}
				return fmt.Errorf("get: %w", err)
			}

			out, err := json.MarshalIndent(entry, "", "  ")
			if err != nil {
				return fmt.Errorf("get: marshaling entry: %w", err)
			}
			fmt.Println(string(out))
			return nil
		},
	}
}
