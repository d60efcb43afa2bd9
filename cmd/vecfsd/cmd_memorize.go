package main

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vecfs-dev/vecfs/internal/dispatch"
)

func memorizeCmd() *cobra.Command {
	var (
		id          string
		metadataRaw string
	)

	cmd := &cobra.Command{
		Use:   "memorize [text]",
		Short: "Store a piece of text as a memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			d := newDispatcher(logger)
			defer func() { _ = d.Store.Close() }()

			if id == "" {
				id = uuid.New().String()
			}

			var metadata map[string]any
			if metadataRaw != "" {
				if err := json.Unmarshal([]byte(metadataRaw), &metadata); err != nil {
					return fmt.Errorf("memorize: --metadata must be a JSON object: %w", err)
				}
			}

			msg, err := d.Memorize(cmd.Context(), &dispatch.MemorizeRequest{
				ID:       id,
				Text:     args[0],
				Metadata: metadata,
			})
			if err != nil {
				return describeDispatchError(err)
			}
			fmt.Println(msg)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "stable identifier (default: a generated UUID)")
	cmd.Flags().StringVar(&metadataRaw, "metadata", "", "JSON object of extra metadata to store")
	return cmd
}
