package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vecfs-dev/vecfs/internal/dispatch"
)

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Permanently remove a memory by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			d := newDispatcher(logger)
			defer func() { _ = d.Store.Close() }()

			msg, err := d.Delete(cmd.Context(), &dispatch.DeleteRequest{ID: args[0]})
			if err != nil {
				return describeDispatchError(err)
			}
			fmt.Println(msg)
			return nil
		},
	}
}
