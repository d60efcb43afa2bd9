package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vecfs-dev/vecfs/internal/dispatch"
)

func feedbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback [id] [adjustment]",
		Short: "Adjust the reinforcement score of a memory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			d := newDispatcher(logger)
			defer func() { _ = d.Store.Close() }()

			var adjustment float64
			if _, err := fmt.Sscanf(args[1], "%g", &adjustment); err != nil {
				return fmt.Errorf("feedback: adjustment must be a number: %w", err)
			}

			msg, err := d.Feedback(cmd.Context(), &dispatch.FeedbackRequest{ID: args[0], ScoreAdjustment: adjustment})
			if err != nil {
				return describeDispatchError(err)
			}
			fmt.Println(msg)
			return nil
		},
	}
	return cmd
}
