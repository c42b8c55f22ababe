package cli

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Game session commands",
	}

	cmd.AddCommand(newSessionNextCmd())

	return cmd
}

func newSessionNextCmd() *cobra.Command {
	var order string

	cmd := &cobra.Command{
		Use:   "next <id>",
		Short: "Show the participant's next game",
		Long: `Show the participant's next unplayed game.

Pass the order from a previous call with --order to keep the sequence
stable across calls.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := participantPath(args[0], "/session")
			if order != "" {
				path += "?order=" + url.QueryEscape(order)
			}
			var result SessionResult

			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&order, "order", "", "Comma separated game order from a previous session call")

	return cmd
}

func newResultCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "result",
		Short: "Result commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "submit <id> <game> <score>",
		Short: "Submit a finished game's score",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			score, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("score must be a whole number: %s", args[2])
			}

			req := map[string]any{
				"participant_id": args[0],
				"game":           args[1],
				"score":          score,
			}
			var result SubmitResult

			if err := client.Post("/api/v1/results", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	})

	return cmd
}
