package cli

import (
	"net/url"

	"github.com/spf13/cobra"
)

func newLeaderboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Leaderboard commands",
	}

	cmd.AddCommand(newLeaderboardPlayersCmd())
	cmd.AddCommand(newLeaderboardTeamsCmd())
	cmd.AddCommand(newLeaderboardTotalsCmd())

	return cmd
}

func newLeaderboardPlayersCmd() *cobra.Command {
	var game string

	cmd := &cobra.Command{
		Use:   "players",
		Short: "Show the best players for a game",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result PlayerLeaderboard

			if err := client.Get("/api/v1/leaderboard/players?game="+url.QueryEscape(game), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&game, "game", "", "Game kind: truth_or_myth, reaction, memo (required)")
	_ = cmd.MarkFlagRequired("game")

	return cmd
}

func newLeaderboardTeamsCmd() *cobra.Command {
	var game string

	cmd := &cobra.Command{
		Use:   "teams",
		Short: "Show the best team results for a game",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result TeamLeaderboard

			if err := client.Get("/api/v1/leaderboard/teams?game="+url.QueryEscape(game), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&game, "game", "", "Game kind: truth_or_myth, reaction, memo (required)")
	_ = cmd.MarkFlagRequired("game")

	return cmd
}

func newLeaderboardTotalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "totals",
		Short: "Show the overall team standings",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result TeamTotals

			if err := client.Get("/api/v1/leaderboard/totals", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}
