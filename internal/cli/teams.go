package cli

import (
	"github.com/spf13/cobra"
)

func newTeamsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teams",
		Short: "Team roster commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List configured teams",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result TeamsResult

			if err := client.Get("/api/v1/teams", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	})

	return cmd
}
