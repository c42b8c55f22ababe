package cli

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

var errNoAdminSecret = errors.New("admin secret required (--admin-secret or EVENTCTL_ADMIN_SECRET)")

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin commands (need the admin secret)",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfg.AdminSecret == "" {
				return errNoAdminSecret
			}
			client = NewClient(cfg.ServerURL, cfg.AdminSecret)
			if cfg.Verbose {
				client.SetTrace(cmd.ErrOrStderr())
			}
			return nil
		},
	}

	cmd.AddCommand(newAdminResetCmd())
	cmd.AddCommand(newAdminTeamSetCmd())
	cmd.AddCommand(newAdminTeamDeleteCmd())

	return cmd
}

func teamPath(name string) string {
	return "/api/v1/admin/teams/" + url.PathEscape(name)
}

func newAdminResetCmd() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every recorded result",
		Long: `Delete every recorded result. Participants and teams are kept.

This cannot be undone, so --yes is required.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return fmt.Errorf("refusing to reset without --yes")
			}
			var result ResetResult

			if err := client.Post("/api/v1/admin/results/reset", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirm, "yes", false, "Confirm the reset")

	return cmd
}

func newAdminTeamSetCmd() *cobra.Command {
	var mediaPath string
	var rename string
	var sortOrder int

	cmd := &cobra.Command{
		Use:   "team-set <name>",
		Short: "Create or update a team",
		Long: `Create or update a team.

Without --sort-order an existing team keeps its position and a new team is
listed last. --rename moves every participant registered to the team.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"media_path": mediaPath,
			}
			if rename != "" {
				req["name"] = rename
			}
			if cmd.Flags().Changed("sort-order") {
				req["sort_order"] = sortOrder
			}
			var result Team

			if err := client.Put(teamPath(args[0]), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&mediaPath, "media", "", "Path of the team's media asset")
	cmd.Flags().IntVar(&sortOrder, "sort-order", 0, "Position in team listings")
	cmd.Flags().StringVar(&rename, "rename", "", "New name for the team")

	return cmd
}

func newAdminTeamDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "team-delete <name>",
		Short: "Delete a team",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete(teamPath(args[0])); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.PrintMessage(fmt.Sprintf("Deleted team %s", args[0]))
			return nil
		},
	}
}
