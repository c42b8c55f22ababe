package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

func newParticipantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "participant",
		Short: "Participant commands",
	}

	cmd.AddCommand(newParticipantRegisterCmd())
	cmd.AddCommand(newParticipantGetCmd())
	cmd.AddCommand(newParticipantPlayedCmd())
	cmd.AddCommand(newParticipantResultsCmd())

	return cmd
}

func participantPath(id string, suffix string) string {
	return "/api/v1/participants/" + url.PathEscape(id) + suffix
}

func newParticipantRegisterCmd() *cobra.Command {
	var name, team, email string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new participant",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"display_name": name,
				"team":         team,
			}
			if email != "" {
				req["email"] = email
			}
			var result Participant

			if err := client.Post("/api/v1/participants", req, &result); err != nil {
				if IsCode(err, "INVALID_TEAM") {
					return withTeamHint(err)
				}
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&team, "team", "", "Team name (required)")
	cmd.Flags().StringVar(&email, "email", "", "Contact email")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("team")

	return cmd
}

func newParticipantGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a participant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Participant

			if err := client.Get(participantPath(args[0], ""), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newParticipantPlayedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "played <id>",
		Short: "List the games a participant has played",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result PlayedResult

			if err := client.Get(participantPath(args[0], "/played"), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newParticipantResultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "results <id>",
		Short: "List a participant's recorded results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result ResultsResult

			if err := client.Get(participantPath(args[0], "/results"), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

// withTeamHint adds the configured team names to an unknown team error
func withTeamHint(err error) error {
	var teams TeamsResult
	if client.Get("/api/v1/teams", &teams) != nil || len(teams.Teams) == 0 {
		return err
	}
	names := make([]string, len(teams.Teams))
	for i, t := range teams.Teams {
		names[i] = t.Name
	}
	return fmt.Errorf("%w; known teams: %s", err, strings.Join(names, ", "))
}
