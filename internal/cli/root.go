package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "eventctl",
		Short: "CLI tool for the event games API",
		Long: `eventctl is a CLI tool for the event games JSON API.

It registers participants, walks them through their game session, submits
results, reads the leaderboards and streams live leaderboard updates.
Admin commands need the admin secret.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			client = NewClient(cfg.ServerURL, cfg.AdminSecret)
			if cfg.Verbose {
				client.SetTrace(cmd.ErrOrStderr())
			}
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: EVENTCTL_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.AdminSecret, "admin-secret", cfg.AdminSecret, "Admin secret (env: EVENTCTL_ADMIN_SECRET)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newHealthCmd())
	rootCmd.AddCommand(newTeamsCmd())
	rootCmd.AddCommand(newParticipantCmd())
	rootCmd.AddCommand(newSessionCmd())
	rootCmd.AddCommand(newResultCmd())
	rootCmd.AddCommand(newLeaderboardCmd())
	rootCmd.AddCommand(newEventsCmd())
	rootCmd.AddCommand(newAdminCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
