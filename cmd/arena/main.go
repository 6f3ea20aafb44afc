package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nanhai/arena/cmd/arena/commands"
	"github.com/nanhai/arena/logger"
)

var rootCmd = &cobra.Command{
	Use:   "arena",
	Short: "Arena - competition leaderboard backend",
	Long: `Arena - competition leaderboard backend.

Arena scores coding-competition submissions from CI build results and
serves a live dashboard: participants, submissions, group statistics
and a WebSocket refresh channel.

Available commands:
  serve   - Start the leaderboard server
  db      - Manage the arena database
  config  - Show or update configuration
  top     - Show the current top-3 board

Examples:
  arena serve                  # Start the server
  arena db migrate             # Apply pending migrations
  arena db stats               # Show database statistics
  arena top                    # Print the top-3 full-pass board`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Initialize(false); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.TopCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
