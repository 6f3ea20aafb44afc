package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nanhai/arena/config"
	"github.com/nanhai/arena/errors"
)

// ConfigCmd shows and updates arena configuration
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
	Long: `config — Inspect and update arena configuration

Examples:
  arena config show                        # Show effective configuration
  arena config set-token <token>           # Store the build API token
  arena config set-base-url <url>          # Point at a different build API`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

var configSetTokenCmd = &cobra.Command{
	Use:   "set-token <token>",
	Short: "Store the build API private token",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigSetToken,
}

var configSetBaseURLCmd = &cobra.Command{
	Use:   "set-base-url <url>",
	Short: "Store the build API base URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigSetBaseURL,
}

func init() {
	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configSetTokenCmd)
	ConfigCmd.AddCommand(configSetBaseURLCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	fmt.Printf("Server\n")
	fmt.Printf("  port:                    %d\n", cfg.Server.Port)
	fmt.Printf("  allowed_origins:         %v\n", cfg.Server.AllowedOrigins)
	fmt.Printf("  trigger_rate_per_minute: %d\n", cfg.Server.TriggerRatePerMinute)
	fmt.Printf("  trigger_burst:           %d\n", cfg.Server.TriggerBurst)
	fmt.Printf("Database\n")
	fmt.Printf("  path:                    %s\n", cfg.Database.Path)
	fmt.Printf("Build API\n")
	fmt.Printf("  base_url:                %s\n", cfg.BuildAPI.BaseURL)
	fmt.Printf("  report_base_url:         %s\n", cfg.BuildAPI.ReportBaseURL)
	fmt.Printf("  timeout_seconds:         %d\n", cfg.BuildAPI.TimeoutSeconds)
	fmt.Printf("  insecure_skip_verify:    %v\n", cfg.BuildAPI.InsecureSkipVerify)
	fmt.Printf("  default_user_id:         %d\n", cfg.BuildAPI.DefaultUserID)
	fmt.Printf("  private_token:           %s\n", maskToken(cfg.BuildAPI.PrivateToken))

	return nil
}

func runConfigSetToken(cmd *cobra.Command, args []string) error {
	path, err := writableConfigPath()
	if err != nil {
		return err
	}
	if err := config.UpdateBuildAPIToken(path, args[0]); err != nil {
		return errors.Wrap(err, "failed to store token")
	}
	fmt.Printf("Token stored in %s\n", path)
	return nil
}

func runConfigSetBaseURL(cmd *cobra.Command, args []string) error {
	path, err := writableConfigPath()
	if err != nil {
		return err
	}
	if err := config.UpdateBuildAPIBaseURL(path, args[0]); err != nil {
		return errors.Wrap(err, "failed to store base url")
	}
	fmt.Printf("Base URL stored in %s\n", path)
	return nil
}

func writableConfigPath() (string, error) {
	if path := config.ProjectConfigPath(); path != "" {
		return path, nil
	}
	return "", errors.New("no arena.toml found; create one in the project root first")
}

// maskToken hides all but the last four characters
func maskToken(token string) string {
	if token == "" {
		return "(not set)"
	}
	if len(token) <= 4 {
		return "****"
	}
	return "****" + token[len(token)-4:]
}
