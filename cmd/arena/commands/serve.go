package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/nanhai/arena/config"
	"github.com/nanhai/arena/db"
	"github.com/nanhai/arena/errors"
	"github.com/nanhai/arena/logger"
	"github.com/nanhai/arena/server"
)

// ServeCmd starts the leaderboard server
var ServeCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"server"},
	Short:   "Start the leaderboard server",
	Long: `Launch the arena server: REST API, build-trigger webhook and the
WebSocket refresh channel for live dashboards.`,
	RunE: runServe,
}

var (
	servePort       int
	serveDBPath     string
	serveConfigPath string
)

func init() {
	ServeCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (overrides config)")
	ServeCmd.Flags().StringVar(&serveDBPath, "db-path", "", "Database path (overrides config)")
	ServeCmd.Flags().StringVar(&serveConfigPath, "config", "", "Config file path (overrides discovery)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	port := cfg.Server.Port
	if servePort != 0 {
		port = servePort
	}
	if port == 0 {
		port = config.DefaultServerPort
	}

	dbPath := cfg.Database.Path
	if serveDBPath != "" {
		dbPath = serveDBPath
	}

	database, err := db.OpenWithMigrations(dbPath, logger.Logger)
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}
	defer database.Close()

	printStartupBanner(port, dbPath)

	srv := server.New(database, cfg, logger.Logger)

	// Hot-reload the build API settings when the config file changes
	stopWatcher := watchConfig(srv)
	defer stopWatcher()

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(port)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return errors.Wrap(err, "server failed")
	case <-sigChan:
		pterm.Info.Println("\nShutting down gracefully (press Ctrl+C again to force)...")

		shutdownDone := make(chan error, 1)
		go func() {
			shutdownDone <- srv.Stop()
		}()

		select {
		case err := <-shutdownDone:
			if err != nil {
				return errors.Wrap(err, "shutdown error")
			}
			pterm.Success.Println("Server stopped cleanly")
			return nil
		case <-sigChan:
			pterm.Warning.Println("\nForce shutdown - exiting immediately")
			os.Exit(1)
			return nil // unreachable
		}
	}
}

// loadConfig honors an explicit --config path, falling back to the
// layered discovery in the config package.
func loadConfig() (*config.Config, error) {
	if serveConfigPath != "" {
		return config.LoadFromFile(serveConfigPath)
	}
	return config.Load()
}

// watchConfig starts a file watcher that pushes reloaded build API
// settings into the server's client. Returns a stop function; a missing
// config file means nothing to watch.
func watchConfig(srv *server.ArenaServer) func() {
	path := serveConfigPath
	if path == "" {
		path = config.ProjectConfigPath()
	}
	if path == "" {
		return func() {}
	}

	watcher, err := config.NewWatcher(path)
	if err != nil {
		logger.Warnw("Config watcher unavailable", "path", path, "error", err)
		return func() {}
	}

	watcher.OnReload(func(cfg *config.Config) error {
		srv.BuildClient().UpdateConfig(cfg.BuildAPI)
		logger.Infow("Build API settings reloaded", "path", path)
		return nil
	})
	watcher.Start()
	config.SetGlobalWatcher(watcher)

	logger.Infow("Watching config for changes", "path", path)
	return func() {
		if err := watcher.Stop(); err != nil {
			logger.Warnw("Failed to stop config watcher", "error", err)
		}
	}
}
