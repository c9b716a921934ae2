// Package main is the entry point for the trip planner server.
//
// The main package stays minimal: it parses flags, loads configuration,
// builds the logger and hands everything to internal/server. All behaviour
// lives in the imported packages.
//
//	trip-planner                 # same as "serve"
//	trip-planner serve --config config.yaml
//	trip-planner migrate         # create or upgrade the schema, then exit
//	trip-planner version
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sakif/trip-planner/internal/config"
	sqliteRepo "github.com/sakif/trip-planner/internal/repository/sqlite"
	"github.com/sakif/trip-planner/internal/server"
)

// version is overridden at build time:
//
//	go build -ldflags "-X main.version=v1.2.0" ./cmd/server
var version = "dev"

// configFile is set by the --config flag.
var configFile string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "trip-planner",
	Short:         "Trip planner API server",
	Long:          `Trip planner serves a JSON API for planning trips, itineraries and packing lists and sharing them with other users.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the database schema and exit",
	RunE:  runMigrate,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "trip-planner %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (YAML); TRIP_* environment variables override it")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(versionCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel)

	if err := ensureDBDir(cfg.DBPath); err != nil {
		return err
	}

	srv, err := server.New(cfg, logger, nil)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	// Start blocks until the server is shut down (Ctrl+C or SIGTERM).
	return srv.Start()
}

// runMigrate opens the database, which applies every migration, and closes it.
func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel)

	if err := ensureDBDir(cfg.DBPath); err != nil {
		return err
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("migrating %s: %w", cfg.DBPath, err)
	}
	defer db.Close()

	logger.Info("database migrated", slog.String("database", cfg.DBPath))
	return nil
}

// newLogger builds the process-wide structured logger. Unknown levels fall
// back to info.
//
// Log levels (from least to most severe): Debug → Info → Warn → Error
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}

// ensureDBDir creates the database's parent directory, like `mkdir -p`.
func ensureDBDir(dbPath string) error {
	if dbPath == ":memory:" {
		return nil
	}
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating database directory %s: %w", dir, err)
	}
	return nil
}
