// Package cmd provides the CLI commands for AirDocs.
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/airdocs-mcp/airdocs/internal/config"
	airerrors "github.com/airdocs-mcp/airdocs/internal/errors"
	"github.com/airdocs-mcp/airdocs/internal/logging"
	"github.com/airdocs-mcp/airdocs/internal/store"
	"github.com/airdocs-mcp/airdocs/pkg/version"
)

var (
	cfgFile   string
	dbPath    string
	backend   string
	debugMode bool

	loggingCleanup func()
)

// NewRootCmd creates the root command for the airdocs CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "airdocs",
		Short: "Apache Airflow documentation search and MCP server",
		Long: `AirDocs indexes Apache Airflow documentation (core docs and the
Python client docs) into a local full-text index and serves ranked
search over it, both on the command line and as an MCP server for AI
assistants.

Run 'airdocs index' once to build the index, then 'airdocs search' or
'airdocs serve'.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("airdocs version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: "+config.UserConfigPath()+")")
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (default: "+config.DefaultDBPath()+")")
	cmd.PersistentFlags().StringVar(&backend, "backend", "", "Search backend: sqlite, bleve (default: from config)")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to "+logging.DefaultLogDir())

	cmd.PersistentPreRunE = setupLogging
	cmd.PersistentPostRun = func(*cobra.Command, []string) {
		if loggingCleanup != nil {
			loggingCleanup()
		}
	}

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newReadCmd())
	cmd.AddCommand(newSectionsCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newClearCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the CLI.
func Execute() error {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		printError(cmd, err)
		return err
	}
	return nil
}

// setupLogging configures slog for the process. Debug mode raises the
// level and keeps the rotating file log in the default location.
func setupLogging(_ *cobra.Command, _ []string) error {
	cleanup, err := logging.SetupDefault(debugMode)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	loggingCleanup = cleanup
	if debugMode {
		slog.Debug("debug logging enabled",
			slog.String("log_file", logging.DefaultLogPath()),
			slog.String("version", version.Version))
	}
	return nil
}

// loadConfig builds the effective configuration with CLI flag
// overrides applied on top.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if backend != "" {
		cfg.Search.Backend = backend
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// storeOptions maps config to store snippet options.
func storeOptions(cfg *config.Config) store.Options {
	return store.Options{
		MarkStart: cfg.Search.MarkStart,
		MarkEnd:   cfg.Search.MarkEnd,
	}
}

// openStore opens the document store, creating it if needed.
func openStore(cfg *config.Config) (store.Store, error) {
	return store.Open(cfg.DBPath, cfg.Search.Backend, storeOptions(cfg))
}

// openExistingStore opens the document store only if an index has been
// built; the read-side commands refuse to silently create an empty one.
func openExistingStore(cfg *config.Config) (store.Store, error) {
	if !store.Exists(cfg.DBPath) {
		return nil, airerrors.New(airerrors.ErrCodeStorageUnavailable,
			fmt.Sprintf("no documentation index found at %s", cfg.DBPath), nil).
			WithSuggestion("Run 'airdocs index' to build the index.")
	}
	return openStore(cfg)
}

// lockDir returns the directory used for the cross-process index lock.
func lockDir(cfg *config.Config) string {
	return filepath.Dir(cfg.DBPath)
}

// printError writes an error with its suggestion when one is attached.
func printError(cmd *cobra.Command, err error) {
	out := cmd.ErrOrStderr()
	fmt.Fprintf(out, "Error: %s\n", err)
	if suggestion := suggestionOf(err); suggestion != "" {
		fmt.Fprintf(out, "  %s\n", suggestion)
	}
}

func suggestionOf(err error) string {
	var appErr *airerrors.Error
	if errors.As(err, &appErr) {
		return appErr.Suggestion
	}
	return ""
}
