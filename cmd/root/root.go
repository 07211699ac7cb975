// Package root contains the root command for the application
package root

import (
	"context"
	"fmt"
	"time"

	"fleetops/fleet-ledger/internal/config"
	"fleetops/fleet-ledger/internal/container"
	"fleetops/fleet-ledger/internal/logging"
	"fleetops/fleet-ledger/internal/models"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to all commands
type CommonFlags struct {
	DBPath    string
	LogLevel  string
	LogFormat string
}

var (
	// Log is the shared logger instance for commands
	Log logging.Logger = logging.NewLogrusAdapter("info", "text")

	// AppContainer is built before any subcommand runs and closed after it.
	AppContainer *container.Container

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "fleet-ledger",
		Short: "Categorize fleet statements and keep the ledger and recurring obligations in order.",
		Long: `fleet-ledger ingests card and bank statements (CSV, XLSX) and receipt images,
classifies every transaction against pinned rules and registered vehicles,
investors and consignment parties, and commits the reviewed rows to the ledger.
It also generates the monthly investor interest and consignment settlement lines.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to fleet-ledger!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPostRunE: closeContainer,
	}

	// SharedFlags holds the persistent flag values
	SharedFlags = CommonFlags{}
)

// initContainer refers back to Cmd, so the hook is assigned here rather than
// in the composite literal to avoid an initialization cycle.
func init() {
	Cmd.PersistentPreRunE = initContainer
}

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVar(&SharedFlags.DBPath, "db", "", "SQLite database path (overrides storage.path)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.LogLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	Cmd.PersistentFlags().StringVar(&SharedFlags.LogFormat, "log-format", "", "Log format: text or json")
}

// LoadConfig reads the configuration and applies flag overrides.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.InitializeConfig()
	if err != nil {
		return nil, err
	}
	if SharedFlags.DBPath != "" {
		cfg.Storage.Path = SharedFlags.DBPath
	}
	if SharedFlags.LogLevel != "" {
		cfg.Log.Level = SharedFlags.LogLevel
	}
	if SharedFlags.LogFormat != "" {
		cfg.Log.Format = SharedFlags.LogFormat
	}
	return cfg, nil
}

func initContainer(cmd *cobra.Command, args []string) error {
	if cmd == Cmd {
		return nil
	}

	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	Log = config.NewLoggerFromConfig(cfg)

	c, err := container.NewContainerWithLogger(Context(cmd), cfg, Log)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	AppContainer = c
	return nil
}

func closeContainer(cmd *cobra.Command, args []string) error {
	if AppContainer == nil {
		return nil
	}
	err := AppContainer.Close()
	AppContainer = nil
	return err
}

// MonthOrCurrent parses a YYYY-MM flag value; an empty value means the
// current month.
func MonthOrCurrent(value string) (models.Month, error) {
	if value == "" {
		return models.MonthOf(time.Now()), nil
	}
	return models.ParseMonth(value)
}

// Context returns the command's context, or a background context when
// the command is run outside Execute.
func Context(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// Container returns the initialized application container.
func Container() (*container.Container, error) {
	if AppContainer == nil {
		return nil, fmt.Errorf("container not initialized")
	}
	return AppContainer, nil
}
