package main

import (
	"fmt"
	"os"
	"strings"

	"fleetops/fleet-ledger/cmd/entities"
	"fleetops/fleet-ledger/cmd/ingest"
	"fleetops/fleet-ledger/cmd/ledger"
	"fleetops/fleet-ledger/cmd/root"
	"fleetops/fleet-ledger/cmd/rules"
	"fleetops/fleet-ledger/cmd/schedule"
	"fleetops/fleet-ledger/internal/config"
	"fleetops/fleet-ledger/internal/logging"

	"github.com/sirupsen/logrus"
)

func init() {
	// 1. Load environment variables silently first (no logging yet)
	config.LoadEnv(nil)

	// 2. Logging before the configuration is read uses the env level
	root.Log = logging.NewLogrusAdapter(logLevelFromEnv().String(), "text")

	// 3. Initialize root command and subcommands
	root.Init()
	root.Cmd.AddCommand(ingest.Cmd)
	root.Cmd.AddCommand(rules.Cmd)
	root.Cmd.AddCommand(entities.Cmd)
	root.Cmd.AddCommand(schedule.Cmd)
	root.Cmd.AddCommand(ledger.Cmd)
}

// logLevelFromEnv reads FLEET_LOG_LEVEL, then LOG_LEVEL, defaulting to info.
func logLevelFromEnv() logrus.Level {
	levelStr := config.GetEnv("FLEET_LOG_LEVEL", os.Getenv("LOG_LEVEL"))
	level, err := logrus.ParseLevel(strings.ToLower(levelStr))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	return level
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
