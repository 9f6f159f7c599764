package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"shortlink/internal/config"
)

// Cfg holds the loaded configuration, available to every subcommand.
var Cfg *config.Config

// RootCmd is the base command. Subcommands (run-server, create, stats,
// migrate) register themselves from their own init functions, which keeps
// the command packages decoupled from each other.
var RootCmd = &cobra.Command{
	Use:   "shortlink",
	Short: "A short-link service with click analytics",
	Long: `shortlink maps short aliases to long URLs, records click events
asynchronously and serves multi-dimensional analytics rollups
(per alias, per topic, per owner).`,
}

// Execute runs the CLI. Called from main.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

// initConfig loads the configuration before any command runs.
func initConfig() {
	var err error
	Cfg, err = config.LoadConfig()
	if err != nil {
		log.Warn().Err(err).Msg("problem loading configuration, using defaults")
	}
}
