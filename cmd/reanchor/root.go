package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/reanchor/internal/config"
	"github.com/jackzampolin/reanchor/version"
)

var (
	cfgFile  string
	logLevel string

	cfgManager *config.Manager
)

var rootCmd = &cobra.Command{
	Use:   "reanchor",
	Short: "Transfer text-anchored PDF annotations between document revisions",
	Long: `Reanchor relocates highlights, underlines, squiggly marks and their reply
notes from one revision of a PDF to a later revision whose text has
reflowed.

Each annotation's text is re-found in the new revision using a tiered
search (exact near the original page, exact anywhere, then fuzzy with a
bounded edit distance), and equivalent markup is created at the new
location. Matches that land too many pages away are rejected rather than
guessed at.`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.reanchor/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "info", "log level: debug, info, warn or error",
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(logLevel)); err != nil {
			return fmt.Errorf("invalid log level %q: %w", logLevel, err)
		}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: lvl,
		}))
		slog.SetDefault(logger)

		m, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfgManager = m
		return nil
	}

	rootCmd.AddCommand(transferCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
