// Package cli defines the Cobra command tree for the gapfill CLI.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gapfill/gapfill/internal/app"
	"github.com/gapfill/gapfill/internal/config"
	"github.com/gapfill/gapfill/internal/logger"
)

var (
	// version, commit, date are set via -ldflags at build time.
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global flags.
var (
	configPath string
	logLevel   string
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "gapfill",
	Short: "Fill the free gaps of your day with the tasks that need them most",
	Long: `gapfill keeps a list of deadline tasks, routines and backlog items, scores
how much each one needs attention today, and packs the best combination into
the free gaps of your day.

Run 'gapfill init' to create a config and a sample day file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute(v, c, d string) {
	version, commit, date = v, c, d
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ~/.config/gapfill/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(
		newInitCmd(),
		newSetupCmd(),
		newAddCmd(),
		newListCmd(),
		newRecordCmd("accept", "Accept a suggestion for today", "accepted"),
		newRecordCmd("reject", "Reject a suggestion for today", "rejected"),
		newRecordCmd("log", "Log minutes worked on a task", "logged"),
		newRecordCmd("done", "Log a finished session and mark it complete", "completed"),
		newRmCmd(),
		newPlanCmd(),
		newFitCmd(),
		newHistoryCmd(),
		newStatusCmd(),
		newWatchCmd(),
		newMCPCmd(),
		newVersionCmd(),
	)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("gapfill %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}

// loadConfig reads --config, or the default config path.
func loadConfig() (config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load()
}

func newLogger(cfg config.Config) (zerolog.Logger, error) {
	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	return logger.New("gapfill", logger.Options{Level: level, Format: cfg.Log.Format})
}

// openApp loads the config and opens the task database. Callers must Close
// the returned App.
func openApp(opts ...app.Option) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	return app.Open(cfg, log, opts...)
}

// dayPath resolves the day file: the flag if set, else data.day_file, which
// is relative to the data directory unless absolute.
func dayPath(cfg config.Config, flag string) (string, error) {
	p := flag
	if p == "" {
		p = cfg.Data.DayFile
	}
	if p == "" {
		return "", fmt.Errorf("no day file; pass --day or set data.day_file")
	}
	if flag != "" || filepath.IsAbs(p) {
		return p, nil
	}
	dir, err := cfg.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, p), nil
}
