// Package cli implements the ledgerbox command-line interface.
//
// This package uses global variables to manage CLI state, which is the standard
// pattern for Cobra-based CLI applications. The globals are initialized in
// PersistentPreRunE and cleaned up in PersistentPostRun.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/mrz1836/ledgerbox/internal/config"
	"github.com/mrz1836/ledgerbox/internal/fileutil"
	"github.com/mrz1836/ledgerbox/internal/metrics"
	"github.com/mrz1836/ledgerbox/internal/output"
	ledgererr "github.com/mrz1836/ledgerbox/pkg/errors"
)

var (
	// Global flags
	homeDir      string
	outputFormat string
	verbose      bool
	envFile      string
	metricsFile  string

	// Global state initialized in PersistentPreRunE
	cfg       *config.Config
	logger    *config.Logger
	formatter *output.Formatter
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ledgerbox",
	Short: "Back up and restore your ledger",
	Long: `ledgerbox exports every record of your bookkeeping ledger into a single
checksummed backup file, validates backup files, and imports them back.

Example:
  ledgerbox export --notes "before migration"
  ledgerbox validate ledgerbox-backup-20260314-092653.json
  ledgerbox import --input ./backup.json --dry-run`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := initGlobals(); err != nil {
			return err
		}
		SetCmdContext(cmd, NewCommandContext(cfg, logger, formatter))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, _ []string) {
		if cc := GetCmdContext(cmd); cc != nil {
			if err := cc.Close(); err != nil {
				logger.Error("closing resources: %v", err)
			}
		}
		writeMetrics()
		cleanup()
	},
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		if formatter != nil {
			_ = output.FormatError(os.Stderr, err, formatter.Format())
		} else {
			_ = output.FormatError(os.Stderr, err, output.FormatText)
		}
		return err
	}
	return nil
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	return ledgererr.ExitCode(err)
}

// initGlobals initializes global configuration, logger, and formatter.
func initGlobals() error {
	home := homeDir
	if home == "" {
		home = os.Getenv(config.EnvHome)
	}
	if home == "" {
		home = config.DefaultHome()
	}
	home, err := fileutil.ExpandHome(home)
	if err != nil {
		return err
	}

	// .env files only fill variables that are not already set.
	if err := loadEnvFiles(envFile, filepath.Join(home, ".env")); err != nil {
		return err
	}

	cfg, err = config.Load(config.Path(home))
	switch {
	case errors.Is(err, ledgererr.ErrConfigNotFound):
		cfg = config.DefaultsFor(home)
	case err != nil:
		return err
	}

	config.ApplyEnvironment(cfg)

	if homeDir != "" {
		cfg.Home = home
	}
	if verbose {
		cfg.Output.Verbose = true
		cfg.Logging.Level = "debug"
	}
	if outputFormat != "" && outputFormat != "auto" {
		cfg.Output.DefaultFormat = outputFormat
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logLevel := config.ParseLogLevel(cfg.Logging.Level)
	logger, err = config.NewLogger(logLevel, cfg.Logging.File)
	if err != nil {
		// Use null logger if we can't create the file
		logger = config.NullLogger()
	}

	explicitFormat := output.ParseFormat(cfg.Output.DefaultFormat)
	detectedFormat := output.DetectFormat(os.Stdout, explicitFormat)
	formatter = output.NewFormatter(detectedFormat, os.Stdout)

	return nil
}

// loadEnvFiles loads each existing file in order. An explicit file that is
// missing is an error; the default location is optional.
func loadEnvFiles(explicit, fallback string) error {
	if explicit != "" {
		if err := godotenv.Load(explicit); err != nil {
			return ledgererr.WithDetails(ledgererr.Wrap(err, "loading env file"),
				map[string]string{"path": explicit})
		}
	}
	if err := godotenv.Load(fallback); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return ledgererr.WithDetails(ledgererr.Wrap(err, "loading env file"),
			map[string]string{"path": fallback})
	}
	return nil
}

// writeMetrics dumps the process metrics in the Prometheus text format for
// the node exporter textfile collector.
func writeMetrics() {
	if metricsFile == "" {
		return
	}
	if err := prometheus.WriteToTextfile(metricsFile, metrics.Global.Registry()); err != nil && logger != nil {
		logger.Error("writing metrics to %s: %v", metricsFile, err)
	}
}

// cleanup releases resources.
func cleanup() {
	if logger != nil {
		_ = logger.Close()
	}
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "ledgerbox data directory (default: ~/.ledgerbox)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "auto", "output format: text, json, auto")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load environment variables from this file")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")
}
