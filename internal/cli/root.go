// Package cli implements the Vigil command-line interface.
//
// This package uses global variables to manage CLI state, which is the
// standard pattern for Cobra-based CLI applications. The globals are
// initialized in PersistentPreRunE and cleaned up in PersistentPostRun.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mrz1836/vigil/internal/config"
	"github.com/mrz1836/vigil/internal/output"
	verr "github.com/mrz1836/vigil/pkg/errors"
)

var (
	// Global flags
	homeDir      string
	outputFormat string
	verbose      bool

	// Global state initialized in PersistentPreRunE
	cfg       *config.Config
	logger    *config.Logger
	formatter *output.Formatter
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "vigil",
	Short: "Bitcoin SPV verification for custodial bridges",
	Long: `Vigil verifies Bitcoin-network facts without running a Bitcoin node:
address decoding and derivation, transaction parsing, and SPV proofs
(Merkle inclusion plus accumulated proof-of-work) evaluated against a
light-relay difficulty oracle.

Example:
  vigil address decode bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4
  vigil tx parse --tx tx.yaml
  vigil verify payment --address bc1q... --amount 100000 --tx tx.yaml --proof proof.yaml`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return initGlobals()
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
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
	return verr.ExitCode(err)
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

	configPath := config.Path(home)
	loaded, err := config.Load(configPath)
	if err != nil {
		// Missing config is fine; defaults apply.
		loaded = config.Defaults()
	}
	cfg = loaded
	cfg.Home = home
	config.ApplyEnvironment(cfg)

	level := config.ParseLogLevel(cfg.Logging.Level)
	if verbose {
		level = config.LogLevelDebug
	}
	logger, err = config.NewLogger(level, cfg.Logging.File)
	if err != nil {
		logger = config.NullLogger()
	}

	format := output.ParseFormat(outputFormat)
	if outputFormat == "" {
		format = output.ParseFormat(cfg.Output.DefaultFormat)
	}
	formatter = output.NewFormatter(output.DetectFormat(os.Stdout, format), os.Stdout)

	return nil
}

// cleanup releases global state.
func cleanup() {
	if logger != nil {
		_ = logger.Close()
	}
}

//nolint:gochecknoinits // Cobra command registration
func init() {
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "vigil home directory (default ~/.vigil)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format: text, json, auto")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
