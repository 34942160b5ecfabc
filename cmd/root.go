package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"testdeck/pkg/logging"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error: command failure, invalid
	// arguments, failed validation, or a failed test run.
	ExitCodeError = 1
)

var (
	rootVerbose bool
	rootDebug   bool
)

// rootCmd represents the base command for the testdeck application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "testdeck",
	Short: "Manage and run test configurations for the ride platform",
	Long: `testdeck manages test configurations for the ride-hailing platform
and orchestrates test runs against them: configuration lifecycle (create,
validate, edit, import/export), plan-based execution with bounded
concurrency, and report generation in multiple formats.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors
	// that are handled by the application.
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logging.LevelWarn
		if rootVerbose {
			level = logging.LevelInfo
		}
		if rootDebug {
			level = logging.LevelDebug
		}
		logging.Init(level, os.Stderr)
	},
}

// SetVersion sets the version for the root command. Called from the main
// package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application. Every command
// returns errors instead of exiting, so this is the one place that maps an
// error to a process exit code.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "testdeck version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitCodeError)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&rootDebug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
