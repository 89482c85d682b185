package cmd

import (
	"fmt"
	"os"

	logger "github.com/envault/envault/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	debug   bool
	Logger  logger.Logger

	RootCmd = &cobra.Command{
		Use:   "envault",
		Short: "Sync encrypted .env files through a shared blob store",
		Long: `Envault keeps a team's .env files in sync without committing them.

Each push encrypts the local file with AES-256-GCM and uploads it as an
immutable numbered version; pull, diff, and rollback work against that
version history. The encryption key is derived from a shared project
passphrase and cached locally, so entering the passphrase once is enough
per machine.

Run 'envault init' inside a repository to get started.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing %s command with verbose=%t, debug=%t", cmd.Name(), verbose, debug)
		},
	}
)

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	RootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")

	RootCmd.AddCommand(initCmd)
	RootCmd.AddCommand(pushCmd)
	RootCmd.AddCommand(pullCmd)
	RootCmd.AddCommand(diffCmd)
	RootCmd.AddCommand(rollbackCmd)
	RootCmd.AddCommand(historyCmd)
	RootCmd.AddCommand(exampleCmd)
	RootCmd.AddCommand(statusCmd)
	RootCmd.AddCommand(doctorCmd)
	RootCmd.AddCommand(keyCmd)
	RootCmd.AddCommand(versionCmd)
}

// Execute runs the root command, rendering any failure with its
// suggested fix before exiting non-zero.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, renderError(err))
		os.Exit(1)
	}
}

// Helper functions for testing

// GetRootCmd returns the RootCmd for testing.
func GetRootCmd() *cobra.Command {
	return RootCmd
}

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	resetInitCommandState()
	resetPushCommandState()
	resetPullCommandState()
	resetDiffCommandState()
	resetRollbackCommandState()
	resetHistoryCommandState()
	resetExampleCommandState()
	resetStatusCommandState()
	resetDoctorCommandState()
}

// SetVerbose sets the verbose flag for testing.
func SetVerbose(v bool) {
	verbose = v
}

// SetDebug sets the debug flag for testing.
func SetDebug(d bool) {
	debug = d
}

// SetLogger sets the logger for testing.
func SetLogger(l logger.Logger) {
	Logger = l
}
