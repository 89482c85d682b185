package cmd

import (
	"context"
	"fmt"

	"github.com/envault/envault/internal/configs"
	"github.com/envault/envault/internal/ui"
	"github.com/envault/envault/internal/utils"
	"github.com/envault/envault/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	pullStage   string
	pullVersion int
)

func init() {
	pullCmd.Flags().StringVarP(&pullStage, "stage", "s", configs.DefaultStage, "stage to pull")
	pullCmd.Flags().IntVar(&pullVersion, "version", 0, "specific version to pull (default: latest)")
}

// resetPullCommandState resets the pull command's global state for testing.
func resetPullCommandState() {
	pullStage = configs.DefaultStage
	pullVersion = 0
}

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Download and decrypt an env file version",
	Long: `Fetches the stage's latest version (or --version N) from the blob
store, decrypts it, and writes the stage's local file with a provenance
header.

Without a cached key, pull prompts for the project passphrase and caches
the derived key on success, so later syncs need no prompt.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting pull command for stage %s", pullStage)

		engine, err := newEngine(true)
		if err != nil {
			return err
		}

		spinner, cleanup := startSpinner("Fetching and decrypting...")
		defer cleanup()

		opts := workflows.PullOptions{
			Stage:   pullStage,
			Version: pullVersion,
		}

		result, err := engine.Pull(context.Background(), opts)
		if err != nil {
			return err
		}

		if result.NeedsPassphrase {
			spinner.Stop()
			fmt.Printf("%s No cached key for this project on this machine\n", ui.Info.Sprint("→"))
			passphrase, err := utils.ReadPassphrase("Enter the project passphrase: ")
			if err != nil {
				return err
			}
			spinner.Restart()

			opts.Passphrase = string(passphrase)
			result, err = engine.Pull(context.Background(), opts)
			if err != nil {
				return err
			}
		}

		Logger.Debugf("Fetched %s", result.Source)

		finalMessage := ui.Success.Sprint("✓") + " Pulled " + ui.Stage.Sprint(pullStage)
		if result.Version > 0 {
			finalMessage += " version " + ui.Highlight.Sprintf("v%d", result.Version)
		} else if result.Legacy {
			finalMessage += " " + ui.Muted.Sprint("pre-versioning data")
		}
		finalMessage += " into " + ui.Path.Sprint(result.Path)
		if result.KeyCached {
			finalMessage += "\n" + ui.Success.Sprint("✓") + " Passphrase accepted; key cached for future syncs"
		}
		spinner.FinalMSG = finalMessage
		return nil
	},
}
