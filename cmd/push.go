package cmd

import (
	"context"
	"fmt"

	"github.com/envault/envault/internal/configs"
	"github.com/envault/envault/internal/ui"
	"github.com/envault/envault/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	pushStage   string
	pushMessage string
	pushForce   bool
	pushYes     bool
)

func init() {
	pushCmd.Flags().StringVarP(&pushStage, "stage", "s", configs.DefaultStage, "stage to push")
	pushCmd.Flags().StringVarP(&pushMessage, "message", "m", "", "message recorded with the new version")
	pushCmd.Flags().BoolVarP(&pushForce, "force", "f", false, "upload even when the remote already matches")
	pushCmd.Flags().BoolVarP(&pushYes, "yes", "y", false, "skip the production confirmation prompt")
}

// resetPushCommandState resets the push command's global state for testing.
func resetPushCommandState() {
	pushStage = configs.DefaultStage
	pushMessage = ""
	pushForce = false
	pushYes = false
}

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Encrypt the local env file and upload it as a new version",
	Long: `Encrypts the stage's local env file and uploads it as the next
numbered version. Existing versions are never overwritten.

When the decrypted remote latest already matches the local file, nothing
is uploaded; use --force to upload anyway. Pushing to production asks
for confirmation first; --yes skips the prompt for scripted use.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting push command for stage %s", pushStage)

		engine, err := newEngine(true)
		if err != nil {
			return err
		}

		spinner, cleanup := startSpinner("Encrypting and uploading...")
		defer cleanup()

		opts := workflows.PushOptions{
			Stage:     pushStage,
			Message:   pushMessage,
			Force:     pushForce,
			Confirmed: pushYes,
		}

		result, err := engine.Push(context.Background(), opts)
		if err != nil {
			return err
		}

		if result.NeedsConfirmation {
			spinner.Stop()
			fmt.Printf("\n%s You are about to push to %s\n", ui.Warning.Sprint("⚠"), ui.Stage.Sprint(pushStage))
			ok, err := confirm("Proceed? [y/N]: ")
			if err != nil {
				return err
			}
			if !ok {
				spinner.FinalMSG = ui.Warning.Sprint("⚠") + " Push cancelled"
				spinner.Restart()
				return nil
			}
			spinner.Restart()

			opts.Confirmed = true
			result, err = engine.Push(context.Background(), opts)
			if err != nil {
				return err
			}
		}

		if result.NoChanges {
			spinner.FinalMSG = ui.Success.Sprint("✓") + " Remote " + ui.Stage.Sprint(pushStage) + " already matches your local file\n" +
				ui.Info.Sprint("→") + " Use " + ui.Flag.Sprint("--force") + " to upload it anyway"
			return nil
		}

		finalMessage := ui.Success.Sprint("✓") + " Pushed " + ui.Stage.Sprint(pushStage) + " version " + ui.Highlight.Sprintf("v%d", result.Version) +
			" " + ui.Muted.Sprint(result.Message)
		if result.AliasWarning != "" {
			finalMessage += "\n" + ui.Warning.Sprint("⚠") + " " + result.AliasWarning
		}
		spinner.FinalMSG = finalMessage
		return nil
	},
}
