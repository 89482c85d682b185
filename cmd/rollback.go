package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/envault/envault/internal/configs"
	"github.com/envault/envault/internal/ui"
	"github.com/envault/envault/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	rollbackStage string
	rollbackYes   bool
)

func init() {
	rollbackCmd.Flags().StringVarP(&rollbackStage, "stage", "s", configs.DefaultStage, "stage to roll back")
	rollbackCmd.Flags().BoolVarP(&rollbackYes, "yes", "y", false, "skip the production confirmation prompts")
}

// resetRollbackCommandState resets the rollback command's global state for testing.
func resetRollbackCommandState() {
	rollbackStage = configs.DefaultStage
	rollbackYes = false
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback <version>",
	Short: "Restore an old version by republishing it as a new one",
	Args:  cobra.ExactArgs(1),
	Long: `Re-uploads the content of an earlier version as the next version
number, so the rollback itself appears in the history and nothing is
ever deleted. Local files are not touched; run pull afterwards.

Rolling back production asks for confirmation twice: once for the
operation, once for the chosen target. --yes skips both for scripted
use.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := strconv.Atoi(args[0])
		if err != nil || target < 1 {
			return fmt.Errorf("invalid version %q: expected a positive number", args[0])
		}
		Logger.Infof("Starting rollback command for stage %s to version %d", rollbackStage, target)

		engine, err := newEngine(true)
		if err != nil {
			return err
		}

		spinner, cleanup := startSpinner("Rolling back...")
		defer cleanup()

		opts := workflows.RollbackOptions{
			Stage:           rollbackStage,
			TargetVersion:   target,
			ConfirmedIntent: rollbackYes,
			ConfirmedTarget: rollbackYes,
		}

		result, err := engine.Rollback(context.Background(), opts)
		if err != nil {
			return err
		}

		if result.NeedsIntentConfirmation {
			spinner.Stop()
			fmt.Printf("\n%s You are about to roll back %s\n", ui.Warning.Sprint("⚠"), ui.Stage.Sprint(rollbackStage))
			ok, err := confirm("Proceed? [y/N]: ")
			if err != nil {
				return err
			}
			if !ok {
				spinner.FinalMSG = ui.Warning.Sprint("⚠") + " Rollback cancelled"
				spinner.Restart()
				return nil
			}
			spinner.Restart()

			opts.ConfirmedIntent = true
			result, err = engine.Rollback(context.Background(), opts)
			if err != nil {
				return err
			}
		}

		if result.NeedsTargetConfirmation {
			spinner.Stop()
			fmt.Printf("\n%s This republishes version %s as the new latest for %s\n",
				ui.Warning.Sprint("⚠"), ui.Highlight.Sprintf("v%d", target), ui.Stage.Sprint(rollbackStage))
			ok, err := confirm(fmt.Sprintf("Roll back to v%d? [y/N]: ", target))
			if err != nil {
				return err
			}
			if !ok {
				spinner.FinalMSG = ui.Warning.Sprint("⚠") + " Rollback cancelled"
				spinner.Restart()
				return nil
			}
			spinner.Restart()

			opts.ConfirmedTarget = true
			result, err = engine.Rollback(context.Background(), opts)
			if err != nil {
				return err
			}
		}

		if result.NoOp {
			spinner.FinalMSG = ui.Success.Sprint("✓") + " Version " + ui.Highlight.Sprintf("v%d", target) + " is already the latest for " + ui.Stage.Sprint(rollbackStage)
			return nil
		}

		finalMessage := ui.Success.Sprint("✓") + " Rolled " + ui.Stage.Sprint(rollbackStage) + " back to " + ui.Highlight.Sprintf("v%d", result.TargetVersion) +
			", published as " + ui.Highlight.Sprintf("v%d", result.NewVersion) + "\n" +
			ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("envault pull") + " to update your local file"
		if result.AliasWarning != "" {
			finalMessage += "\n" + ui.Warning.Sprint("⚠") + " " + result.AliasWarning
		}
		spinner.FinalMSG = finalMessage
		return nil
	},
}
