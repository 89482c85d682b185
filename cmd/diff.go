package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/envault/envault/internal/configs"
	"github.com/envault/envault/internal/envfile"
	"github.com/envault/envault/internal/ui"
	"github.com/envault/envault/internal/utils"
	"github.com/envault/envault/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	diffStage   string
	diffVersion int
	diffYes     bool
)

func init() {
	diffCmd.Flags().StringVarP(&diffStage, "stage", "s", configs.DefaultStage, "stage to compare")
	diffCmd.Flags().IntVar(&diffVersion, "version", 0, "remote version to compare against (default: latest)")
	diffCmd.Flags().BoolVarP(&diffYes, "yes", "y", false, "proceed even when the local file header names another stage")
}

// resetDiffCommandState resets the diff command's global state for testing.
func resetDiffCommandState() {
	diffStage = configs.DefaultStage
	diffVersion = 0
	diffYes = false
}

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Compare the local env file against a remote version",
	Long: `Decrypts the stage's remote latest (or --version N) in memory and
compares it with the local file, reporting added, removed, and changed
variables. Neither file is modified.

When the local file's provenance header names a different stage than the
one being compared, diff asks before proceeding; --yes skips the
prompt.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting diff command for stage %s", diffStage)

		engine, err := newEngine(true)
		if err != nil {
			return err
		}

		spinner, cleanup := startSpinner("Comparing with remote...")
		defer cleanup()

		opts := workflows.DiffOptions{
			Stage:          diffStage,
			Version:        diffVersion,
			AcceptMismatch: diffYes,
		}

		result, err := engine.Diff(context.Background(), opts)
		if err != nil {
			return err
		}

		if result.StageMismatch {
			spinner.Stop()
			fmt.Printf("\n%s Your local file was pulled from %s, but you are diffing against %s\n",
				ui.Warning.Sprint("⚠"), ui.Stage.Sprint(result.HeaderStage), ui.Stage.Sprint(diffStage))
			ok, err := confirm("Compare anyway? [y/N]: ")
			if err != nil {
				return err
			}
			if !ok {
				spinner.FinalMSG = ui.Warning.Sprint("⚠") + " Diff cancelled"
				spinner.Restart()
				return nil
			}
			spinner.Restart()
			opts.AcceptMismatch = true
			result, err = engine.Diff(context.Background(), opts)
			if err != nil {
				return err
			}
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
			result, err = engine.Diff(context.Background(), opts)
			if err != nil {
				return err
			}
		}

		if diffYes && result.HeaderStage != "" {
			Logger.WarnfAlways("Local file header names %s; comparing against %s anyway", result.HeaderStage, diffStage)
		}

		against := "latest"
		if result.Version > 0 {
			against = fmt.Sprintf("v%d", result.Version)
		}

		if result.Changes.Empty() {
			spinner.FinalMSG = ui.Success.Sprint("✓") + " Local " + ui.Stage.Sprint(diffStage) + " matches remote " + ui.Highlight.Sprint(against)
			return nil
		}

		spinner.FinalMSG = "Differences against remote " + ui.Highlight.Sprint(against) + ":\n" + renderDiff(result.Changes)
		return nil
	},
}

// renderDiff formats a comparison one line per variable: + only in the
// remote version, - only in the local file, ~ present on both sides with
// differing values. Unchanged entries are summarized as a count.
func renderDiff(changes *envfile.DiffResult) string {
	var b strings.Builder

	for _, pair := range changes.Added {
		b.WriteString(ui.Success.Sprintf("+ %s=%s", pair.Key, pair.Value) + "\n")
	}
	for _, pair := range changes.Removed {
		b.WriteString(ui.Error.Sprintf("- %s=%s", pair.Key, pair.Value) + "\n")
	}
	for _, change := range changes.Changed {
		b.WriteString(ui.Warning.Sprintf("~ %s=%s", change.Key, change.Local) + " " + ui.Muted.Sprint("remote: "+change.Remote) + "\n")
	}

	if changes.Unchanged > 0 {
		b.WriteString(ui.Muted.Sprintf("%d unchanged", changes.Unchanged) + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}
