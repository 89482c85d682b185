package cmd

import (
	"github.com/envault/envault/internal/configs"
	"github.com/envault/envault/internal/ui"
	"github.com/envault/envault/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	exampleStage  string
	exampleOutput string
)

func init() {
	exampleCmd.Flags().StringVarP(&exampleStage, "stage", "s", configs.DefaultStage, "stage to derive the example from")
	exampleCmd.Flags().StringVarP(&exampleOutput, "output", "o", "", "output path (default: .env.example in the project root)")
}

// resetExampleCommandState resets the example command's global state for testing.
func resetExampleCommandState() {
	exampleStage = configs.DefaultStage
	exampleOutput = ""
}

var exampleCmd = &cobra.Command{
	Use:   "example",
	Short: "Generate a committable .env.example from the local env file",
	Long: `Writes a .env.example with every value replaced by a placeholder
chosen from the variable's name, so the variable set can be committed
without leaking secrets. Works entirely offline.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting example command for stage %s", exampleStage)

		engine, err := newEngine(false)
		if err != nil {
			return err
		}

		spinner, cleanup := startSpinner("Generating example file...")
		defer cleanup()

		result, err := engine.Example(workflows.ExampleOptions{
			Stage:      exampleStage,
			OutputPath: exampleOutput,
		})
		if err != nil {
			return err
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Wrote " + ui.Path.Sprint(result.Path) +
			" " + ui.Muted.Sprintf("%d variable(s)", result.Entries) + "\n" +
			ui.Info.Sprint("→") + " Commit it so new teammates know which variables they need"
		return nil
	},
}
