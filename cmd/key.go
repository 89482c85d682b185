package cmd

import (
	"github.com/envault/envault/internal/ui"
	"github.com/spf13/cobra"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage this machine's cached encryption keys",
}

func init() {
	keyCmd.AddCommand(keyForgetCmd)
}

var keyForgetCmd = &cobra.Command{
	Use:   "forget",
	Short: "Remove the project's cached encryption key from this machine",
	Long: `Removes the cached key entry for the current project. The next pull
or diff will prompt for the project passphrase and re-derive the key.

Use this after a passphrase rotation, or before handing a machine to
someone who should not decrypt this project's files.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting key forget command")

		engine, err := newEngine(false)
		if err != nil {
			return err
		}

		spinner, cleanup := startSpinner("Removing cached key...")
		defer cleanup()

		removed, err := engine.ForgetKey()
		if err != nil {
			return err
		}

		if !removed {
			spinner.FinalMSG = ui.Info.Sprint("→") + " No cached key for this project on this machine"
			return nil
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Cached key removed\n" +
			ui.Info.Sprint("→") + " The next " + ui.Code.Sprint("envault pull") + " will ask for the project passphrase"
		return nil
	},
}
