package cmd

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/envault/envault/internal/configs"
	"github.com/envault/envault/internal/ui"
	"github.com/envault/envault/internal/workflows"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	historyStage  string
	historyFormat = formatTable
)

func init() {
	historyCmd.Flags().StringVarP(&historyStage, "stage", "s", configs.DefaultStage, "stage to list")
	historyCmd.Flags().Var(&historyFormat, "format", "output format: table or json")
}

// resetHistoryCommandState resets the history command's global state for testing.
func resetHistoryCommandState() {
	historyStage = configs.DefaultStage
	historyFormat = formatTable
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List a stage's version history",
	Long: `Lists every pushed version of a stage in order, with its timestamp
and message. The newest version is marked as latest; it is what pull
fetches by default.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting history command for stage %s", historyStage)

		engine, err := newEngine(true)
		if err != nil {
			return err
		}

		spinner, cleanup := startSpinner("Fetching version history...")
		defer cleanup()

		result, err := engine.History(context.Background(), workflows.HistoryOptions{Stage: historyStage})
		if err != nil {
			return err
		}

		if result.LegacyOnly {
			spinner.FinalMSG = ui.Warning.Sprint("⚠") + " " + ui.Stage.Sprint(historyStage) + " has pre-versioning data only; there is no history to list\n" +
				ui.Info.Sprint("→") + " The next " + ui.Code.Sprint("envault push") + " starts the version ledger"
			return nil
		}

		spinner.FinalMSG = ""
		if historyFormat == formatJSON {
			return outputHistoryJSON(result)
		}
		printHistoryTable(result)
		return nil
	},
}

type historyOutputEntry struct {
	Version int    `json:"version"`
	Pushed  string `json:"pushed"`
	Message string `json:"message"`
	Latest  bool   `json:"latest,omitempty"`
}

func outputHistoryJSON(result *workflows.HistoryResult) error {
	output := make([]historyOutputEntry, 0, len(result.Versions))
	for _, version := range result.Versions {
		output = append(output, historyOutputEntry{
			Version: version.Version,
			Pushed:  version.Timestamp.Format(time.RFC3339),
			Message: version.Message,
			Latest:  version.Version == result.Latest,
		})
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func printHistoryTable(result *workflows.HistoryResult) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Version", "Pushed", "Message"})

	for _, version := range result.Versions {
		label := ui.Highlight.Sprintf("v%d", version.Version)
		if version.Version == result.Latest {
			label += " " + ui.Success.Sprint("(latest)")
		}
		t.AppendRow(table.Row{
			label,
			version.Timestamp.Local().Format("2006-01-02 15:04:05"),
			version.Message,
		})
	}

	t.Render()
}
