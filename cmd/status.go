package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/envault/envault/internal/ui"
	"github.com/envault/envault/internal/workflows"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	statusLocal  bool
	statusFormat = formatTable
)

func init() {
	statusCmd.Flags().BoolVar(&statusLocal, "local", false, "skip remote queries")
	statusCmd.Flags().Var(&statusFormat, "format", "output format: table or json")
}

// resetStatusCommandState resets the status command's global state for testing.
func resetStatusCommandState() {
	statusLocal = false
	statusFormat = formatTable
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a per-stage overview of local and remote state",
	Long: `Shows, for every configured stage, the local file path and whether
it exists, plus what the blob store holds: a version ledger, legacy
pre-versioning data, or nothing yet.

Use --local to skip remote queries when offline.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting status command")

		engine, err := newEngine(!statusLocal)
		if err != nil {
			return err
		}

		spinner, cleanup := startSpinner("Collecting project status...")
		defer cleanup()

		result, err := engine.Status(context.Background(), workflows.StatusOptions{SkipRemote: statusLocal})
		if err != nil {
			return err
		}

		spinner.FinalMSG = ""
		if statusFormat == formatJSON {
			return outputStatusJSON(result)
		}
		printStatus(result)
		return nil
	},
}

type statusOutputStage struct {
	Stage       string `json:"stage"`
	Path        string `json:"path"`
	LocalExists bool   `json:"local_exists"`
	Remote      string `json:"remote"`
	Versions    int    `json:"versions,omitempty"`
	Latest      int    `json:"latest,omitempty"`
}

type statusOutput struct {
	ProjectID   string              `json:"project_id"`
	ProjectName string              `json:"project_name"`
	KeyCached   bool                `json:"key_cached"`
	Stages      []statusOutputStage `json:"stages"`
}

func outputStatusJSON(result *workflows.StatusResult) error {
	output := statusOutput{
		ProjectID:   result.ProjectID,
		ProjectName: result.ProjectName,
		KeyCached:   result.KeyCached,
	}
	for _, stage := range result.Stages {
		output.Stages = append(output.Stages, statusOutputStage{
			Stage:       stage.Stage,
			Path:        stage.Path,
			LocalExists: stage.LocalExists,
			Remote:      string(stage.Remote),
			Versions:    stage.Versions,
			Latest:      stage.Latest,
		})
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func printStatus(result *workflows.StatusResult) {
	fmt.Println("Project: " + ui.Highlight.Sprint(result.ProjectName) + " " + ui.Muted.Sprint(result.ProjectID))
	if result.KeyCached {
		fmt.Println("Key:     " + ui.Success.Sprint("cached on this machine"))
	} else {
		fmt.Println("Key:     " + ui.Warning.Sprint("not cached") + " " + ui.Muted.Sprint("pull will prompt for the passphrase"))
	}
	fmt.Println()

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Stage", "Path", "Local", "Remote"})

	for _, stage := range result.Stages {
		local := ui.Error.Sprint("missing")
		if stage.LocalExists {
			local = ui.Success.Sprint("present")
		}
		t.AppendRow(table.Row{
			ui.Stage.Sprint(stage.Stage),
			stage.Path,
			local,
			describeRemote(stage),
		})
	}

	t.Render()
}

// describeRemote renders a stage's remote state for the status table.
func describeRemote(stage workflows.StageStatus) string {
	switch stage.Remote {
	case workflows.RemoteVersioned:
		return fmt.Sprintf("%d version(s), latest v%d", stage.Versions, stage.Latest)
	case workflows.RemoteLegacy:
		return "pre-versioning data"
	case workflows.RemoteAbsent:
		return ui.Muted.Sprint("nothing pushed")
	default:
		return ui.Muted.Sprint("not checked")
	}
}
