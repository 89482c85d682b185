package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/envault/envault/internal/keycache"
	"github.com/envault/envault/internal/ui"
	"github.com/envault/envault/internal/utils"
	"github.com/envault/envault/internal/workflows"
	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

var (
	initName  string
	initForce bool
)

func init() {
	initCmd.Flags().StringVarP(&initName, "name", "n", "", "project name (defaults to the directory name)")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "re-initialize an existing project, keeping its id")
}

// resetInitCommandState resets the init command's global state for testing.
func resetInitCommandState() {
	initName = ""
	initForce = false
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize envault in the current directory",
	Long: `Creates the .envault directory and project config.

The project gets a fresh id, the default stage set (development, staging,
production), and optionally a passphrase-derived encryption key cached on
this machine. Commit .envault/config.toml; it holds no secrets.

Re-running init on an existing project is refused unless --force is
given. A forced re-init replaces the stage set but keeps the project id,
so data already pushed stays reachable.

Examples:
  # Interactive setup
  envault init

  # Non-interactive setup
  envault init --name billing-service`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting init command")

		root, err := os.Getwd()
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to get working directory: %v", err)
		}

		keys, err := keycache.NewCache()
		if err != nil {
			return err
		}
		engine := workflows.NewEngine(nil, keys, nil, root)

		figure.NewColorFigure("envault", "alligator2", "green", true).Print()
		fmt.Println()

		opts := workflows.InitOptions{ProjectName: initName, Force: initForce}

		interactive := utils.IsTerminal()
		if interactive {
			reader := bufio.NewReader(os.Stdin)
			if opts.ProjectName == "" {
				name, err := promptForInput(reader, "Project name", filepath.Base(root))
				if err != nil {
					return err
				}
				opts.ProjectName = name
			}

			passphrase, err := readNewPassphrase()
			if err != nil {
				return err
			}
			opts.Passphrase = passphrase
		} else {
			Logger.Debugf("stdin is not a terminal, skipping prompts")
		}

		result, err := engine.Init(opts)
		if err != nil {
			return err
		}

		if result.AlreadyInitialized {
			fmt.Println(ui.Error.Sprint("✗") + " This project is already initialized as " + ui.Highlight.Sprint(result.ProjectName))
			fmt.Println(ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("envault init --force") + " to re-initialize it")
			return nil
		}

		if result.Reinitialized {
			fmt.Println(ui.Success.Sprint("✓") + " Project re-initialized; config written to " + ui.Path.Sprint(result.ConfigPath))
		} else {
			fmt.Println(ui.Success.Sprint("✓") + " Project config written to " + ui.Path.Sprint(result.ConfigPath))
		}
		fmt.Println()
		fmt.Println("Your project:")
		fmt.Println("  Name:   " + ui.Highlight.Sprint(result.ProjectName))
		fmt.Println("  ID:     " + ui.Path.Sprint(result.ProjectID))
		fmt.Println("  Stages:")
		stages := make([]string, 0, len(result.Stages))
		for stage := range result.Stages {
			stages = append(stages, stage)
		}
		sort.Strings(stages)
		for _, stage := range stages {
			fmt.Printf("    %s %s %s\n", ui.Stage.Sprint(stage), ui.Info.Sprint("→"), ui.Path.Sprint(result.Stages[stage]))
		}
		fmt.Println()

		if result.KeyCreated {
			fmt.Println(ui.Success.Sprint("✓") + " Encryption key derived and cached on this machine")
		} else {
			fmt.Println(ui.Warning.Sprint("⚠") + " No passphrase entered; the first " + ui.Code.Sprint("envault pull") + " will prompt for one")
		}

		fmt.Println(ui.Info.Sprint("→") + " Make sure your " + ui.Path.Sprint(".env*") + " files stay in " + ui.Path.Sprint(".gitignore"))
		fmt.Println(ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("envault push") + " to upload the first version")
		return nil
	},
}
