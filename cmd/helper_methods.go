package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/envault/envault/internal/configs"
	everrors "github.com/envault/envault/internal/errors"
	"github.com/envault/envault/internal/keycache"
	"github.com/envault/envault/internal/storage"
	"github.com/envault/envault/internal/ui"
	"github.com/envault/envault/internal/utils"
	"github.com/envault/envault/internal/workflows"
	"github.com/briandowns/spinner"
	"github.com/spf13/pflag"
)

// startSpinner creates and starts a spinner with the given message when not in
// verbose or debug mode. Returns the spinner and a function that should be
// deferred to clean up.
//
// IMPORTANT: spinner.FinalMSG values do NOT need trailing newlines. The cleanup
// function automatically calls ui.EnsureNewline() on the final message before
// printing it. This ensures consistent output formatting across all commands.
func startSpinner(message string) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		// If we can't set spinner color, just continue without it.
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	if !verbose && !debug {
		s.Start()
		// Ensure log output is discarded unless in verbose mode.
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	cleanup := func() {
		// Restore log output first.
		if !verbose && !debug {
			log.SetOutput(os.Stdout)
		}

		// Ensure final message ends with a newline.
		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		// Stop the spinner first to clear the spinner line.
		if !verbose && !debug {
			s.Stop()
		}

		// Print final message to stdout (for tests to capture).
		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

// renderError formats an error with its suggested fix, when one is known.
func renderError(err error) string {
	msg := ui.Error.Sprint("✗") + " " + err.Error()
	if hint := hintFor(err); hint != "" {
		msg += "\n" + ui.Info.Sprint("→") + " " + hint
	}
	return msg
}

// hintFor maps known failures to the command that resolves them.
func hintFor(err error) string {
	switch {
	case errors.Is(err, everrors.ErrNotInitialized):
		return "Run " + ui.Code.Sprint("envault init") + " to set up this project"
	case errors.Is(err, everrors.ErrStageNotConfigured):
		return "Check the [stages] table in " + ui.Path.Sprint(".envault/config.toml")
	case errors.Is(err, everrors.ErrLocalFileMissing):
		return "Run " + ui.Code.Sprint("envault pull") + " to fetch the latest version"
	case errors.Is(err, everrors.ErrKeyMaterialMissing):
		return "Run " + ui.Code.Sprint("envault pull") + " and enter the project passphrase"
	case errors.Is(err, everrors.ErrRemoteNotFound), errors.Is(err, everrors.ErrNoVersionHistory):
		return "Run " + ui.Code.Sprint("envault push") + " to upload the first version"
	case errors.Is(err, everrors.ErrVersionNotFound):
		return "Run " + ui.Code.Sprint("envault history") + " to list available versions"
	case errors.Is(err, everrors.ErrAuthenticationFailed):
		return "Check the passphrase, or run " + ui.Code.Sprint("envault key forget") + " to clear a stale key"
	}
	return ""
}

// confirm prompts on stdout and reads a yes/no answer from stdin.
// Only "y" and "yes" count as yes.
func confirm(prompt string) (bool, error) {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print(prompt)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false, Logger.ErrorfAndReturn("Failed to read response: %v", err)
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

// promptForInput prompts the user for input with an optional default value.
func promptForInput(reader *bufio.Reader, prompt, defaultValue string) (string, error) {
	if defaultValue != "" {
		fmt.Printf("%s [%s]: ", prompt, defaultValue)
	} else {
		fmt.Printf("%s: ", prompt)
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	input = strings.TrimSpace(input)
	if input == "" && defaultValue != "" {
		return defaultValue, nil
	}
	return input, nil
}

// newEngine wires a workflow engine for the project containing the
// working directory. With needStore, the blob store client is built from
// the resolved endpoint; without it, the engine works offline.
func newEngine(needStore bool) (*workflows.Engine, error) {
	root, err := utils.FindProjectRoot()
	if err != nil {
		return nil, err
	}
	if root == "" {
		return nil, everrors.ErrNotInitialized
	}

	project, err := configs.LoadProject(root)
	if err != nil {
		return nil, err
	}

	keys, err := keycache.NewCache()
	if err != nil {
		return nil, err
	}

	var store storage.Store
	if needStore {
		settings, err := configs.LoadUserSettings()
		if err != nil {
			return nil, err
		}
		endpoint, err := settings.ResolveEndpoint(project)
		if err != nil {
			return nil, err
		}
		Logger.Debugf("Using blob store endpoint: %s", endpoint)
		httpStore, err := storage.NewHTTPStore(storage.HTTPOptions{
			Endpoint: endpoint,
			Token:    settings.Token,
			Timeout:  settings.Timeout,
			RetryMax: settings.Retries,
		})
		if err != nil {
			return nil, err
		}
		store = httpStore
	}

	return workflows.NewEngine(store, keys, project, root), nil
}

// newDoctorEngine wires an engine tolerantly: a missing project, settings
// file, or endpoint degrades the corresponding checks instead of aborting.
// Returns the resolved endpoint for reporting, empty when none.
func newDoctorEngine() (*workflows.Engine, string, error) {
	root, err := utils.FindProjectRoot()
	if err != nil {
		return nil, "", err
	}

	var project *configs.ProjectConfig
	if root != "" {
		if loaded, err := configs.LoadProject(root); err == nil {
			project = loaded
		} else {
			Logger.Debugf("Project config unreadable: %v", err)
		}
	}

	keys, err := keycache.NewCache()
	if err != nil {
		return nil, "", err
	}

	var endpoint string
	if settings, err := configs.LoadUserSettings(); err == nil {
		endpoint, _ = settings.ResolveEndpoint(project)
	} else {
		Logger.Debugf("User settings unreadable: %v", err)
	}

	var store storage.Store
	if endpoint != "" {
		if httpStore, err := storage.NewHTTPStore(storage.HTTPOptions{Endpoint: endpoint}); err == nil {
			store = httpStore
		}
	}

	return workflows.NewEngine(store, keys, project, root), endpoint, nil
}

// readNewPassphrase prompts twice for a new passphrase and checks the
// entries match.
func readNewPassphrase() (string, error) {
	first, err := utils.ReadPassphrase("Choose a project passphrase: ")
	if err != nil {
		return "", err
	}
	second, err := utils.ReadPassphrase("Confirm the passphrase: ")
	if err != nil {
		return "", err
	}
	if string(first) != string(second) {
		return "", fmt.Errorf("passphrases do not match")
	}
	if len(first) == 0 {
		return "", fmt.Errorf("passphrase must not be empty")
	}
	return string(first), nil
}

// outputFormat is a --format flag value restricted to table or json.
type outputFormat string

const (
	formatTable outputFormat = "table"
	formatJSON  outputFormat = "json"
)

func (f *outputFormat) String() string {
	return string(*f)
}

func (f *outputFormat) Set(value string) error {
	switch outputFormat(value) {
	case formatTable, formatJSON:
		*f = outputFormat(value)
		return nil
	}
	return fmt.Errorf("invalid format: %s (valid values: table, json)", value)
}

func (f *outputFormat) Type() string {
	return "format"
}

var _ pflag.Value = (*outputFormat)(nil)
