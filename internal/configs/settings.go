package configs

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// UserSettings holds the per-user remote settings. The token lives
// here or in the environment, never in the committed project config.
//
// Loaded from (in order of precedence):
//  1. Environment variables (ENVAULT_REMOTE_ENDPOINT, ENVAULT_REMOTE_TOKEN, ...)
//  2. Config file ($XDG_CONFIG_HOME/envault/config.toml)
//  3. Defaults
type UserSettings struct {
	Endpoint string
	Token    string
	Timeout  time.Duration
	Retries  int
}

const (
	defaultRemoteTimeout = 15 * time.Second
	defaultRemoteRetries = 3
)

// UserConfigDir returns the directory the user settings file lives in.
func UserConfigDir() string {
	return filepath.Join(xdg.ConfigHome, "envault")
}

// LoadUserSettings reads the user settings from the default location.
func LoadUserSettings() (*UserSettings, error) {
	return LoadUserSettingsFrom(UserConfigDir())
}

// LoadUserSettingsFrom reads the user settings from an explicit
// config directory.
func LoadUserSettingsFrom(configDir string) (*UserSettings, error) {
	v := viper.New()

	v.SetDefault("remote.endpoint", "")
	v.SetDefault("remote.token", "")
	v.SetDefault("remote.timeout", defaultRemoteTimeout)
	v.SetDefault("remote.retries", defaultRemoteRetries)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("ENVAULT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read user settings: %w", err)
		}
	}

	return &UserSettings{
		Endpoint: v.GetString("remote.endpoint"),
		Token:    v.GetString("remote.token"),
		Timeout:  v.GetDuration("remote.timeout"),
		Retries:  v.GetInt("remote.retries"),
	}, nil
}

// ResolveEndpoint picks the blob store endpoint: user settings (file or
// environment) win over the project config's pinned endpoint.
func (s *UserSettings) ResolveEndpoint(project *ProjectConfig) (string, error) {
	if s.Endpoint != "" {
		return s.Endpoint, nil
	}
	if project != nil && project.Remote.Endpoint != "" {
		return project.Remote.Endpoint, nil
	}
	return "", fmt.Errorf("no remote endpoint configured: set ENVAULT_REMOTE_ENDPOINT, add remote.endpoint to %s, or pin it in %s",
		filepath.Join(UserConfigDir(), "config.toml"), filepath.Join(DirName, ConfigFileName))
}
