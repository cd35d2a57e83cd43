// Package config loads server settings from an optional YAML file with
// environment overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Settings configures the API server and git execution.
type Settings struct {
	// ListenAddr is the host:port the API server binds.
	ListenAddr string `yaml:"listen_addr"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// AuthToken, when set, requires Bearer auth on every API call.
	AuthToken string `yaml:"auth_token"`
	// GitBinary overrides the git executable used for shell operations.
	GitBinary string `yaml:"git_binary"`
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Settings {
	return Settings{
		ListenAddr: ":8184",
		LogLevel:   "info",
	}
}

// Load reads settings from path (skipped when empty or missing) and then
// applies environment overrides. REBASEKIT_LISTEN_ADDR, REBASEKIT_LOG_LEVEL,
// REBASEKIT_AUTH_TOKEN, and REBASEKIT_GIT_BINARY each override their field.
func Load(path string) (Settings, error) {
	settings := Defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return settings, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(raw, &settings); err != nil {
			return settings, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	for env, field := range map[string]*string{
		"REBASEKIT_LISTEN_ADDR": &settings.ListenAddr,
		"REBASEKIT_LOG_LEVEL":   &settings.LogLevel,
		"REBASEKIT_AUTH_TOKEN":  &settings.AuthToken,
		"REBASEKIT_GIT_BINARY":  &settings.GitBinary,
	} {
		if value := os.Getenv(env); value != "" {
			*field = value
		}
	}

	if settings.ListenAddr == "" {
		settings.ListenAddr = Defaults().ListenAddr
	}
	return settings, nil
}
