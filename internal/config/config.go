// Package config handles the shell's process-identity fields and the
// user-editable options read from ~/.xdshrc.yaml, split across two structs:
// a fixed struct built from the environment/flags, and a yaml-tagged struct
// loaded from disk and defaulted when absent.
package config

import (
	"os"
	"path/filepath"

	yaml "github.com/jesseduffield/yaml"
)

// RCOptions holds the shell options a user can override in ~/.xdshrc.yaml.
// These cover the options the `set` builtin does not (it only assigns
// variables and marks them exported) but a real shell binary still needs
// somewhere to own.
type RCOptions struct {
	// HistorySize is the history length setting loaded from the rc file; no
	// part of this shell reads it, and nothing trims $HISTFILE to it.
	HistorySize int `yaml:"historySize,omitempty"`

	// FallbackPath is used to populate $PATH when the inherited environment
	// doesn't define one.
	FallbackPath string `yaml:"fallbackPath,omitempty"`

	// PromptColor names the color attribute used for the prompt prefix; the
	// interactive loop's prompt reads this option through the ShellConfig.
	PromptColor string `yaml:"promptColor,omitempty"`
}

func defaultRCOptions() RCOptions {
	return RCOptions{
		HistorySize:  1000,
		FallbackPath: "/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin",
		PromptColor:  "cyan",
	}
}

// ShellConfig is the process-wide configuration handed to every subsystem:
// fixed identity fields plus the loaded RCOptions.
type ShellConfig struct {
	Name      string
	Version   string
	Debug     bool
	Login     bool
	ConfigDir string
	HomeDir   string
	Options   *RCOptions
}

// Load resolves $HOME, finds or creates the config directory, and loads
// ~/.xdshrc.yaml over the defaults. login/debug come from CLI flags (main.go).
func Load(version string, login, debug bool) (*ShellConfig, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	configDir := filepath.Join(home, ".xdsh")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, err
	}

	options, err := loadRCOptions(home)
	if err != nil {
		return nil, err
	}

	return &ShellConfig{
		Name:      "xdsh",
		Version:   version,
		Debug:     debug,
		Login:     login,
		ConfigDir: configDir,
		HomeDir:   home,
		Options:   options,
	}, nil
}

func loadRCOptions(home string) (*RCOptions, error) {
	options := defaultRCOptions()

	path := filepath.Join(home, ".xdshrc.yaml")
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &options, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(content, &options); err != nil {
		return nil, err
	}
	return &options, nil
}

// HistFile returns the default history file path, $HOME/.xdsh_history; the
// shell assigns it to HISTFILE only when the environment leaves HISTFILE unset.
func (c *ShellConfig) HistFile() string {
	return filepath.Join(c.HomeDir, ".xdsh_history")
}

// ProfilePath returns ~/.xdsh_profile, sourced when the shell is a login shell.
func (c *ShellConfig) ProfilePath() string {
	return filepath.Join(c.HomeDir, ".xdsh_profile")
}

// RCPath returns ~/.xdshrc, sourced for an interactive non-login shell.
func (c *ShellConfig) RCPath() string {
	return filepath.Join(c.HomeDir, ".xdshrc")
}
