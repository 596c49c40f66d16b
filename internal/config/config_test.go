package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaultsWhenNoRCFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load("1.2.3", false, false)
	assert.NoError(t, err)
	assert.Equal(t, "xdsh", cfg.Name)
	assert.Equal(t, 1000, cfg.Options.HistorySize)
	assert.Equal(t, filepath.Join(home, ".xdsh_history"), cfg.HistFile())
}

func TestLoadOverridesFromRCFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	rc := "historySize: 50\npromptColor: red\n"
	assert.NoError(t, os.WriteFile(filepath.Join(home, ".xdshrc.yaml"), []byte(rc), 0o644))

	cfg, err := Load("1.2.3", true, false)
	assert.NoError(t, err)
	assert.Equal(t, 50, cfg.Options.HistorySize)
	assert.Equal(t, "red", cfg.Options.PromptColor)
	assert.True(t, cfg.Login)
}
