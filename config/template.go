package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mirakui/gj/logger"
)

// ErrExists is returned by WriteTemplate when the file is already present.
var ErrExists = errors.New("configuration file already exists")

// Template is the commented starter configuration written by `gj init`.
const Template = `# gj configuration file

[default]
# Base directory for worktrees (default: ~/.gj/worktrees)
# base_dir = "~/.gj/worktrees"

# Default branch prefix (default: gj)
# prefix = "gj"

# Example: Default hooks applied to all repositories
# [[default.hooks.post_create]]
# type = "run"
# command = "echo 'Worktree created!'"

# Example: Repository-specific configuration
# [repos.my-app]
# path = "~/dev/my-app"
# prefix = "feature"
#
# [[repos.my-app.hooks.post_create]]
# type = "copy"
# from = ".env"
# required = true
#
# [[repos.my-app.hooks.post_create]]
# type = "run"
# command = "npm install"
`

// WriteTemplate writes Template to path, creating parent directories.
// An existing file is only replaced when force is set.
func WriteTemplate(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%w at %s\n\nUse `gj init --force` to overwrite.", ErrExists, path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(Template), 0644); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}

	logger.WithComponent("config").Info("wrote configuration template", "path", path, "force", force)
	return nil
}
