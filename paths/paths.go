// Package paths describes where gj keeps its files.
//
// Everything lives under a single root directory:
//
//   - config.toml: user configuration (see package config)
//   - state/: one JSON record per managed worktree
//   - worktrees/: default base directory for new worktrees
//   - logs/: rotating debug log
//
// The root is $GJ_HOME when set, otherwise ~/.gj. A Layout is resolved once
// by the command entry point and passed to every component that needs a
// path, so tests can point the whole tool at a temporary directory.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvHome overrides the gj root directory.
const EnvHome = "GJ_HOME"

// Layout holds the resolved directories used by gj.
type Layout struct {
	Home         string // User's home directory, used for ~ expansion
	Root         string // gj root (~/.gj)
	ConfigFile   string
	StateDir     string
	WorktreesDir string
	LogsDir      string
}

// Resolve computes the layout from the environment.
func Resolve() (Layout, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Layout{}, fmt.Errorf("could not determine home directory: %w", err)
	}

	root := os.Getenv(EnvHome)
	if root == "" {
		root = filepath.Join(home, ".gj")
	} else {
		root = ExpandHome(root, home)
	}
	return NewLayout(home, root), nil
}

// NewLayout builds a layout rooted at root.
func NewLayout(home, root string) Layout {
	return Layout{
		Home:         home,
		Root:         root,
		ConfigFile:   filepath.Join(root, "config.toml"),
		StateDir:     filepath.Join(root, "state"),
		WorktreesDir: filepath.Join(root, "worktrees"),
		LogsDir:      filepath.Join(root, "logs"),
	}
}

// LogFile returns the path of the main log file.
func (l Layout) LogFile() string {
	return filepath.Join(l.LogsDir, "gj.log")
}

// ExpandHome replaces a leading "~" or "~/" with home.
// Other forms (such as ~user) are returned unchanged.
func ExpandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		return filepath.Join(home, rest)
	}
	return path
}

// Canonical returns an absolute, symlink-free form of path.
//
// The path does not need to exist: the longest existing prefix is resolved
// and the remaining components are appended. This keeps a worktree's
// canonical path stable after the directory itself has been removed.
func Canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}

	parent := filepath.Dir(abs)
	if parent == abs {
		return abs, nil
	}
	resolvedParent, err := Canonical(parent)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedParent, filepath.Base(abs)), nil
}
