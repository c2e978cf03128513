// Package config loads ~/.gj/config.toml and resolves the effective
// settings (base directory, branch prefix, hooks) for a repository.
//
// A repository's values override the [default] table. Hooks are the
// exception: default hooks run first, followed by the repository's own.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/mirakui/gj/logger"
	"github.com/mirakui/gj/paths"
)

// DefaultPrefix is the branch prefix used when neither the repository nor
// the defaults set one.
const DefaultPrefix = "gj"

// ErrNotFound is matched by the error Load returns when a required
// configuration file is missing.
var ErrNotFound = errors.New("configuration file not found")

// NotFoundError reports a missing configuration file.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("configuration file not found at %s\n\nRun `gj init` to create a configuration file.", e.Path)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ParseError reports a configuration file that could not be decoded or
// failed validation.
type ParseError struct {
	Path   string
	Line   int // 0 when unknown
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("invalid configuration %s:%d:%d: %v", e.Path, e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("invalid configuration %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Hooks holds the hook lists of one settings table.
type Hooks struct {
	PostCreate []Hook
}

// DefaultSettings is the [default] table.
type DefaultSettings struct {
	BaseDir string // Empty when unset
	Prefix  string // Empty when unset
	Hooks   Hooks
}

// RepoSettings is one [repos.<name>] table.
type RepoSettings struct {
	Path    string
	BaseDir string
	Prefix  string
	Hooks   Hooks
}

// Repository is a configured repository matched by FindRepository.
type Repository struct {
	Name string
	RepoSettings
}

// Config is the loaded configuration. The zero value (via New) is a valid
// empty configuration.
type Config struct {
	Default DefaultSettings
	Repos   map[string]RepoSettings

	layout paths.Layout
}

// New returns an empty configuration bound to layout.
func New(layout paths.Layout) *Config {
	return &Config{
		Repos:  make(map[string]RepoSettings),
		layout: layout,
	}
}

// Load reads the configuration file named by layout. A missing file yields
// an empty configuration unless required is set.
func Load(layout paths.Layout, required bool) (*Config, error) {
	log := logger.WithComponent("config")

	data, err := os.ReadFile(layout.ConfigFile)
	if errors.Is(err, os.ErrNotExist) {
		if required {
			return nil, &NotFoundError{Path: layout.ConfigFile}
		}
		log.Debug("no configuration file", "path", layout.ConfigFile)
		return New(layout), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration %s: %w", layout.ConfigFile, err)
	}

	cfg, err := Parse(data, layout)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			perr.Path = layout.ConfigFile
		}
		return nil, err
	}

	log.Debug("configuration loaded", "path", layout.ConfigFile, "repos", len(cfg.Repos))
	return cfg, nil
}

// Parse decodes and validates TOML configuration data.
func Parse(data []byte, layout paths.Layout) (*Config, error) {
	var raw fileConfig
	dec := toml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		perr := &ParseError{Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		return nil, perr
	}

	cfg := New(layout)
	if err := raw.convert(cfg); err != nil {
		return nil, &ParseError{Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, &ParseError{Err: err}
	}
	return cfg, nil
}

// Validate checks that every repository has a path and every hook is
// complete.
func (c *Config) Validate() error {
	if err := validateHooks("default", c.Default.Hooks.PostCreate); err != nil {
		return err
	}
	for _, name := range c.RepoNames() {
		repo := c.Repos[name]
		if repo.Path == "" {
			return fmt.Errorf("repos.%s: path is required", name)
		}
		if err := validateHooks("repos."+name, repo.Hooks.PostCreate); err != nil {
			return err
		}
	}
	return nil
}

func validateHooks(table string, hooks []Hook) error {
	for i, h := range hooks {
		switch h := h.(type) {
		case CopyHook:
			if h.From == "" {
				return fmt.Errorf("%s.hooks.post_create[%d]: copy hook requires from", table, i)
			}
		case RunHook:
			if h.Command == "" {
				return fmt.Errorf("%s.hooks.post_create[%d]: run hook requires command", table, i)
			}
		default:
			return fmt.Errorf("%s.hooks.post_create[%d]: unsupported hook %T", table, i, h)
		}
	}
	return nil
}

// RepoNames returns the configured repository names in sorted order.
func (c *Config) RepoNames() []string {
	names := make([]string, 0, len(c.Repos))
	for name := range c.Repos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FindRepository returns the configured repository whose path refers to
// the same directory as path. Matching is exact after ~ expansion and
// symlink resolution; a subdirectory of a configured repository does not
// match.
func (c *Config) FindRepository(path string) (Repository, bool) {
	target, err := paths.Canonical(path)
	if err != nil {
		target = filepath.Clean(path)
	}

	for _, name := range c.RepoNames() {
		repo := c.Repos[name]
		candidate := paths.ExpandHome(repo.Path, c.layout.Home)
		if resolved, err := paths.Canonical(candidate); err == nil {
			candidate = resolved
		}
		if candidate == target || SamePath(candidate, target) {
			return Repository{Name: name, RepoSettings: repo}, true
		}
	}
	return Repository{}, false
}

// EffectiveBaseDir returns the directory new worktrees are created under.
// repo may be nil.
func (c *Config) EffectiveBaseDir(repo *Repository) string {
	dir := c.layout.WorktreesDir
	switch {
	case repo != nil && repo.BaseDir != "":
		dir = repo.BaseDir
	case c.Default.BaseDir != "":
		dir = c.Default.BaseDir
	}
	return paths.ExpandHome(dir, c.layout.Home)
}

// EffectivePrefix returns the branch prefix. repo may be nil.
func (c *Config) EffectivePrefix(repo *Repository) string {
	switch {
	case repo != nil && repo.Prefix != "":
		return repo.Prefix
	case c.Default.Prefix != "":
		return c.Default.Prefix
	}
	return DefaultPrefix
}

// EffectiveHooks returns the post-create hooks to run: the defaults followed
// by the repository's own. The returned slice is never shared with c.
// repo may be nil.
func (c *Config) EffectiveHooks(repo *Repository) []Hook {
	n := len(c.Default.Hooks.PostCreate)
	if repo != nil {
		n += len(repo.Hooks.PostCreate)
	}
	hooks := make([]Hook, 0, n)
	hooks = append(hooks, c.Default.Hooks.PostCreate...)
	if repo != nil {
		hooks = append(hooks, repo.Hooks.PostCreate...)
	}
	return hooks
}

// Layout returns the directory layout the configuration was loaded with.
func (c *Config) Layout() paths.Layout {
	return c.layout
}
