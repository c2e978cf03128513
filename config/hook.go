package config

import "fmt"

// Hook is a post-create action. The variants are CopyHook and RunHook.
type Hook interface {
	fmt.Stringer
	isHook()
}

// CopyHook copies a file from the origin repository into the worktree.
type CopyHook struct {
	From     string // Relative to the origin repository
	To       string // Relative to the worktree; From when empty
	Required bool   // Fail when From does not exist
}

// Dest returns the destination path relative to the worktree.
func (h CopyHook) Dest() string {
	if h.To == "" {
		return h.From
	}
	return h.To
}

func (h CopyHook) String() string {
	return fmt.Sprintf("copy %s -> %s", h.From, h.Dest())
}

func (CopyHook) isHook() {}

// RunHook runs a shell command inside the worktree.
type RunHook struct {
	Command string
}

func (h RunHook) String() string {
	return "run " + h.Command
}

func (RunHook) isHook() {}

// File representation. Hooks are decoded into hookSpec and converted so the
// public Hook type stays a closed set.

type fileConfig struct {
	Default fileSettings        `toml:"default"`
	Repos   map[string]fileRepo `toml:"repos"`
}

type fileSettings struct {
	BaseDir string    `toml:"base_dir"`
	Prefix  string    `toml:"prefix"`
	Hooks   fileHooks `toml:"hooks"`
}

type fileRepo struct {
	Path    string    `toml:"path"`
	BaseDir string    `toml:"base_dir"`
	Prefix  string    `toml:"prefix"`
	Hooks   fileHooks `toml:"hooks"`
}

type fileHooks struct {
	PostCreate []hookSpec `toml:"post_create"`
}

type hookSpec struct {
	Type     string `toml:"type"`
	From     string `toml:"from"`
	To       string `toml:"to"`
	Required bool   `toml:"required"`
	Command  string `toml:"command"`
}

func (s hookSpec) toHook() (Hook, error) {
	switch s.Type {
	case "copy":
		return CopyHook{From: s.From, To: s.To, Required: s.Required}, nil
	case "run":
		return RunHook{Command: s.Command}, nil
	case "":
		return nil, fmt.Errorf("hook type is required")
	default:
		return nil, fmt.Errorf("unknown hook type %q", s.Type)
	}
}

func convertHooks(table string, specs []hookSpec) ([]Hook, error) {
	hooks := make([]Hook, 0, len(specs))
	for i, s := range specs {
		h, err := s.toHook()
		if err != nil {
			return nil, fmt.Errorf("%s.hooks.post_create[%d]: %w", table, i, err)
		}
		hooks = append(hooks, h)
	}
	return hooks, nil
}

func (f fileConfig) convert(cfg *Config) error {
	hooks, err := convertHooks("default", f.Default.Hooks.PostCreate)
	if err != nil {
		return err
	}
	cfg.Default = DefaultSettings{
		BaseDir: f.Default.BaseDir,
		Prefix:  f.Default.Prefix,
		Hooks:   Hooks{PostCreate: hooks},
	}

	for name, r := range f.Repos {
		hooks, err := convertHooks("repos."+name, r.Hooks.PostCreate)
		if err != nil {
			return err
		}
		cfg.Repos[name] = RepoSettings{
			Path:    r.Path,
			BaseDir: r.BaseDir,
			Prefix:  r.Prefix,
			Hooks:   Hooks{PostCreate: hooks},
		}
	}
	return nil
}
