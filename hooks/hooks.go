// Package hooks runs the post-create hooks of a newly created worktree.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mirakui/gj/config"
	"github.com/mirakui/gj/exec"
	"github.com/mirakui/gj/logger"
)

// Context describes the worktree the hooks run against.
type Context struct {
	Origin   string // Source repository root
	Worktree string // New worktree root
	Branch   string
}

// envVars returns the hook context as environment variable pairs.
func (hc Context) envVars() []string {
	return []string{
		"GJ_WORKTREE=" + hc.Worktree,
		"GJ_ORIGIN_REPO=" + hc.Origin,
		"GJ_BRANCH=" + hc.Branch,
	}
}

// Error reports the first hook that failed.
type Error struct {
	Index int // Zero-based position in the hook list
	Hook  config.Hook
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("hook #%d (%s) failed: %v", e.Index+1, e.Hook, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Runner executes hooks, writing progress and command output to out.
type Runner struct {
	executor exec.CommandExecutor
	out      io.Writer
}

// NewRunner returns a runner. Run hooks go through executor; out receives
// progress lines and the output of run hooks.
func NewRunner(executor exec.CommandExecutor, out io.Writer) *Runner {
	return &Runner{executor: executor, out: out}
}

// Execute runs hooks in order and stops at the first failure.
func (r *Runner) Execute(ctx context.Context, hooks []config.Hook, hc Context) error {
	log := logger.WithComponent("hooks")

	for i, hook := range hooks {
		var err error
		switch h := hook.(type) {
		case config.CopyHook:
			err = r.copy(h, hc)
		case config.RunHook:
			err = r.run(ctx, h, hc)
		default:
			err = fmt.Errorf("unsupported hook %T", hook)
		}
		if err != nil {
			log.Warn("hook failed", "index", i, "hook", hook.String(), "error", err)
			return &Error{Index: i, Hook: hook, Err: err}
		}
		log.Debug("hook completed", "index", i, "hook", hook.String())
	}
	return nil
}

func (r *Runner) copy(h config.CopyHook, hc Context) error {
	src := filepath.Join(hc.Origin, h.From)
	dst := filepath.Join(hc.Worktree, h.Dest())

	info, err := os.Stat(src)
	if errors.Is(err, os.ErrNotExist) {
		if h.Required {
			return fmt.Errorf("required file not found: %s", src)
		}
		logger.WithComponent("hooks").Debug("optional copy source missing", "path", src)
		return nil
	}
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", src)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", dst, err)
	}
	if err := copyFile(src, dst, info.Mode().Perm()); err != nil {
		return err
	}

	fmt.Fprintf(r.out, "Copied: %s -> %s\n", h.From, h.Dest())
	return nil
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	// OpenFile leaves the mode of an existing file alone.
	return os.Chmod(dst, perm)
}

func (r *Runner) run(ctx context.Context, h config.RunHook, hc Context) error {
	fmt.Fprintf(r.out, "Running: %s\n", h.Command)

	err := r.executor.Stream(ctx, exec.Cmd{
		Dir:    hc.Worktree,
		Name:   "sh",
		Args:   []string{"-c", h.Command},
		Env:    hc.envVars(),
		Stdout: r.out,
		Stderr: r.out,
	})
	if err == nil {
		return nil
	}
	if code := exec.ExitCode(err); code > 0 {
		return fmt.Errorf("command exited with status %d", code)
	}
	return err
}
