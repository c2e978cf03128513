package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mirakui/gj/logger"
)

// Worktree is one entry of `git worktree list`.
type Worktree struct {
	Path   string
	Branch string // Empty for a detached or bare entry
}

// RepoRoot returns the top-level directory of the repository containing dir.
func (s *GitService) RepoRoot(ctx context.Context, dir string) (string, error) {
	root, err := s.output(ctx, dir, "git rev-parse", "git", "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("not inside a git repository: %w", err)
	}
	return root, nil
}

// AddWorktreeNewBranch creates a worktree at path on a new branch started
// from the current HEAD of repo.
func (s *GitService) AddWorktreeNewBranch(ctx context.Context, repo, path, branch string) error {
	if err := ensureParent(path); err != nil {
		return err
	}
	if err := s.combined(ctx, repo, "git worktree add", "git", "worktree", "add", "-b", branch, path); err != nil {
		return err
	}
	logger.WithComponent("git").Info("added worktree", "path", path, "branch", branch)
	return nil
}

// AddWorktreeAtRef creates a worktree at path checked out at ref.
func (s *GitService) AddWorktreeAtRef(ctx context.Context, repo, path, ref string) error {
	if err := ensureParent(path); err != nil {
		return err
	}
	if err := s.combined(ctx, repo, "git worktree add", "git", "worktree", "add", path, ref); err != nil {
		return err
	}
	logger.WithComponent("git").Info("added worktree", "path", path, "ref", ref)
	return nil
}

// AddWorktreeWithBranch creates a worktree at path on a new branch starting
// at ref.
func (s *GitService) AddWorktreeWithBranch(ctx context.Context, repo, path, branch, ref string) error {
	if err := ensureParent(path); err != nil {
		return err
	}
	if err := s.combined(ctx, repo, "git worktree add", "git", "worktree", "add", "-b", branch, path, ref); err != nil {
		return err
	}
	logger.WithComponent("git").Info("added worktree", "path", path, "branch", branch, "ref", ref)
	return nil
}

func ensureParent(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}
	return nil
}

// RemoveWorktree removes the worktree at path. The command runs from repo
// because the worktree itself is about to disappear.
func (s *GitService) RemoveWorktree(ctx context.Context, repo, path string, force bool) error {
	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, path)

	if err := s.combined(ctx, repo, "git worktree remove", "git", args...); err != nil {
		return err
	}
	logger.WithComponent("git").Info("removed worktree", "path", path, "force", force)
	return nil
}

// ListWorktrees returns the worktrees registered in repo, main worktree first.
func (s *GitService) ListWorktrees(ctx context.Context, repo string) ([]Worktree, error) {
	out, err := s.output(ctx, repo, "git worktree list", "git", "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}
	return parseWorktreeList(out), nil
}

// parseWorktreeList parses `git worktree list --porcelain`. Entries are
// separated by blank lines and start with a "worktree <path>" line.
func parseWorktreeList(out string) []Worktree {
	var worktrees []Worktree
	for line := range strings.Lines(out) {
		line = strings.TrimRight(line, "\r\n")
		if path, ok := strings.CutPrefix(line, "worktree "); ok {
			worktrees = append(worktrees, Worktree{Path: path})
			continue
		}
		if branch, ok := strings.CutPrefix(line, "branch refs/heads/"); ok && len(worktrees) > 0 {
			worktrees[len(worktrees)-1].Branch = branch
		}
	}
	return worktrees
}
