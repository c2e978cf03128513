package git

import (
	"context"
	"strings"
)

// HasUncommittedChanges reports whether dir has staged, unstaged, or
// untracked changes.
func (s *GitService) HasUncommittedChanges(ctx context.Context, dir string) (bool, error) {
	out, err := s.output(ctx, dir, "git status", "git", "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return out != "", nil
}

// GetConflictedFiles returns the list of files with merge conflicts in a repo
func (s *GitService) GetConflictedFiles(ctx context.Context, repo string) ([]string, error) {
	out, err := s.output(ctx, repo, "git diff", "git", "diff", "--name-only", "--diff-filter=U")
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// IsMergeInProgress checks if a merge is currently in progress in the repo.
// It returns true if MERGE_HEAD exists (meaning there's an ongoing merge).
func (s *GitService) IsMergeInProgress(ctx context.Context, repo string) bool {
	_, _, err := s.executor.Run(ctx, repo, "git", "rev-parse", "--verify", "--quiet", "MERGE_HEAD")
	return err == nil
}
