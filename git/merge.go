package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/mirakui/gj/logger"
)

// MergeConflictError is returned by Merge when the merge stopped on
// conflicts. The merge is left in progress; call AbortMerge to undo it.
type MergeConflictError struct {
	Branch string
	Dir    string
	Files  []string
}

func (e *MergeConflictError) Error() string {
	msg := fmt.Sprintf("merge conflict while merging %s in %s", e.Branch, e.Dir)
	if len(e.Files) > 0 {
		msg += ":\n  " + strings.Join(e.Files, "\n  ")
	}
	return msg
}

// Merge merges branch into the branch checked out in dir.
func (s *GitService) Merge(ctx context.Context, dir, branch string) error {
	log := logger.WithComponent("git")

	err := s.combined(ctx, dir, "git merge", "git", "merge", branch, "--no-edit")
	if err == nil {
		log.Info("merged branch", "branch", branch, "dir", dir)
		return nil
	}

	files, ferr := s.GetConflictedFiles(ctx, dir)
	if ferr == nil && len(files) > 0 {
		log.Warn("merge conflict", "branch", branch, "dir", dir, "files", files)
		return &MergeConflictError{Branch: branch, Dir: dir, Files: files}
	}
	if s.IsMergeInProgress(ctx, dir) {
		return &MergeConflictError{Branch: branch, Dir: dir}
	}
	return err
}

// AbortMerge aborts an in-progress merge
func (s *GitService) AbortMerge(ctx context.Context, dir string) error {
	return s.combined(ctx, dir, "git merge --abort", "git", "merge", "--abort")
}
