package worktree

import (
	"context"
	"errors"
	"fmt"

	"github.com/mirakui/gj/git"
	"github.com/mirakui/gj/logger"
)

// ExitRequest controls teardown of the current worktree.
type ExitRequest struct {
	Force bool // Discard uncommitted changes
	Merge bool // Merge the branch into the default branch first
}

// ExitResult reports a completed teardown.
type ExitResult struct {
	Destination   string // Directory the caller should move to
	Branch        string
	Merged        bool
	BranchDeleted bool
	// BranchErr is the branch deletion failure, if any. The worktree and
	// its record are gone regardless.
	BranchErr error
}

// Exit removes the worktree containing the working directory, deletes its
// branch, and forgets its record. With Merge, the branch is first merged
// into the worktree that has the default branch checked out; a conflict is
// aborted and nothing else is touched.
func (s *Service) Exit(ctx context.Context, req ExitRequest) (*ExitResult, error) {
	log := logger.WithComponent("worktree")

	st, err := s.store.LoadCurrent()
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, fmt.Errorf("%w. Use this command inside a worktree created by gj.", ErrNotManaged)
	}

	if !req.Force && !req.Merge {
		dirty, err := s.backend.HasUncommittedChanges(ctx, st.WorktreePath)
		if err != nil {
			return nil, err
		}
		if dirty {
			return nil, fmt.Errorf("%w. Use --force to discard them, or commit/stash first.", ErrUncommitted)
		}
	}

	current, err := s.backend.CurrentBranch(ctx, st.WorktreePath)
	if err != nil {
		return nil, err
	}

	result := &ExitResult{Destination: st.OriginRepo, Branch: st.Branch}

	if req.Merge {
		if current == "" {
			return nil, fmt.Errorf("%w: nothing to merge", ErrDetached)
		}
		target, err := s.mergeTarget(ctx, st.OriginRepo)
		if err != nil {
			return nil, err
		}
		if err := s.backend.Merge(ctx, target, current); err != nil {
			var conflict *git.MergeConflictError
			if errors.As(err, &conflict) {
				if abortErr := s.backend.AbortMerge(ctx, target); abortErr != nil {
					return nil, errors.Join(err, fmt.Errorf("failed to abort merge: %w", abortErr))
				}
				log.Warn("merge aborted after conflict", "branch", current, "target", target)
			}
			return nil, err
		}
		log.Info("merged worktree branch", "branch", current, "target", target)
		result.Merged = true
		result.Destination = target
	}

	forceRemove := req.Force || result.Merged
	if err := s.backend.RemoveWorktree(ctx, st.OriginRepo, st.WorktreePath, forceRemove); err != nil {
		return nil, err
	}

	// A remote checkout is detached and never created st.Branch locally.
	if current == st.Branch {
		if err := s.backend.DeleteBranch(ctx, st.OriginRepo, st.Branch, forceRemove); err != nil {
			log.Warn("failed to delete branch", "branch", st.Branch, "error", err)
			result.BranchErr = err
		} else {
			result.BranchDeleted = true
		}
	} else {
		log.Debug("keeping branch", "recorded", st.Branch, "current", current)
	}

	if err := s.store.Delete(st); err != nil {
		return nil, err
	}
	log.Info("removed worktree", "path", st.WorktreePath, "merged", result.Merged)
	return result, nil
}

// mergeTarget returns the worktree of repo that has the default branch
// checked out.
func (s *Service) mergeTarget(ctx context.Context, repo string) (string, error) {
	def, err := s.backend.DefaultBranch(ctx, repo)
	if err != nil {
		return "", err
	}
	worktrees, err := s.backend.ListWorktrees(ctx, repo)
	if err != nil {
		return "", err
	}
	for _, wt := range worktrees {
		if wt.Branch == def {
			return wt.Path, nil
		}
	}
	return "", fmt.Errorf("%w (%s)", ErrNoMergeTarget, def)
}
