package worktree

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mirakui/gj/config"
	"github.com/mirakui/gj/hooks"
	"github.com/mirakui/gj/logger"
	"github.com/mirakui/gj/paths"
	"github.com/mirakui/gj/state"
)

// NewRequest asks for a worktree on a new branch.
type NewRequest struct {
	RepoRoot     string
	Suffix       string // Sanitized before use
	RandomSuffix bool   // Ignore Suffix and generate one
}

// RemoteRequest asks for a worktree at an existing remote branch.
type RemoteRequest struct {
	RepoRoot string
	Branch   string // "origin/" prefix is optional
}

// PRRequest asks for a worktree on the head branch of a pull request.
type PRRequest struct {
	RepoRoot string
	Number   int
}

// CreateResult describes a created worktree.
type CreateResult struct {
	Path   string
	Branch string
	// HookErr is the post-create hook failure, if any. The worktree and its
	// record exist regardless.
	HookErr error
}

// target bundles what the create flows share once a repository is known.
type target struct {
	root string
	repo *config.Repository // nil when the repository is not configured
}

func (s *Service) resolve(repoRoot string) target {
	t := target{root: repoRoot}
	if repo, ok := s.cfg.FindRepository(repoRoot); ok {
		t.repo = &repo
	}
	return t
}

// localIdentity is the configured repository name, or the directory name.
func (t target) localIdentity() string {
	if t.repo != nil {
		return t.repo.Name
	}
	return filepath.Base(t.root)
}

// remoteIdentity is "owner/repo" from origin, falling back to the local
// identity for repositories without a recognizable remote.
func (s *Service) remoteIdentity(ctx context.Context, t target) string {
	identity, err := s.backend.RepoIdentity(ctx, t.root)
	if err != nil || identity == "" {
		logger.WithComponent("worktree").Debug("using local repository identity", "repo", t.root, "error", err)
		return t.localIdentity()
	}
	return identity
}

func checkAbsent(path, name string) error {
	if _, err := os.Lstat(path); err == nil {
		return &ExistsError{Path: path, Name: name}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to check %s: %w", path, err)
	}
	return nil
}

// CreateNew creates a worktree on a new branch named
// <prefix>/<YYYYMMDD>_<suffix>, started from the repository's HEAD.
func (s *Service) CreateNew(ctx context.Context, req NewRequest) (*CreateResult, error) {
	suffix := Sanitize(req.Suffix)
	if req.RandomSuffix {
		suffix = s.suffix()
	}
	if suffix == "" {
		return nil, ErrEmptyName
	}

	t := s.resolve(req.RepoRoot)
	branch := fmt.Sprintf("%s/%s_%s", s.cfg.EffectivePrefix(t.repo), s.now().UTC().Format("20060102"), suffix)
	path := filepath.Join(s.cfg.EffectiveBaseDir(t.repo), t.localIdentity(), suffix)

	if err := checkAbsent(path, suffix); err != nil {
		return nil, err
	}
	if err := s.backend.AddWorktreeNewBranch(ctx, t.root, path, branch); err != nil {
		return nil, err
	}
	return s.finish(ctx, t, path, branch)
}

// CreateFromRemote creates a worktree checked out at origin/<branch>.
func (s *Service) CreateFromRemote(ctx context.Context, req RemoteRequest) (*CreateResult, error) {
	branch := strings.TrimPrefix(strings.TrimSpace(req.Branch), "origin/")
	if branch == "" {
		return nil, ErrEmptyName
	}
	if err := ValidateBranchName(branch); err != nil {
		return nil, err
	}

	t := s.resolve(req.RepoRoot)
	name := strings.ReplaceAll(branch, "/", "-")
	path := filepath.Join(s.cfg.EffectiveBaseDir(t.repo), s.remoteIdentity(ctx, t), name)

	if err := checkAbsent(path, name); err != nil {
		return nil, err
	}

	fmt.Fprintf(s.progress, "Fetching branch '%s'...\n", branch)
	if err := s.backend.FetchBranch(ctx, t.root, branch); err != nil {
		return nil, err
	}
	if err := s.backend.AddWorktreeAtRef(ctx, t.root, path, "origin/"+branch); err != nil {
		return nil, err
	}
	return s.finish(ctx, t, path, branch)
}

// CreateFromPR creates a worktree on a local branch named after the head
// branch of pull request Number, tracking origin/<head>.
func (s *Service) CreateFromPR(ctx context.Context, req PRRequest) (*CreateResult, error) {
	if req.Number <= 0 {
		return nil, fmt.Errorf("invalid pull request number %d", req.Number)
	}

	t := s.resolve(req.RepoRoot)
	name := "pr-" + strconv.Itoa(req.Number)
	path := filepath.Join(s.cfg.EffectiveBaseDir(t.repo), s.remoteIdentity(ctx, t), name)

	if err := checkAbsent(path, name); err != nil {
		return nil, err
	}

	head, err := s.backend.PRHeadBranch(ctx, t.root, req.Number)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(s.progress, "Fetching PR #%d...\n", req.Number)
	if err := s.backend.FetchPR(ctx, t.root, req.Number, head); err != nil {
		return nil, err
	}
	upstream := "origin/" + head
	if err := s.backend.AddWorktreeWithBranch(ctx, t.root, path, head, upstream); err != nil {
		return nil, err
	}
	if err := s.backend.SetUpstream(ctx, path, head, upstream); err != nil {
		return nil, err
	}
	return s.finish(ctx, t, path, head)
}

// finish records the new worktree and runs its hooks.
func (s *Service) finish(ctx context.Context, t target, path, branch string) (*CreateResult, error) {
	log := logger.WithComponent("worktree")

	canonical, err := paths.Canonical(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	origin, err := paths.Canonical(t.root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", t.root, err)
	}

	st := &state.WorktreeState{
		WorktreePath: canonical,
		OriginRepo:   origin,
		Branch:       branch,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.Save(st); err != nil {
		return nil, err
	}
	log.Info("created worktree", "path", canonical, "branch", branch, "origin", origin)

	result := &CreateResult{Path: canonical, Branch: branch}
	hookList := s.cfg.EffectiveHooks(t.repo)
	if len(hookList) > 0 {
		result.HookErr = s.hooks.Execute(ctx, hookList, hooks.Context{
			Origin:   origin,
			Worktree: canonical,
			Branch:   branch,
		})
	}
	return result, nil
}
