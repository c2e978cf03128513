package worktree

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/mirakui/gj/config"
	"github.com/mirakui/gj/git"
	"github.com/mirakui/gj/hooks"
	"github.com/mirakui/gj/prompt"
	"github.com/mirakui/gj/state"
)

// Backend is the version control contract the lifecycle depends on.
// *git.GitService implements it.
type Backend interface {
	RepoIdentity(ctx context.Context, repo string) (string, error)
	AddWorktreeNewBranch(ctx context.Context, repo, path, branch string) error
	AddWorktreeAtRef(ctx context.Context, repo, path, ref string) error
	AddWorktreeWithBranch(ctx context.Context, repo, path, branch, ref string) error
	SetUpstream(ctx context.Context, worktree, branch, upstream string) error
	RemoveWorktree(ctx context.Context, repo, path string, force bool) error
	DeleteBranch(ctx context.Context, repo, branch string, force bool) error
	HasUncommittedChanges(ctx context.Context, dir string) (bool, error)
	CurrentBranch(ctx context.Context, dir string) (string, error)
	DefaultBranch(ctx context.Context, repo string) (string, error)
	Merge(ctx context.Context, dir, branch string) error
	AbortMerge(ctx context.Context, dir string) error
	ListWorktrees(ctx context.Context, repo string) ([]git.Worktree, error)
	FetchBranch(ctx context.Context, repo, branch string) error
	PRHeadBranch(ctx context.Context, repo string, number int) (string, error)
	FetchPR(ctx context.Context, repo string, number int, head string) error
}

// HookRunner runs post-create hooks. *hooks.Runner implements it.
type HookRunner interface {
	Execute(ctx context.Context, hooks []config.Hook, hc hooks.Context) error
}

var (
	_ Backend    = (*git.GitService)(nil)
	_ HookRunner = (*hooks.Runner)(nil)
)

var (
	// ErrAlreadyExists is matched by the error returned when a create
	// targets an existing path.
	ErrAlreadyExists = errors.New("worktree already exists")
	ErrEmptyName     = errors.New("worktree name cannot be empty")
	ErrNoMatch       = errors.New("no worktree found")
	ErrNoWorktrees   = errors.New("no managed worktrees found")
	// ErrWorktreeMissing is returned when a record points at a deleted directory.
	ErrWorktreeMissing = errors.New("worktree no longer exists")
	ErrNotManaged      = errors.New("not in a gj-managed worktree")
	ErrUncommitted     = errors.New("worktree has uncommitted changes")
	ErrNoMergeTarget   = errors.New("no worktree has the default branch checked out")
	ErrDetached        = errors.New("worktree HEAD is detached")
)

// ExistsError is returned when the target path of a create already exists.
type ExistsError struct {
	Path string
	Name string // Token that `gj cd` accepts for the existing worktree
}

func (e *ExistsError) Error() string {
	return fmt.Sprintf("worktree already exists at %s. Use `gj cd %s` to switch to it.", e.Path, e.Name)
}

func (e *ExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// AmbiguousError is returned by Locate when a name matches several worktrees.
type AmbiguousError struct {
	Token      string
	Candidates []string // Display names
}

func (e *AmbiguousError) Error() string {
	msg := fmt.Sprintf("multiple worktrees match '%s'. Please be more specific:", e.Token)
	for _, c := range e.Candidates {
		msg += "\n  - " + c
	}
	return msg
}

// Service runs worktree lifecycle operations.
type Service struct {
	backend  Backend
	cfg      *config.Config
	store    *state.Store
	hooks    HookRunner
	selector prompt.Selector

	now      func() time.Time
	suffix   func() string
	progress io.Writer
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now, which stamps records and dates branch names.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithSuffixGenerator replaces RandomSuffix.
func WithSuffixGenerator(gen func() string) Option {
	return func(s *Service) { s.suffix = gen }
}

// WithProgress sets where progress messages such as "Fetching PR #3..."
// are written. They are discarded by default.
func WithProgress(w io.Writer) Option {
	return func(s *Service) { s.progress = w }
}

// NewService wires a lifecycle service.
func NewService(backend Backend, cfg *config.Config, store *state.Store, runner HookRunner, selector prompt.Selector, opts ...Option) *Service {
	s := &Service{
		backend:  backend,
		cfg:      cfg,
		store:    store,
		hooks:    runner,
		selector: selector,
		now:      time.Now,
		suffix:   RandomSuffix,
		progress: io.Discard,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
