package git

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gogit "github.com/go-git/go-git/v5"

	"github.com/mirakui/gj/logger"
)

// ErrNoRemoteIdentity is returned by RepoIdentity when the repository has
// no origin remote or its URL does not name an owner/repo pair.
var ErrNoRemoteIdentity = errors.New("origin remote does not identify an owner/repo")

// RepoIdentity returns "owner/repo" for the origin remote of repo. The
// remote is read from the repository config with go-git, which also
// resolves the shared config of a linked worktree.
func (s *GitService) RepoIdentity(ctx context.Context, repo string) (string, error) {
	r, err := gogit.PlainOpenWithOptions(repo, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to open repository %s: %w", repo, err)
	}

	remote, err := r.Remote("origin")
	if errors.Is(err, gogit.ErrRemoteNotFound) {
		return "", ErrNoRemoteIdentity
	}
	if err != nil {
		return "", fmt.Errorf("failed to read origin remote: %w", err)
	}

	for _, url := range remote.Config().URLs {
		if ownerRepo := ExtractOwnerRepo(url); ownerRepo != "" {
			return ownerRepo, nil
		}
	}
	return "", ErrNoRemoteIdentity
}

// ExtractOwnerRepo extracts "owner/repo" from a git remote URL.
// Supports SSH (git@github.com:owner/repo.git, ssh://git@github.com/owner/repo)
// and HTTPS (https://github.com/owner/repo.git) formats.
// Returns empty string if the URL cannot be parsed.
func ExtractOwnerRepo(remoteURL string) string {
	remoteURL = strings.TrimSpace(remoteURL)
	if remoteURL == "" {
		return ""
	}

	var path string
	if rest, ok := cutScheme(remoteURL); ok {
		// Skip the host (and any user@ or :port)
		_, after, found := strings.Cut(rest, "/")
		if !found {
			return ""
		}
		path = after
	} else if _, after, found := strings.Cut(remoteURL, ":"); found && strings.Contains(remoteURL, "@") {
		// scp-like syntax: git@github.com:owner/repo.git
		path = after
	} else {
		return ""
	}

	path = strings.TrimSuffix(strings.TrimSuffix(path, "/"), ".git")
	owner, repo, ok := strings.Cut(path, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return ""
	}
	return path
}

func cutScheme(url string) (string, bool) {
	for _, prefix := range []string{"https://", "http://", "ssh://", "git://"} {
		if rest, ok := strings.CutPrefix(url, prefix); ok {
			return rest, true
		}
	}
	return "", false
}

// DefaultBranch returns the repository's default branch: the target of
// origin/HEAD when set, otherwise main or master if either exists locally.
func (s *GitService) DefaultBranch(ctx context.Context, repo string) (string, error) {
	out, err := s.output(ctx, repo, "git symbolic-ref", "git", "symbolic-ref", "refs/remotes/origin/HEAD")
	if err == nil {
		// Output is like "refs/remotes/origin/main"
		if branch, ok := strings.CutPrefix(out, "refs/remotes/origin/"); ok && branch != "" {
			return branch, nil
		}
	}

	for _, candidate := range []string{"main", "master"} {
		_, _, err := s.executor.Run(ctx, repo, "git", "rev-parse", "--verify", "--quiet", "refs/heads/"+candidate)
		if err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("could not determine default branch of %s", repo)
}

// CurrentBranch returns the branch checked out in dir, or "" when HEAD is
// detached.
func (s *GitService) CurrentBranch(ctx context.Context, dir string) (string, error) {
	branch, err := s.output(ctx, dir, "git rev-parse", "git", "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	if branch == "HEAD" {
		return "", nil
	}
	return branch, nil
}

// Checkout checks out branch in repo. It belongs to the backend command
// set alongside Merge and AbortMerge; the worktree lifecycle merges into
// whichever worktree already has the target branch checked out, so it
// never switches branches itself.
func (s *GitService) Checkout(ctx context.Context, repo, branch string) error {
	if err := s.combined(ctx, repo, "git checkout", "git", "checkout", branch); err != nil {
		return err
	}
	logger.WithComponent("git").Info("checked out branch", "branch", branch, "repo", repo)
	return nil
}

// DeleteBranch deletes a local branch. force uses -D, which also deletes
// unmerged branches.
func (s *GitService) DeleteBranch(ctx context.Context, repo, branch string, force bool) error {
	flag := "-d"
	if force {
		flag = "-D"
	}
	if err := s.combined(ctx, repo, "git branch "+flag, "git", "branch", flag, branch); err != nil {
		return err
	}
	logger.WithComponent("git").Info("deleted branch", "branch", branch, "force", force)
	return nil
}

// SetUpstream sets the upstream of branch, running inside worktree.
func (s *GitService) SetUpstream(ctx context.Context, worktree, branch, upstream string) error {
	return s.combined(ctx, worktree, "git branch --set-upstream-to",
		"git", "branch", "--set-upstream-to", upstream, branch)
}

// FetchBranch fetches a single branch from origin.
func (s *GitService) FetchBranch(ctx context.Context, repo, branch string) error {
	if err := s.combined(ctx, repo, "git fetch", "git", "fetch", "origin", branch); err != nil {
		return err
	}
	logger.WithComponent("git").Debug("fetched branch", "branch", branch)
	return nil
}
