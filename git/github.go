package git

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mirakui/gj/logger"
)

// PRHeadBranch returns the head branch name of pull request number using
// the gh CLI.
func (s *GitService) PRHeadBranch(ctx context.Context, repo string, number int) (string, error) {
	branch, err := s.output(ctx, repo, "gh pr view",
		"gh", "pr", "view", strconv.Itoa(number), "--json", "headRefName", "-q", ".headRefName")
	if err != nil {
		return "", fmt.Errorf("failed to get PR #%d info: %w", number, err)
	}
	if branch == "" {
		return "", fmt.Errorf("PR #%d not found or has no branch", number)
	}
	return branch, nil
}

// FetchPR fetches the head of pull request number into
// refs/remotes/origin/<head>. The pull/<n>/head ref also works for pull
// requests opened from forks, whose branches are not on origin.
func (s *GitService) FetchPR(ctx context.Context, repo string, number int, head string) error {
	refspec := fmt.Sprintf("+pull/%d/head:refs/remotes/origin/%s", number, head)
	if err := s.combined(ctx, repo, "git fetch", "git", "fetch", "origin", refspec); err != nil {
		return err
	}
	logger.WithComponent("git").Debug("fetched pull request", "number", number, "head", head)
	return nil
}
