package worktree

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mirakui/gj/state"
)

// OriginToken is the Locate token that names the origin repository of the
// current worktree.
const OriginToken = "@"

// Locate resolves token to a directory. "@" is the origin repository of
// the worktree containing the working directory; an empty token lets the
// user choose among existing worktrees.
func (s *Service) Locate(ctx context.Context, token string) (string, error) {
	switch token {
	case OriginToken:
		st, err := s.store.LoadCurrent()
		if err != nil {
			return "", err
		}
		if st == nil {
			return "", ErrNotManaged
		}
		return st.OriginRepo, nil
	case "":
		return s.choose()
	}

	states, err := s.store.ListAll()
	if err != nil {
		return "", err
	}

	var matches []state.WorktreeState
	for _, st := range states {
		if matchesToken(st.WorktreePath, token) {
			matches = append(matches, st)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w matching '%s'", ErrNoMatch, token)
	case 1:
		path := matches[0].WorktreePath
		if !exists(path) {
			return "", fmt.Errorf("%w at %s", ErrWorktreeMissing, path)
		}
		return path, nil
	default:
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = DisplayName(m.WorktreePath)
		}
		return "", &AmbiguousError{Token: token, Candidates: names}
	}
}

func matchesToken(path, token string) bool {
	if filepath.Base(path) == token {
		return true
	}
	name := DisplayName(path)
	return name == token || strings.HasSuffix(name, "/"+token)
}

func (s *Service) choose() (string, error) {
	states, err := s.store.ListAll()
	if err != nil {
		return "", err
	}
	if len(states) == 0 {
		return "", fmt.Errorf("%w. Create one with `gj new` or `gj pr`.", ErrNoWorktrees)
	}

	var existing []state.WorktreeState
	var labels []string
	for _, st := range states {
		if exists(st.WorktreePath) {
			existing = append(existing, st)
			labels = append(labels, fmt.Sprintf("%s (%s)", DisplayName(st.WorktreePath), st.Branch))
		}
	}
	if len(existing) == 0 {
		return "", fmt.Errorf("%w: every recorded worktree has been deleted", ErrNoWorktrees)
	}

	idx, err := s.selector.Select("Select worktree", labels)
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(existing) {
		return "", errors.New("selection out of range")
	}
	return existing[idx].WorktreePath, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
