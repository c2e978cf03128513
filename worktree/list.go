package worktree

import (
	"context"

	"github.com/mirakui/gj/state"
)

// Entry is one row of List.
type Entry struct {
	State       state.WorktreeState
	DisplayName string
	Age         string
	Exists      bool
}

// List returns every recorded worktree, newest first.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	states, err := s.store.ListAll()
	if err != nil {
		return nil, err
	}

	now := s.now()
	entries := make([]Entry, 0, len(states))
	for _, st := range states {
		entries = append(entries, Entry{
			State:       st,
			DisplayName: DisplayName(st.WorktreePath),
			Age:         RelativeAge(st.CreatedAt, now),
			Exists:      exists(st.WorktreePath),
		})
	}
	return entries, nil
}
