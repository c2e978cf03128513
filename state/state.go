// Package state persists one small JSON record per managed worktree.
//
// Records live in a single directory and are named by a hash of the
// worktree's canonical path, so a worktree can be looked up from its path
// without an index. Writes are serialized across processes with an advisory
// lock file; reads take no lock.
package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/mirakui/gj/logger"
	"github.com/mirakui/gj/paths"
)

const lockFileName = ".lock"

// ErrCorrupt is returned when a record exists but cannot be decoded or is
// missing a field.
var ErrCorrupt = errors.New("corrupt worktree state")

// WorktreeState is the persisted record of a managed worktree.
type WorktreeState struct {
	WorktreePath string    `json:"worktree_path"`
	OriginRepo   string    `json:"origin_repo"`
	Branch       string    `json:"branch"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store reads and writes records under a state directory.
type Store struct {
	dir string
}

// New returns a store rooted at dir. The directory is created on first save.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the state directory.
func (s *Store) Dir() string {
	return s.dir
}

// PathHash returns the record identifier for a worktree path: the first
// 8 bytes of the SHA-256 of the path, hex encoded.
func PathHash(path string) string {
	sum := sha256.Sum256([]byte(path))
	return hex.EncodeToString(sum[:8])
}

func (s *Store) recordPath(worktreePath string) (string, error) {
	canonical, err := paths.Canonical(worktreePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", worktreePath, err)
	}
	return filepath.Join(s.dir, PathHash(canonical)+".json"), nil
}

// lock takes the store's write lock, creating the directory if needed.
func (s *Store) lock() (*flock.Flock, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	fl := flock.New(filepath.Join(s.dir, lockFileName))
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("failed to lock state directory: %w", err)
	}
	return fl, nil
}

// Save writes st, replacing any existing record for the same path.
func (s *Store) Save(st *WorktreeState) error {
	file, err := s.recordPath(st.WorktreePath)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	fl, err := s.lock()
	if err != nil {
		return err
	}
	defer func() { _ = fl.Unlock() }()

	if err := os.WriteFile(file, data, 0644); err != nil {
		return fmt.Errorf("failed to write state %s: %w", file, err)
	}

	logger.WithComponent("state").Debug("saved state", "worktree", st.WorktreePath, "file", filepath.Base(file))
	return nil
}

// Load returns the record for worktreePath, or nil when none exists.
func (s *Store) Load(worktreePath string) (*WorktreeState, error) {
	file, err := s.recordPath(worktreePath)
	if err != nil {
		return nil, err
	}
	return readRecord(file)
}

func readRecord(file string) (*WorktreeState, error) {
	data, err := os.ReadFile(file)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state %s: %w", file, err)
	}

	var st WorktreeState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, file, err)
	}
	if err := st.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, file, err)
	}
	return &st, nil
}

// validate rejects records with a missing field, including a JSON null.
func (st *WorktreeState) validate() error {
	switch {
	case st.WorktreePath == "":
		return errors.New("missing worktree_path")
	case st.OriginRepo == "":
		return errors.New("missing origin_repo")
	case st.Branch == "":
		return errors.New("missing branch")
	case st.CreatedAt.IsZero():
		return errors.New("missing created_at")
	}
	return nil
}

// LoadCurrent returns the record of the worktree containing the working
// directory, or nil when it is not inside a managed worktree.
func (s *Store) LoadCurrent() (*WorktreeState, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return s.LoadContaining(cwd)
}

// LoadContaining returns the record for dir or its nearest ancestor that
// has one.
func (s *Store) LoadContaining(dir string) (*WorktreeState, error) {
	current, err := paths.Canonical(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	for {
		st, err := s.Load(current)
		if err != nil || st != nil {
			return st, err
		}
		parent := filepath.Dir(current)
		if parent == current {
			return nil, nil
		}
		current = parent
	}
}

// Delete removes the record for st. A missing record is not an error.
func (s *Store) Delete(st *WorktreeState) error {
	file, err := s.recordPath(st.WorktreePath)
	if err != nil {
		return err
	}

	fl, err := s.lock()
	if err != nil {
		return err
	}
	defer func() { _ = fl.Unlock() }()

	if err := os.Remove(file); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete state %s: %w", file, err)
	}

	logger.WithComponent("state").Debug("deleted state", "worktree", st.WorktreePath)
	return nil
}

// ListAll returns every readable record, newest first. Records that cannot
// be read or decoded are skipped.
func (s *Store) ListAll() ([]WorktreeState, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state directory: %w", err)
	}

	log := logger.WithComponent("state")
	var states []WorktreeState
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		st, err := readRecord(filepath.Join(s.dir, entry.Name()))
		if err != nil || st == nil {
			log.Debug("skipping state file", "file", entry.Name(), "error", err)
			continue
		}
		states = append(states, *st)
	}

	sort.SliceStable(states, func(i, j int) bool {
		return states[i].CreatedAt.After(states[j].CreatedAt)
	})
	return states, nil
}
