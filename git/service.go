package git

import (
	"context"
	"fmt"
	"strings"

	gjexec "github.com/mirakui/gj/exec"
)

// GitService provides git operations with explicit dependency injection.
// Each GitService instance holds its own executor, enabling proper testing
// and avoiding global state.
type GitService struct {
	executor gjexec.CommandExecutor
}

// NewGitService creates a new GitService with the default real executor.
func NewGitService() *GitService {
	return &GitService{executor: gjexec.NewRealExecutor()}
}

// NewGitServiceWithExecutor creates a new GitService with a custom executor.
// This is primarily used for testing where a mock executor is needed.
func NewGitServiceWithExecutor(exec gjexec.CommandExecutor) *GitService {
	return &GitService{executor: exec}
}

// CommandError is returned when a git or gh command fails. Output holds the
// command's trimmed diagnostic output.
type CommandError struct {
	Op     string
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Op, e.Output)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// combined runs a command whose stdout and stderr are only interesting on
// failure.
func (s *GitService) combined(ctx context.Context, dir, op, name string, args ...string) error {
	output, err := s.executor.CombinedOutput(ctx, dir, name, args...)
	if err != nil {
		return &CommandError{Op: op, Output: strings.TrimSpace(string(output)), Err: err}
	}
	return nil
}

// output runs a command and returns its trimmed stdout. On failure the
// error carries stderr.
func (s *GitService) output(ctx context.Context, dir, op, name string, args ...string) (string, error) {
	stdout, stderr, err := s.executor.Run(ctx, dir, name, args...)
	if err != nil {
		return "", &CommandError{Op: op, Output: strings.TrimSpace(string(stderr)), Err: err}
	}
	return strings.TrimSpace(string(stdout)), nil
}
