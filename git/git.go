// Package git provides the git and gh operations gj needs to manage worktrees.
//
// The package is organized into focused modules:
//   - service.go: GitService struct, constructor, CommandError
//   - worktree.go: repository root, worktree add/remove/list
//   - branch.go: remote identity, default/current branch, checkout, fetch, delete
//   - status.go: uncommitted changes, conflicted files
//   - merge.go: merge, abort, MergeConflictError
//   - github.go: pull request lookup and fetch via gh
package git
