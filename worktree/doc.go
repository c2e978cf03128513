// Package worktree creates, finds, lists, and tears down gj-managed git
// worktrees.
//
// # Overview
//
// A managed worktree is a git worktree plus a state record (package state)
// that remembers where it came from. The Service sequences three
// collaborators: a Backend that talks to git, the state store, and a hook
// runner for post-create automation.
//
// # Lifecycle
//
// 1. Create: one of CreateNew, CreateFromRemote or CreateFromPR:
//   - The target path is computed from the effective base directory and
//     the repository identity. If it already exists nothing else happens.
//   - The backend materializes the worktree (new branch, remote ref or PR
//     head).
//   - A state record is saved.
//   - Post-create hooks run. A hook failure is reported in
//     CreateResult.HookErr; the worktree and record are kept.
//
// 2. Locate: Locate resolves a name typed by the user (or "@" for the
// origin repository) to a worktree path. With no name the user picks from
// a list through a prompt.Selector.
//
// 3. Exit: Exit tears down the worktree containing the working directory,
// optionally merging its branch into the default branch first. A merge
// conflict is aborted and leaves everything in place.
//
// # Worktree Structure
//
// Worktrees are stored under the effective base directory:
//
//	<base>/<repo-name>/<suffix>           gj new
//	<base>/<owner>/<repo>/<branch>        gj checkout
//	<base>/<owner>/<repo>/pr-<number>     gj pr
//
// The display name of a worktree is its path below the "worktrees/"
// directory, or its last two path segments when stored elsewhere.
package worktree
