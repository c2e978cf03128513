package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mirakui/gj/cli"
	"github.com/mirakui/gj/worktree"
)

func (a *app) newCmd() *cobra.Command {
	var noCd, random bool

	cmd := &cobra.Command{
		Use:   "new [suffix]",
		Short: "Create a worktree on a new branch",
		Long:  "Create a worktree on a new branch named <prefix>/<YYYYMMDD>_<suffix>. Without a suffix gj asks for one.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			root, err := a.repoRoot(ctx)
			if err != nil {
				return err
			}
			cfg, err := a.loadConfig(true)
			if err != nil {
				return err
			}

			req := worktree.NewRequest{RepoRoot: root, RandomSuffix: random}
			switch {
			case len(args) == 1:
				req.Suffix = args[0]
			case !random:
				req.Suffix, err = a.terminal.Input("Enter branch name (e.g., awesome-feature)")
				if err != nil {
					return err
				}
			}

			res, err := a.service(cfg).CreateNew(ctx, req)
			if err != nil {
				return err
			}
			return a.reportCreated(res, noCd, "")
		},
	}
	cmd.Flags().BoolVar(&noCd, "no-cd", false, "do not change directory, just print the path")
	cmd.Flags().BoolVar(&random, "random-suffix", false, "generate a random suffix instead of asking")
	return cmd
}

func (a *app) checkoutCmd() *cobra.Command {
	var noCd bool

	cmd := &cobra.Command{
		Use:     "checkout <remote-branch>",
		Aliases: []string{"co"},
		Short:   "Create a worktree from a remote branch",
		Long:    "Fetch a branch from origin and create a worktree at it. The branch may be given as main, feature/foo, or origin/main.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			root, err := a.repoRoot(ctx)
			if err != nil {
				return err
			}
			cfg, err := a.loadConfig(true)
			if err != nil {
				return err
			}

			res, err := a.service(cfg).CreateFromRemote(ctx, worktree.RemoteRequest{RepoRoot: root, Branch: args[0]})
			if err != nil {
				return err
			}
			return a.reportCreated(res, noCd, "")
		},
	}
	cmd.Flags().BoolVar(&noCd, "no-cd", false, "do not change directory, just print the path")
	return cmd
}

func (a *app) prCmd() *cobra.Command {
	var noCd bool

	cmd := &cobra.Command{
		Use:   "pr <number>",
		Short: "Create a worktree for reviewing a GitHub pull request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			number, err := strconv.Atoi(args[0])
			if err != nil || number <= 0 {
				return fmt.Errorf("invalid pull request number %q", args[0])
			}
			if err := cli.NewChecker(a.executor).Ensure(cli.GH); err != nil {
				return err
			}

			root, err := a.repoRoot(ctx)
			if err != nil {
				return err
			}
			cfg, err := a.loadConfig(true)
			if err != nil {
				return err
			}

			res, err := a.service(cfg).CreateFromPR(ctx, worktree.PRRequest{RepoRoot: root, Number: number})
			if err != nil {
				return err
			}
			return a.reportCreated(res, noCd, fmt.Sprintf(" (PR #%d)", number))
		},
	}
	cmd.Flags().BoolVar(&noCd, "no-cd", false, "do not change directory, just print the path")
	return cmd
}

// reportCreated prints the outcome of a create. stdout receives the path
// unless noCd is set, in which case it receives a line the shell wrapper
// will echo instead of cd-ing into.
func (a *app) reportCreated(res *worktree.CreateResult, noCd bool, branchNote string) error {
	if res.HookErr != nil {
		fmt.Fprintf(a.stderr, "Warning: Hook failed: %v\n", res.HookErr)
	}
	if noCd {
		fmt.Fprintf(a.stderr, "Branch: %s%s\n", res.Branch, branchNote)
		fmt.Fprintf(a.stdout, "Created worktree: %s\n", res.Path)
		return nil
	}
	fmt.Fprintf(a.stderr, "Created worktree: %s\n", worktree.DisplayName(res.Path))
	fmt.Fprintf(a.stderr, "Branch: %s%s\n", res.Branch, branchNote)
	fmt.Fprintln(a.stdout, res.Path)
	return nil
}
