// Command gj manages temporary git worktrees.
//
// gj prints the directory the caller should move to on stdout and
// everything else on stderr; `gj shell-init` installs a shell function that
// performs the cd.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mirakui/gj/config"
	"github.com/mirakui/gj/exec"
	"github.com/mirakui/gj/git"
	"github.com/mirakui/gj/hooks"
	"github.com/mirakui/gj/logger"
	"github.com/mirakui/gj/paths"
	"github.com/mirakui/gj/prompt"
	"github.com/mirakui/gj/state"
	"github.com/mirakui/gj/worktree"
)

func main() {
	os.Exit(run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}

// app carries what every subcommand needs once the root command has run.
type app struct {
	stdin          io.Reader
	stdout, stderr io.Writer

	debug    bool
	layout   paths.Layout
	executor exec.CommandExecutor
	git      *git.GitService
	terminal *prompt.Terminal
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if stdin == nil {
		stdin = os.Stdin
	}
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:           "gj",
		Short:         "Manage temporary git worktree environments",
		Long:          "gj creates git worktrees under a managed directory, remembers where they came from, and cleans them up when you are done.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "write debug entries to the log file")

	rootCmd.AddCommand(
		a.newCmd(),
		a.checkoutCmd(),
		a.prCmd(),
		a.listCmd(),
		a.cdCmd(),
		a.exitCmd(),
		a.initCmd(),
		a.shellInitCmd(),
		a.doctorCmd(),
	)
	rootCmd.SetArgs(args[1:])
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stderr)
	rootCmd.SetErr(stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer logger.Close()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, prompt.ErrCancelled) {
			fmt.Fprintln(stderr, "Cancelled.")
			return 1
		}
		logger.Get().Error("command failed", "args", args[1:], "error", err)
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// setup resolves the layout and opens the log file.
func (a *app) setup() error {
	layout, err := paths.Resolve()
	if err != nil {
		return err
	}
	a.layout = layout

	if err := logger.Init(logger.Options{
		Path:         layout.LogFile(),
		Debug:        a.debug,
		InvocationID: uuid.NewString(),
	}); err != nil {
		// The log file is diagnostic only.
		fmt.Fprintf(a.stderr, "Warning: logging disabled: %v\n", err)
	}
	if a.debug {
		logger.SetDebug(true)
	}

	a.executor = exec.NewRealExecutor()
	a.git = git.NewGitServiceWithExecutor(a.executor)
	a.terminal = &prompt.Terminal{In: io.NopCloser(a.stdin), Out: a.stderr}
	return nil
}

// loadConfig reads config.toml. Commands that create worktrees require it.
func (a *app) loadConfig(required bool) (*config.Config, error) {
	return config.Load(a.layout, required)
}

func (a *app) service(cfg *config.Config) *worktree.Service {
	return worktree.NewService(
		a.git,
		cfg,
		state.New(a.layout.StateDir),
		hooks.NewRunner(a.executor, a.stderr),
		a.terminal,
		worktree.WithProgress(a.stderr),
	)
}

// repoRoot returns the top level of the repository containing the working
// directory.
func (a *app) repoRoot(ctx context.Context) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return a.git.RepoRoot(ctx, cwd)
}
