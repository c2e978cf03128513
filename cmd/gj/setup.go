package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mirakui/gj/cli"
	"github.com/mirakui/gj/config"
)

// shellFunction wraps the binary: when gj succeeds and prints a directory,
// the shell changes into it.
const shellFunction = `function gj() {
  local output
  output=$(command gj "$@")
  local exit_code=$?

  if [[ $exit_code -eq 0 && -d "$output" ]]; then
    cd "$output"
  else
    [[ -n "$output" ]] && echo "$output"
    return $exit_code
  fi
}
`

var shellInits = map[string]string{
	"zsh":  shellFunction,
	"bash": shellFunction,
}

func (a *app) initCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the gj configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.layout.ConfigFile
			if err := config.WriteTemplate(path, force); err != nil {
				return err
			}
			fmt.Fprintf(a.stderr, "Created configuration file at %s\n", path)
			fmt.Fprintln(a.stderr, "\nEdit this file to configure your repositories and hooks.")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing configuration file")
	return cmd
}

func (a *app) shellInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "shell-init <zsh|bash>",
		Short:     "Print the shell function that lets gj change directory",
		Long:      "Print a shell function wrapping gj. Add `eval \"$(command gj shell-init zsh)\"` to your shell rc file.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"zsh", "bash"},
		RunE: func(cmd *cobra.Command, args []string) error {
			script, ok := shellInits[args[0]]
			if !ok {
				return fmt.Errorf("unsupported shell: %s. Supported shells: zsh, bash", args[0])
			}
			fmt.Fprint(a.stdout, script)
			return nil
		},
	}
}

func (a *app) doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the tools gj depends on are installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			checker := cli.NewChecker(a.executor)
			prereqs := cli.DefaultPrerequisites()

			fmt.Fprint(a.stderr, cli.FormatCheckResults(checker.CheckAll(cmd.Context(), prereqs)))
			fmt.Fprintf(a.stderr, "Config: %s\n", a.layout.ConfigFile)
			if _, err := a.loadConfig(true); err != nil {
				fmt.Fprintf(a.stderr, "  %v\n", err)
			}
			fmt.Fprintf(a.stderr, "Log: %s\n", a.layout.LogFile())
			return checker.ValidateRequired(prereqs)
		},
	}
}
