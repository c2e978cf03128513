package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/mirakui/gj/worktree"
)

// outputFormat is the value of `gj list --format`.
type outputFormat string

const (
	formatText outputFormat = "text"
	formatJSON outputFormat = "json"
	formatYAML outputFormat = "yaml"
)

func (f *outputFormat) String() string { return string(*f) }

func (f *outputFormat) Set(v string) error {
	switch outputFormat(v) {
	case formatText, formatJSON, formatYAML:
		*f = outputFormat(v)
		return nil
	}
	return fmt.Errorf("must be one of text, json, yaml")
}

func (f *outputFormat) Type() string { return "format" }

var _ pflag.Value = (*outputFormat)(nil)

// listItem is the machine-readable form of a list entry.
type listItem struct {
	Name      string    `json:"name" yaml:"name"`
	Path      string    `json:"path" yaml:"path"`
	Branch    string    `json:"branch" yaml:"branch"`
	Origin    string    `json:"origin_repo" yaml:"origin_repo"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Exists    bool      `json:"exists" yaml:"exists"`
}

func (a *app) listCmd() *cobra.Command {
	format := formatText

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List managed worktrees",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(false)
			if err != nil {
				return err
			}
			entries, err := a.service(cfg).List(cmd.Context())
			if err != nil {
				return err
			}

			if format == formatText {
				if len(entries) == 0 {
					fmt.Fprintln(a.stderr, "No managed worktrees found.")
					return nil
				}
				for _, e := range entries {
					missing := ""
					if !e.Exists {
						missing = " (not found)"
					}
					fmt.Fprintf(a.stdout, "%-30s %-40s %s%s\n", e.DisplayName, e.State.Branch, e.Age, missing)
				}
				return nil
			}

			items := make([]listItem, 0, len(entries))
			for _, e := range entries {
				items = append(items, listItem{
					Name:      e.DisplayName,
					Path:      e.State.WorktreePath,
					Branch:    e.State.Branch,
					Origin:    e.State.OriginRepo,
					CreatedAt: e.State.CreatedAt,
					Exists:    e.Exists,
				})
			}
			if format == formatJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(items)
			}
			enc := yaml.NewEncoder(a.stdout)
			enc.SetIndent(2)
			if err := enc.Encode(items); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	cmd.Flags().Var(&format, "format", "output format: text, json or yaml")
	return cmd
}

func (a *app) cdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cd [name|@]",
		Short: "Change to a worktree directory",
		Long:  "Print the directory of the named worktree. '@' names the origin repository of the current worktree; without a name gj asks which worktree to use.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := ""
			if len(args) == 1 {
				token = args[0]
			}
			cfg, err := a.loadConfig(false)
			if err != nil {
				return err
			}
			path, err := a.service(cfg).Locate(cmd.Context(), token)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, path)
			return nil
		},
	}
}

func (a *app) exitCmd() *cobra.Command {
	var req worktree.ExitRequest

	cmd := &cobra.Command{
		Use:   "exit",
		Short: "Remove the current worktree and return to its origin",
		Long:  "Remove the worktree containing the working directory, delete its branch, and print the directory to return to. With --merge the branch is merged into the default branch first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(false)
			if err != nil {
				return err
			}
			res, err := a.service(cfg).Exit(cmd.Context(), req)
			if err != nil {
				return err
			}

			if res.Merged {
				fmt.Fprintf(a.stderr, "Merged %s into %s\n", res.Branch, res.Destination)
			}
			if res.BranchErr != nil {
				fmt.Fprintf(a.stderr, "Warning: failed to delete branch %s: %v\n", res.Branch, res.BranchErr)
			}
			fmt.Fprintln(a.stdout, res.Destination)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&req.Force, "force", "f", false, "remove even with uncommitted changes")
	cmd.Flags().BoolVarP(&req.Merge, "merge", "m", false, "merge the branch into the default branch before removing")
	return cmd
}
