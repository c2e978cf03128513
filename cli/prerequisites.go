// Package cli checks the external tools gj shells out to.
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/mirakui/gj/exec"
)

// Prerequisite represents an external CLI tool
type Prerequisite struct {
	Name        string   // Command name (e.g., "git", "gh")
	Required    bool     // Whether every gj command needs it
	Description string   // Human-readable description
	InstallURL  string   // URL for installation instructions
	VersionArgs []string // Arguments that print the version
}

// Git is needed by every lifecycle command.
var Git = Prerequisite{
	Name:        "git",
	Required:    true,
	Description: "Git version control",
	InstallURL:  "https://git-scm.com/downloads",
	VersionArgs: []string{"--version"},
}

// GH is only needed by `gj pr`.
var GH = Prerequisite{
	Name:        "gh",
	Required:    false,
	Description: "GitHub CLI, used by gj pr",
	InstallURL:  "https://cli.github.com",
	VersionArgs: []string{"--version"},
}

// DefaultPrerequisites returns the list of CLI tools gj uses
func DefaultPrerequisites() []Prerequisite {
	return []Prerequisite{Git, GH}
}

// CheckResult contains the result of checking a prerequisite
type CheckResult struct {
	Prerequisite Prerequisite
	Found        bool
	Path         string // Path to the executable if found
	Version      string // Version string if available
	Error        error
}

// Checker resolves prerequisites against PATH.
type Checker struct {
	executor exec.CommandExecutor
	lookPath func(string) (string, error)
}

// NewChecker returns a Checker that runs version commands through executor.
func NewChecker(executor exec.CommandExecutor) *Checker {
	return &Checker{executor: executor, lookPath: exec.LookPath}
}

// Check verifies that a CLI tool is available in PATH
func (c *Checker) Check(ctx context.Context, prereq Prerequisite) CheckResult {
	result := CheckResult{Prerequisite: prereq}

	path, err := c.lookPath(prereq.Name)
	if err != nil {
		result.Error = fmt.Errorf("%s not found in PATH", prereq.Name)
		return result
	}

	result.Found = true
	result.Path = path
	result.Version = c.version(ctx, prereq)
	return result
}

// CheckAll verifies all prerequisites and returns results
func (c *Checker) CheckAll(ctx context.Context, prereqs []Prerequisite) []CheckResult {
	results := make([]CheckResult, len(prereqs))
	for i, prereq := range prereqs {
		results[i] = c.Check(ctx, prereq)
	}
	return results
}

// Ensure returns an error with install instructions when prereq is missing,
// whether or not it is marked required.
func (c *Checker) Ensure(prereq Prerequisite) error {
	if _, err := c.lookPath(prereq.Name); err != nil {
		return fmt.Errorf("%s (%s) is not installed\n    Install: %s", prereq.Name, prereq.Description, prereq.InstallURL)
	}
	return nil
}

// ValidateRequired checks that all required prerequisites are met
// Returns nil if all required tools are found, otherwise returns an error
// describing what's missing
func (c *Checker) ValidateRequired(prereqs []Prerequisite) error {
	var missing []string

	for _, prereq := range prereqs {
		if !prereq.Required {
			continue
		}
		if _, err := c.lookPath(prereq.Name); err != nil {
			missing = append(missing, fmt.Sprintf("  - %s (%s)\n    Install: %s",
				prereq.Name, prereq.Description, prereq.InstallURL))
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required CLI tools:\n%s", strings.Join(missing, "\n"))
	}

	return nil
}

// version returns the first line of the tool's version output, or "".
func (c *Checker) version(ctx context.Context, prereq Prerequisite) string {
	if len(prereq.VersionArgs) == 0 {
		return ""
	}
	output, err := c.executor.Output(ctx, "", prereq.Name, prereq.VersionArgs...)
	if err != nil {
		return ""
	}
	first, _, _ := strings.Cut(string(output), "\n")
	version := strings.TrimSpace(first)
	// Limit length to avoid overly long version strings
	if len(version) > 100 {
		version = version[:100] + "..."
	}
	return version
}

// FormatCheckResults formats check results for display
func FormatCheckResults(results []CheckResult) string {
	var sb strings.Builder

	sb.WriteString("CLI Prerequisites:\n")
	for _, r := range results {
		status := "✓"
		if !r.Found {
			if r.Prerequisite.Required {
				status = "✗"
			} else {
				status = "○"
			}
		}

		fmt.Fprintf(&sb, "  %s %s", status, r.Prerequisite.Name)
		if r.Found && r.Version != "" {
			fmt.Fprintf(&sb, " (%s)", r.Version)
		} else if !r.Found {
			if r.Prerequisite.Required {
				sb.WriteString(" [REQUIRED]")
			} else {
				sb.WriteString(" [optional]")
			}
			if r.Prerequisite.InstallURL != "" {
				fmt.Fprintf(&sb, " install: %s", r.Prerequisite.InstallURL)
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
