package worktree

import (
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"
)

// MaxBranchNameValidation is the maximum length for user-provided branch names.
const MaxBranchNameValidation = 100

// invalidBranchRuneRegex matches the characters git forbids anywhere in a
// ref name: control characters, space, ~, ^, :, ?, *, [ and \.
var invalidBranchRuneRegex = regexp.MustCompile(`[\x00-\x20\x7f~^:?*\[\\]`)

// ValidateBranchName checks if a remote branch name is safe to pass to git.
// Anything else git accepts in a ref name, non-ASCII letters included, passes.
func ValidateBranchName(branch string) error {
	if len(branch) > MaxBranchNameValidation {
		return fmt.Errorf("branch name too long (max %d characters)", MaxBranchNameValidation)
	}
	if strings.HasPrefix(branch, "-") {
		return fmt.Errorf("branch name cannot start with '-'")
	}
	if strings.HasSuffix(branch, ".lock") {
		return fmt.Errorf("branch name cannot end with '.lock'")
	}
	if strings.HasSuffix(branch, ".") || strings.HasSuffix(branch, "/") || strings.HasPrefix(branch, "/") {
		return fmt.Errorf("branch name cannot start with '/' or end with '.' or '/'")
	}
	for _, bad := range []string{"..", "@{", "//", "/."} {
		if strings.Contains(branch, bad) {
			return fmt.Errorf("branch name cannot contain '%s'", bad)
		}
	}
	if branch == "@" || strings.HasPrefix(branch, ".") {
		return fmt.Errorf("branch name %q is not a valid ref", branch)
	}
	if invalidBranchRuneRegex.MatchString(branch) {
		return fmt.Errorf("branch name contains invalid characters (space, ~, ^, :, ?, *, [, \\ or control characters)")
	}
	return nil
}

// Sanitize replaces every rune other than a letter, digit, '-' or '_' with
// '-'. Surrounding whitespace is mapped too; callers that read interactive
// input trim it first.
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, s)
}

var (
	adjectives = []string{
		"brave", "calm", "clever", "eager", "fancy", "gentle", "happy", "jolly",
		"kind", "lively", "lucky", "mighty", "nimble", "proud", "quick", "quiet",
		"rapid", "shiny", "silent", "swift", "tidy", "vivid", "witty", "zesty",
	}
	nouns = []string{
		"badger", "bison", "cedar", "comet", "falcon", "fern", "harbor", "heron",
		"lagoon", "maple", "meadow", "otter", "panda", "pebble", "pine", "raven",
		"river", "sparrow", "summit", "tiger", "tulip", "walrus", "willow", "zebra",
	}
)

// RandomSuffix returns a random "adjective-noun" token.
func RandomSuffix() string {
	return adjectives[rand.IntN(len(adjectives))] + "-" + nouns[rand.IntN(len(nouns))]
}

const managedMarker = "worktrees/"

// DisplayName returns the part of path after "worktrees/", or its last two
// segments when path is not under a worktrees directory.
func DisplayName(path string) string {
	slashed := filepath.ToSlash(path)
	if idx := strings.Index(slashed, managedMarker); idx >= 0 {
		return slashed[idx+len(managedMarker):]
	}

	dir, last := filepath.Split(filepath.Clean(path))
	parent := filepath.Base(dir)
	if parent == "/" || parent == "." || dir == "" {
		return last
	}
	return parent + "/" + last
}

// RelativeAge renders the time elapsed between then and now for humans.
func RelativeAge(then, now time.Time) string {
	d := now.Sub(then)
	switch {
	case d >= 24*time.Hour:
		return plural(int(d/(24*time.Hour)), "day")
	case d >= time.Hour:
		return plural(int(d/time.Hour), "hour")
	case d >= time.Minute:
		return plural(int(d/time.Minute), "minute")
	default:
		return "just now"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
