package worktree

import (
	"strings"
	"testing"
	"time"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"feature", "feature"},
		{"feature x", "feature-x"},
		{" a", "-a"},
		{"fix/login bug", "fix-login-bug"},
		{"under_score-dash", "under_score-dash"},
		{"café", "café"},
		{"a.b:c", "a-b-c"},
		{"   ", "---"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidateBranchName(t *testing.T) {
	valid := []string{"main", "feature/login", "release-1.2", "user_x/fix", "feature/über", "fix+1", "v1@2"}
	for _, name := range valid {
		if err := ValidateBranchName(name); err != nil {
			t.Errorf("ValidateBranchName(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{
		"-leading-dash",
		"has space",
		"a..b",
		"topic.lock",
		"weird~name",
		"colon:name",
		"star*",
		"brack[et",
		"back\\slash",
		"tab\tname",
		"trailing/",
		"/leading",
		"double//slash",
		"dot.",
		".hidden",
		"a/.b",
		"reflog@{1}",
		"@",
		strings.Repeat("a", MaxBranchNameValidation+1),
	}
	for _, name := range invalid {
		if err := ValidateBranchName(name); err == nil {
			t.Errorf("ValidateBranchName(%q) = nil, want error", name)
		}
	}
}

func TestRandomSuffix(t *testing.T) {
	for range 50 {
		s := RandomSuffix()
		adj, noun, ok := strings.Cut(s, "-")
		if !ok {
			t.Fatalf("RandomSuffix() = %q, want adjective-noun", s)
		}
		if !contains(adjectives, adj) || !contains(nouns, noun) {
			t.Errorf("RandomSuffix() = %q uses unknown words", s)
		}
		if Sanitize(s) != s {
			t.Errorf("RandomSuffix() = %q is not sanitized", s)
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/home/u/.gj/worktrees/myapp/feature", "myapp/feature"},
		{"/home/u/.gj/worktrees/acme/web/pr-12", "acme/web/pr-12"},
		{"/srv/trees/myapp/feature", "myapp/feature"},
		{"/feature", "feature"},
		{"feature", "feature"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := DisplayName(tt.path); got != tt.want {
				t.Errorf("DisplayName(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestRelativeAge(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{0, "just now"},
		{59 * time.Second, "just now"},
		{time.Minute, "1 minute ago"},
		{5 * time.Minute, "5 minutes ago"},
		{time.Hour, "1 hour ago"},
		{23 * time.Hour, "23 hours ago"},
		{24 * time.Hour, "1 day ago"},
		{72*time.Hour + time.Minute, "3 days ago"},
		{-time.Hour, "just now"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := RelativeAge(now.Add(-tt.ago), now); got != tt.want {
				t.Errorf("RelativeAge(-%v) = %q, want %q", tt.ago, got, tt.want)
			}
		})
	}
}
