package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSamePath(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "repo")
	if err := os.Mkdir(target, 0755); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "repo-link")
	if err := os.Symlink(target, link); err != nil {
		t.Fatal(err)
	}
	other := t.TempDir()

	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"identical missing strings", "/no/such/path", "/no/such/path", true},
		{"both missing", "/no/such/a", "/no/such/b", false},
		{"one missing", dir, "/no/such/path", false},
		{"symlink", target, link, true},
		{"trailing slash", target, target + "/", true},
		{"dot dot", dir, filepath.Join(target, ".."), true},
		{"different dirs", dir, other, false},
		{"empty and real", "", dir, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SamePath(tt.a, tt.b); got != tt.want {
				t.Errorf("SamePath(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSamePath_CaseSensitivity(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "MyRepo")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	variant := filepath.Join(dir, "myrepo")

	// Detect FS behavior: if stat succeeds on the case-variant, FS is case-insensitive
	_, err := os.Stat(variant)
	caseInsensitive := err == nil

	if got := SamePath(sub, variant); got != caseInsensitive {
		t.Errorf("SamePath(%q, %q) = %v, want %v", sub, variant, got, caseInsensitive)
	}
}
