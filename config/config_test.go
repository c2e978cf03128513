package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/mirakui/gj/paths"
)

func testLayout(t *testing.T) paths.Layout {
	t.Helper()
	home := t.TempDir()
	return paths.NewLayout(home, filepath.Join(home, ".gj"))
}

func writeConfig(t *testing.T, layout paths.Layout, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(layout.ConfigFile), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(layout.ConfigFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

const fullConfig = `
[default]
base_dir = "~/worktrees"
prefix = "me"

[[default.hooks.post_create]]
type = "run"
command = "echo default"

[repos.app]
path = "~/dev/app"
prefix = "feature"

[[repos.app.hooks.post_create]]
type = "copy"
from = ".env"
to = ".env.local"
required = true

[[repos.app.hooks.post_create]]
type = "run"
command = "npm install"

[repos.lib]
path = "/src/lib"
base_dir = "/tmp/lib-worktrees"
`

func TestLoad_MissingNotRequired(t *testing.T) {
	layout := testLayout(t)

	cfg, err := Load(layout, false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Repos) != 0 {
		t.Errorf("expected no repos, got %d", len(cfg.Repos))
	}
	if got := cfg.EffectivePrefix(nil); got != DefaultPrefix {
		t.Errorf("EffectivePrefix = %q, want %q", got, DefaultPrefix)
	}
	if got := cfg.EffectiveBaseDir(nil); got != layout.WorktreesDir {
		t.Errorf("EffectiveBaseDir = %q, want %q", got, layout.WorktreesDir)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	layout := testLayout(t)

	_, err := Load(layout, true)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Path != layout.ConfigFile {
		t.Errorf("expected NotFoundError for %s, got %v", layout.ConfigFile, err)
	}
	if !strings.Contains(err.Error(), "gj init") {
		t.Errorf("error should mention gj init: %q", err.Error())
	}
}

func TestLoad_Full(t *testing.T) {
	layout := testLayout(t)
	writeConfig(t, layout, fullConfig)

	cfg, err := Load(layout, true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Default.Prefix != "me" || cfg.Default.BaseDir != "~/worktrees" {
		t.Errorf("unexpected defaults: %+v", cfg.Default)
	}
	if want := []string{"app", "lib"}; !reflect.DeepEqual(cfg.RepoNames(), want) {
		t.Errorf("RepoNames = %v, want %v", cfg.RepoNames(), want)
	}

	app := cfg.Repos["app"]
	want := []Hook{
		CopyHook{From: ".env", To: ".env.local", Required: true},
		RunHook{Command: "npm install"},
	}
	if !reflect.DeepEqual(app.Hooks.PostCreate, want) {
		t.Errorf("app hooks = %#v, want %#v", app.Hooks.PostCreate, want)
	}
}

func TestLoad_SyntaxError(t *testing.T) {
	layout := testLayout(t)
	writeConfig(t, layout, "[default]\nprefix = \n")

	_, err := Load(layout, true)
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if perr.Path != layout.ConfigFile {
		t.Errorf("Path = %q, want %q", perr.Path, layout.ConfigFile)
	}
	if perr.Line != 2 {
		t.Errorf("Line = %d, want 2", perr.Line)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unknown hook type",
			content: "[[default.hooks.post_create]]\ntype = \"symlink\"\nfrom = \"a\"\n",
			wantErr: `unknown hook type "symlink"`,
		},
		{
			name:    "missing hook type",
			content: "[[default.hooks.post_create]]\ncommand = \"ls\"\n",
			wantErr: "hook type is required",
		},
		{
			name:    "copy without from",
			content: "[[default.hooks.post_create]]\ntype = \"copy\"\n",
			wantErr: "copy hook requires from",
		},
		{
			name:    "run without command",
			content: "[repos.x]\npath = \"/x\"\n[[repos.x.hooks.post_create]]\ntype = \"run\"\n",
			wantErr: "repos.x.hooks.post_create[0]: run hook requires command",
		},
		{
			name:    "repo without path",
			content: "[repos.x]\nprefix = \"p\"\n",
			wantErr: "repos.x: path is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content), testLayout(t))
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected ParseError, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestEffectiveSettings_Precedence(t *testing.T) {
	layout := testLayout(t)
	cfg, err := Parse([]byte(fullConfig), layout)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	app := &Repository{Name: "app", RepoSettings: cfg.Repos["app"]}
	lib := &Repository{Name: "lib", RepoSettings: cfg.Repos["lib"]}

	tests := []struct {
		name       string
		repo       *Repository
		wantPrefix string
		wantBase   string
		wantHooks  int
	}{
		{"no repo", nil, "me", filepath.Join(layout.Home, "worktrees"), 1},
		{"repo prefix overrides", app, "feature", filepath.Join(layout.Home, "worktrees"), 3},
		{"repo base dir overrides", lib, "me", "/tmp/lib-worktrees", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cfg.EffectivePrefix(tt.repo); got != tt.wantPrefix {
				t.Errorf("EffectivePrefix = %q, want %q", got, tt.wantPrefix)
			}
			if got := cfg.EffectiveBaseDir(tt.repo); got != tt.wantBase {
				t.Errorf("EffectiveBaseDir = %q, want %q", got, tt.wantBase)
			}
			if got := cfg.EffectiveHooks(tt.repo); len(got) != tt.wantHooks {
				t.Errorf("EffectiveHooks returned %d hooks, want %d", len(got), tt.wantHooks)
			}
		})
	}
}

func TestEffectiveHooks_DefaultsFirst(t *testing.T) {
	cfg := New(testLayout(t))
	cfg.Default.Hooks.PostCreate = []Hook{RunHook{Command: "a"}, RunHook{Command: "b"}}
	repo := &Repository{Name: "r", RepoSettings: RepoSettings{
		Path:  "/r",
		Hooks: Hooks{PostCreate: []Hook{RunHook{Command: "a"}, CopyHook{From: "c"}}},
	}}

	got := cfg.EffectiveHooks(repo)
	want := []Hook{RunHook{Command: "a"}, RunHook{Command: "b"}, RunHook{Command: "a"}, CopyHook{From: "c"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("EffectiveHooks = %#v, want %#v", got, want)
	}

	// The result must not alias the configuration.
	got[0] = RunHook{Command: "changed"}
	if cfg.Default.Hooks.PostCreate[0] != (RunHook{Command: "a"}) {
		t.Error("EffectiveHooks result aliases the default hook list")
	}
}

func TestFindRepository(t *testing.T) {
	layout := testLayout(t)
	repoDir := filepath.Join(layout.Home, "dev", "app")
	if err := os.MkdirAll(filepath.Join(repoDir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(layout.Home, "app-link")
	if err := os.Symlink(repoDir, link); err != nil {
		t.Fatal(err)
	}

	cfg := New(layout)
	cfg.Repos["app"] = RepoSettings{Path: "~/dev/app", Prefix: "feature"}
	cfg.Repos["other"] = RepoSettings{Path: "/elsewhere"}

	repo, ok := cfg.FindRepository(repoDir)
	if !ok || repo.Name != "app" || repo.Prefix != "feature" {
		t.Errorf("FindRepository(repoDir) = %+v, %v", repo, ok)
	}

	if repo, ok := cfg.FindRepository(link); !ok || repo.Name != "app" {
		t.Errorf("FindRepository(link) = %+v, %v; want app", repo, ok)
	}

	if _, ok := cfg.FindRepository(filepath.Join(repoDir, "sub")); ok {
		t.Error("a subdirectory must not match its repository")
	}
	if _, ok := cfg.FindRepository(layout.Home); ok {
		t.Error("an unrelated directory must not match")
	}
}

func TestHookString(t *testing.T) {
	if got := (CopyHook{From: ".env"}).String(); got != "copy .env -> .env" {
		t.Errorf("CopyHook.String = %q", got)
	}
	if got := (CopyHook{From: "a", To: "b"}).Dest(); got != "b" {
		t.Errorf("Dest = %q, want b", got)
	}
	if got := (RunHook{Command: "make"}).String(); got != "run make" {
		t.Errorf("RunHook.String = %q", got)
	}
}

func TestTemplate_Parses(t *testing.T) {
	cfg, err := Parse([]byte(Template), testLayout(t))
	if err != nil {
		t.Fatalf("template should parse: %v", err)
	}
	if len(cfg.Repos) != 0 || len(cfg.Default.Hooks.PostCreate) != 0 {
		t.Errorf("template should only contain commented examples: %+v", cfg)
	}
}

func TestWriteTemplate(t *testing.T) {
	layout := testLayout(t)

	if err := WriteTemplate(layout.ConfigFile, false); err != nil {
		t.Fatalf("WriteTemplate: %v", err)
	}
	data, err := os.ReadFile(layout.ConfigFile)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != Template {
		t.Error("written file should equal the template")
	}

	err = WriteTemplate(layout.ConfigFile, false)
	if !errors.Is(err, ErrExists) {
		t.Fatalf("second write without force: expected ErrExists, got %v", err)
	}
	if !strings.Contains(err.Error(), "--force") {
		t.Errorf("error should mention --force: %q", err.Error())
	}

	if err := os.WriteFile(layout.ConfigFile, []byte("# edited\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := WriteTemplate(layout.ConfigFile, true); err != nil {
		t.Fatalf("forced write: %v", err)
	}
	data, _ = os.ReadFile(layout.ConfigFile)
	if string(data) != Template {
		t.Error("forced write should restore the template")
	}
}
