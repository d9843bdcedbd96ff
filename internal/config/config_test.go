package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/jsvensson/templfmt/internal/engine"
	"github.com/jsvensson/templfmt/internal/format"
)

const sampleHCL = `
mode        = "script-only"
use_tabs    = false
tab_width   = 4
class_order = "variants-last"

engine "prettier" {
  command = ["./node_modules/.bin/prettier"]
  args    = ["--plugin", "prettier-plugin-tailwindcss"]
}
`

func writeTempConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeTempConfig(t, t.TempDir(), sampleHCL)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Mode != format.ScriptOnly {
		t.Errorf("Mode = %v, want script-only", cfg.Mode)
	}
	if cfg.UseTabs {
		t.Error("UseTabs = true, want false")
	}
	if cfg.TabWidth != 4 {
		t.Errorf("TabWidth = %d, want 4", cfg.TabWidth)
	}
	if cfg.ClassOrder != engine.VariantsLast {
		t.Errorf("ClassOrder = %v, want variants-last", cfg.ClassOrder)
	}
	if cfg.Engine.Name != EnginePrettier {
		t.Errorf("Engine.Name = %q", cfg.Engine.Name)
	}
	if !slices.Equal(cfg.Engine.Command, []string{"./node_modules/.bin/prettier"}) {
		t.Errorf("Engine.Command = %q", cfg.Engine.Command)
	}
	if !slices.Equal(cfg.Engine.Args, []string{"--plugin", "prettier-plugin-tailwindcss"}) {
		t.Errorf("Engine.Args = %q", cfg.Engine.Args)
	}
	if cfg.Path != path {
		t.Errorf("Path = %q, want %q", cfg.Path, path)
	}

	eng, err := cfg.NewEngine()
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if _, ok := eng.(*engine.Prettier); !ok {
		t.Errorf("NewEngine() = %T, want *engine.Prettier", eng)
	}

	opts := cfg.Options()
	if opts.Mode != format.ScriptOnly || opts.Engine.Indent() != "    " {
		t.Errorf("Options() = %+v", opts)
	}
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte(""), "empty.hcl")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := Default()
	if cfg.Mode != want.Mode || cfg.UseTabs != want.UseTabs || cfg.TabWidth != want.TabWidth ||
		cfg.ClassOrder != want.ClassOrder || cfg.Engine.Name != want.Engine.Name {
		t.Errorf("Parse(\"\") = %+v, want %+v", cfg, want)
	}
	if !cfg.UseTabs {
		t.Error("tabs should be the default indentation")
	}

	eng, err := cfg.NewEngine()
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if _, ok := eng.(*engine.Native); !ok {
		t.Errorf("NewEngine() = %T, want *engine.Native", eng)
	}
}

func TestParseEnv(t *testing.T) {
	t.Setenv("TEMPLFMT_TEST_PRETTIER", "/opt/prettier/bin/prettier")

	cfg, err := Parse([]byte(`
engine "prettier" {
  command = [env.TEMPLFMT_TEST_PRETTIER]
}
`), "env.hcl")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !slices.Equal(cfg.Engine.Command, []string{"/opt/prettier/bin/prettier"}) {
		t.Errorf("Engine.Command = %q", cfg.Engine.Command)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "syntax", input: `mode = `, wantErr: "parsing HCL"},
		{name: "unknown mode", input: `mode = "scripts"`, wantErr: "unknown mode"},
		{name: "bad tab width", input: `tab_width = 0`, wantErr: "tab_width must be positive"},
		{name: "unknown class order", input: `class_order = "random"`, wantErr: "unknown class order"},
		{name: "unknown engine", input: `engine "biome" {}`, wantErr: "unknown engine"},
		{name: "native with command", input: `engine "native" { command = ["x"] }`, wantErr: "takes no command"},
		{name: "unknown attribute", input: `indent = 2`, wantErr: "decoding config"},
		{name: "wrong type", input: `use_tabs = "yes"`, wantErr: "decoding config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input), "bad.hcl")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "components", "ui")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	path := writeTempConfig(t, root, `mode = "class-only"`)

	got, ok := Find(nested)
	if !ok {
		t.Fatal("Find() did not locate the config")
	}
	if got != path {
		t.Errorf("Find() = %q, want %q", got, path)
	}

	cfg, err := Resolve(filepath.Join(nested, "button.templ"))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.Mode != format.ClassOnly {
		t.Errorf("Resolve() mode = %v, want class-only", cfg.Mode)
	}
}

func TestResolveWithoutConfig(t *testing.T) {
	dir := t.TempDir()
	if _, ok := Find(dir); ok {
		t.Skip("a config file exists above the temp dir")
	}

	cfg, err := Resolve(filepath.Join(dir, "page.templ"))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.Path != "" {
		t.Errorf("Path = %q, want defaults", cfg.Path)
	}
}
