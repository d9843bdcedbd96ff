package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/jsvensson/templfmt/internal/engine"
	"github.com/jsvensson/templfmt/internal/format"
	"github.com/zclconf/go-cty/cty"
)

// FileName is the name of the config file searched for next to templ files.
const FileName = ".templfmt.hcl"

// Engine names accepted in engine blocks.
const (
	EngineNative   = "native"
	EnginePrettier = "prettier"
)

// Config is the resolved formatter configuration.
type Config struct {
	Mode       format.Mode
	UseTabs    bool
	TabWidth   int
	ClassOrder engine.ClassOrder
	Engine     EngineConfig

	// Path is the file the config was loaded from, empty for defaults.
	Path string
}

// EngineConfig selects and configures the formatting engine.
type EngineConfig struct {
	Name    string
	Command []string
	Args    []string
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Mode:       format.Both,
		UseTabs:    true,
		TabWidth:   engine.DefaultTabWidth,
		ClassOrder: engine.PreserveOrder,
		Engine:     EngineConfig{Name: EngineNative},
	}
}

// fileConfig is the HCL shape of a config file.
type fileConfig struct {
	Mode       *string      `hcl:"mode,optional"`
	UseTabs    *bool        `hcl:"use_tabs,optional"`
	TabWidth   *int         `hcl:"tab_width,optional"`
	ClassOrder *string      `hcl:"class_order,optional"`
	Engine     *engineBlock `hcl:"engine,block"`
}

type engineBlock struct {
	Name    string   `hcl:"name,label"`
	Command []string `hcl:"command,optional"`
	Args    []string `hcl:"args,optional"`
}

// Load reads and parses a config file.
func Load(path string) (*Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	cfg, err := Parse(src, path)
	if err != nil {
		return nil, err
	}
	cfg.Path = path
	return cfg, nil
}

// Parse parses config source. Unset values keep their defaults.
func Parse(src []byte, filename string) (*Config, error) {
	file, diags := hclsyntax.ParseConfig(src, filename, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing HCL: %s", diags.Error())
	}

	var fc fileConfig
	if diags := gohcl.DecodeBody(file.Body, buildEvalContext(os.Environ()), &fc); diags.HasErrors() {
		return nil, fmt.Errorf("decoding config: %s", diags.Error())
	}

	cfg := Default()
	if fc.Mode != nil {
		mode, err := format.ParseMode(*fc.Mode)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		cfg.Mode = mode
	}
	if fc.UseTabs != nil {
		cfg.UseTabs = *fc.UseTabs
	}
	if fc.TabWidth != nil {
		if *fc.TabWidth <= 0 {
			return nil, fmt.Errorf("%s: tab_width must be positive, got %d", filename, *fc.TabWidth)
		}
		cfg.TabWidth = *fc.TabWidth
	}
	if fc.ClassOrder != nil {
		order, err := engine.ParseClassOrder(*fc.ClassOrder)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		cfg.ClassOrder = order
	}
	if fc.Engine != nil {
		cfg.Engine = EngineConfig{
			Name:    fc.Engine.Name,
			Command: fc.Engine.Command,
			Args:    fc.Engine.Args,
		}
		if err := cfg.Engine.validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
	}

	return cfg, nil
}

// buildEvalContext exposes environment variables as env.NAME.
func buildEvalContext(environ []string) *hcl.EvalContext {
	vals := make(map[string]cty.Value, len(environ))
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		vals[name] = cty.StringVal(value)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(vals),
		},
	}
}

func (e EngineConfig) validate() error {
	switch e.Name {
	case EngineNative:
		if len(e.Command) > 0 || len(e.Args) > 0 {
			return fmt.Errorf("engine %q takes no command or args", e.Name)
		}
		return nil
	case EnginePrettier:
		return nil
	}
	return fmt.Errorf("unknown engine %q (valid: %s, %s)", e.Name, EngineNative, EnginePrettier)
}

// NewEngine builds the configured formatting engine.
func (c *Config) NewEngine() (engine.Formatter, error) {
	if err := c.Engine.validate(); err != nil {
		return nil, err
	}
	if c.Engine.Name == EnginePrettier {
		return &engine.Prettier{Command: c.Engine.Command, Args: c.Engine.Args}, nil
	}
	return engine.NewNative(), nil
}

// Options returns the per-call format options.
func (c *Config) Options() format.Options {
	return format.Options{
		Mode: c.Mode,
		Engine: engine.Options{
			UseTabs:    c.UseTabs,
			TabWidth:   c.TabWidth,
			ClassOrder: c.ClassOrder,
		},
	}
}

// Find looks for a config file in dir and its parent directories.
func Find(dir string) (string, bool) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		path := filepath.Join(dir, FileName)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// Resolve returns the config that applies to the templ file at path,
// falling back to defaults when no config file is found.
func Resolve(path string) (*Config, error) {
	found, ok := Find(filepath.Dir(path))
	if !ok {
		return Default(), nil
	}
	cfg, err := Load(found)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}
