package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/jsvensson/templfmt"
	"github.com/jsvensson/templfmt/internal/config"
	"github.com/jsvensson/templfmt/internal/engine"
	"github.com/jsvensson/templfmt/internal/format"
	"github.com/spf13/cobra"
	"github.com/tliron/go-kutil/util"
	"golang.org/x/sync/errgroup"
)

var (
	flagCheck      bool
	flagStdout     bool
	flagDiff       bool
	flagMode       string
	flagUseTabs    bool
	flagTabWidth   int
	flagClassOrder string
	flagEngine     string
	flagConfig     string
	flagJobs       int
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [paths...]",
	Short: "Format .templ files",
	Long: `Format the embedded scripts and class attributes of .templ files in-place.
Directories are searched recursively. Prints the name of each file that was
modified. Use "-" to read a document from stdin and write it to stdout.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFmt,
}

func init() {
	fmtCmd.Flags().BoolVarP(&flagCheck, "check", "c", false, "check if files are formatted (do not write changes)")
	fmtCmd.Flags().BoolVar(&flagStdout, "stdout", false, "print formatted files to stdout instead of rewriting them")
	fmtCmd.Flags().BoolVarP(&flagDiff, "diff", "d", false, "print a diff of the changes instead of rewriting files")
	fmtCmd.Flags().StringVar(&flagMode, "mode", "both", "regions to format: both, script-only or class-only")
	fmtCmd.Flags().BoolVar(&flagUseTabs, "use-tabs", true, "indent with tabs instead of spaces")
	fmtCmd.Flags().IntVar(&flagTabWidth, "tab-width", engine.DefaultTabWidth, "number of spaces per indentation level")
	fmtCmd.Flags().StringVar(&flagClassOrder, "class-order", "preserve", "class ordering: preserve or variants-last")
	fmtCmd.Flags().StringVar(&flagEngine, "engine", config.EngineNative, "formatting engine: native or prettier")
	fmtCmd.Flags().StringVar(&flagConfig, "config", "", "config file (default: nearest "+config.FileName+")")
	fmtCmd.Flags().IntVarP(&flagJobs, "jobs", "j", runtime.GOMAXPROCS(0), "number of files formatted in parallel")
}

type fileResult struct {
	path      string
	original  string
	formatted string
	err       error
}

func runFmt(cmd *cobra.Command, args []string) error {
	if flagStdout && (flagCheck || flagDiff) {
		return fmt.Errorf("--stdout cannot be combined with --check or --diff")
	}

	if len(args) == 1 && args[0] == "-" {
		return fmtStdin(cmd)
	}

	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	results := make([]fileResult, len(files))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(flagJobs, 1))
	for i, path := range files {
		g.Go(func() error {
			results[i] = formatFile(ctx, cmd, path)
			return nil
		})
	}
	_ = g.Wait()

	hasErrors := false
	needsFormatting := false
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	for _, res := range results {
		if res.err != nil {
			reportError(stderr, res)
			hasErrors = true
			continue
		}

		if flagStdout {
			io.WriteString(stdout, res.formatted)
			continue
		}

		if res.formatted == res.original {
			continue
		}
		needsFormatting = true

		if flagDiff {
			if err := writeDiff(stdout, res.path, res.original, res.formatted); err != nil {
				fmt.Fprintf(stderr, "Error diffing %s: %v\n", res.path, err)
				hasErrors = true
			}
			continue
		}

		fmt.Fprintln(stdout, res.path)

		if !flagCheck {
			if err := os.WriteFile(res.path, []byte(res.formatted), 0o644); err != nil {
				fmt.Fprintf(stderr, "Error writing %s: %v\n", res.path, err)
				hasErrors = true
			}
		}
	}

	if hasErrors || (flagCheck && needsFormatting) {
		util.Exit(1)
	}

	return nil
}

func fmtStdin(cmd *cobra.Command) error {
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}

	cfg, err := loadConfig(cmd, ".")
	if err != nil {
		return err
	}

	res, err := templfmt.Format(cmd.Context(), string(data), cfg)
	if err != nil {
		reportError(cmd.ErrOrStderr(), fileResult{path: "<stdin>", original: string(data), err: err})
		util.Exit(1)
	}

	_, err = io.WriteString(cmd.OutOrStdout(), res.Text)
	return err
}

func formatFile(ctx context.Context, cmd *cobra.Command, path string) fileResult {
	res := fileResult{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		res.err = fmt.Errorf("reading: %w", err)
		return res
	}
	res.original = string(data)

	cfg, err := loadConfig(cmd, path)
	if err != nil {
		res.err = err
		return res
	}

	out, err := templfmt.Format(ctx, res.original, cfg)
	if err != nil {
		res.err = err
		return res
	}
	res.formatted = out.Text
	return res
}

// loadConfig resolves the config for path and applies explicitly set flags.
func loadConfig(cmd *cobra.Command, path string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if flagConfig != "" {
		cfg, err = config.Load(flagConfig)
	} else {
		cfg, err = config.Resolve(path)
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("mode") {
		if cfg.Mode, err = format.ParseMode(flagMode); err != nil {
			return nil, err
		}
	}
	if flags.Changed("use-tabs") {
		cfg.UseTabs = flagUseTabs
	}
	if flags.Changed("tab-width") {
		if flagTabWidth <= 0 {
			return nil, fmt.Errorf("--tab-width must be positive, got %d", flagTabWidth)
		}
		cfg.TabWidth = flagTabWidth
	}
	if flags.Changed("class-order") {
		if cfg.ClassOrder, err = engine.ParseClassOrder(flagClassOrder); err != nil {
			return nil, err
		}
	}
	if flags.Changed("engine") && flagEngine != cfg.Engine.Name {
		cfg.Engine = config.EngineConfig{Name: flagEngine}
	}
	return cfg, nil
}

// collectFiles expands directories into the templ files they contain.
// Files named explicitly are kept regardless of extension.
func collectFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != arg && skipDir(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if templfmt.Templ.Matches(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", arg, err)
		}
	}
	return files, nil
}

func skipDir(name string) bool {
	return name == "node_modules" || name == "vendor" || strings.HasPrefix(name, ".")
}

func reportError(w io.Writer, res fileResult) {
	var rerr *format.RegionError
	if errors.As(res.err, &rerr) {
		if off, ok := rerr.Offset(); ok {
			line, col := lineColumn(res.original, off)
			fmt.Fprintf(w, "%s:%d:%d: %v\n", res.path, line, col, rerr)
			return
		}
	}
	fmt.Fprintf(w, "Error formatting %s: %v\n", res.path, res.err)
}

// lineColumn converts a byte offset to a 1-based line and column.
func lineColumn(src string, offset int) (int, int) {
	offset = min(offset, len(src))
	before := src[:offset]
	return strings.Count(before, "\n") + 1, offset - strings.LastIndexByte(before, '\n')
}
