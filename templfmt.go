package templfmt

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jsvensson/templfmt/internal/config"
	"github.com/jsvensson/templfmt/internal/format"
)

// Language describes a document type handled by the formatter.
type Language struct {
	Name       string
	LanguageID string
	Extensions []string
}

// Templ is the templ template language.
var Templ = Language{
	Name:       "templ",
	LanguageID: "templ",
	Extensions: []string{".templ"},
}

// Matches reports whether path has one of the language's extensions.
func (l Language) Matches(path string) bool {
	return slices.Contains(l.Extensions, strings.ToLower(filepath.Ext(path)))
}

// Format formats the embedded scripts and class attributes of a templ
// document. A nil cfg uses the defaults. Regions left unformatted under a
// skipping policy are reported in the result's Skipped list.
func Format(ctx context.Context, src string, cfg *config.Config) (*format.Result, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	eng, err := cfg.NewEngine()
	if err != nil {
		return nil, fmt.Errorf("creating engine: %w", err)
	}

	return format.New(eng).Format(ctx, src, cfg.Options())
}
