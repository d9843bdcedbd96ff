// Package format formats the embedded regions of a templ document.
//
// A format call runs up to two phases over the document, scripts first and
// class attributes second. Each phase scans the current text, hands every
// region to an engine.Formatter, and splices the results back in document
// order. The static markup around the regions is never touched.
package format

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/jsvensson/templfmt/internal/engine"
	"github.com/jsvensson/templfmt/internal/region"
	"github.com/tliron/commonlog"
)

// Policy decides what a phase does when the engine rejects a region.
type Policy int

const (
	// FailFast aborts the whole format call.
	FailFast Policy = iota
	// SkipRegion leaves the region unchanged and continues.
	SkipRegion
)

func (p Policy) String() string {
	if p == SkipRegion {
		return "skip-region"
	}
	return "fail-fast"
}

// Options configure a single format call.
type Options struct {
	Mode   Mode
	Engine engine.Options
}

// Result is the outcome of a format call.
type Result struct {
	Text string

	// Skipped holds the failures that a SkipRegion policy left in place.
	Skipped []*RegionError
}

// RegionError ties an engine failure to the region that caused it.
type RegionError struct {
	Region region.Region
	Err    error

	// ResultStart is the offset of the region in Result.Text. It is only
	// set for regions listed in Result.Skipped.
	ResultStart int
}

func (e *RegionError) Error() string {
	return fmt.Sprintf("formatting %s: %v", e.Region.Kind, e.Err)
}

func (e *RegionError) Unwrap() error {
	return e.Err
}

// Location returns the engine's error location, if it reported one.
func (e *RegionError) Location() (*engine.Location, bool) {
	var fmtErr *engine.Error
	if errors.As(e.Err, &fmtErr) && fmtErr.Loc != nil {
		return fmtErr.Loc, true
	}
	return nil, false
}

// Offset maps the engine's error location to a byte offset in the text the
// failing phase scanned. Script failures always refer to the input document
// since scripts are formatted first.
func (e *RegionError) Offset() (int, bool) {
	loc, ok := e.Location()
	if !ok {
		return 0, false
	}

	base, input := engineInput(e.Region)
	off := 0
	for line := 1; line < loc.Line; line++ {
		i := strings.IndexByte(input[off:], '\n')
		if i < 0 {
			return 0, false
		}
		off += i + 1
	}
	off = min(off+max(loc.Column-1, 0), len(input))
	return max(base+off, e.Region.Start), true
}

// ResultOffset is Offset translated into Result.Text for a skipped region.
func (e *RegionError) ResultOffset() (int, bool) {
	off, ok := e.Offset()
	if !ok {
		return 0, false
	}
	return e.ResultStart + off - e.Region.Start, true
}

// classFragment wraps a class attribute in the element handed to the engine.
const classFragment = "<br "

// engineInput returns the text the engine receives for r and the offset of
// its first byte in the scanned text.
func engineInput(r region.Region) (int, string) {
	if r.Kind == region.ClassAttr {
		return r.Start - len(classFragment), classFragment + r.Text + ">"
	}
	body := strings.TrimSpace(r.Content)
	contentStart := r.Start + strings.LastIndex(r.Text, "</script>") - len(r.Content)
	leading := len(r.Content) - len(strings.TrimLeft(r.Content, " \t\r\n"))
	return contentStart + leading, body
}

// Formatter formats templ documents by delegating regions to Engine.
type Formatter struct {
	Engine engine.Formatter

	// ScriptPolicy applies to script bodies, ClassPolicy to class
	// attributes.
	ScriptPolicy Policy
	ClassPolicy  Policy

	Log commonlog.Logger
}

// New returns a Formatter that fails on broken scripts and skips broken
// class attributes.
func New(eng engine.Formatter) *Formatter {
	return &Formatter{
		Engine:       eng,
		ScriptPolicy: FailFast,
		ClassPolicy:  SkipRegion,
		Log:          commonlog.GetLogger("templfmt.format"),
	}
}

type phase struct {
	kind   region.Kind
	scan   func(string) iter.Seq[region.Region]
	policy Policy
}

func (f *Formatter) phases(mode Mode) []phase {
	all := []phase{
		{kind: region.Script, scan: region.Scripts, policy: f.ScriptPolicy},
		{kind: region.ClassAttr, scan: region.ClassAttrs, policy: f.ClassPolicy},
	}

	var out []phase
	for _, p := range all {
		if mode.Includes(p.kind) {
			out = append(out, p)
		}
	}
	return out
}

// Format formats the regions of text selected by opts.Mode. A failure under
// a FailFast policy is returned as a *RegionError and no text is produced.
func (f *Formatter) Format(ctx context.Context, text string, opts Options) (*Result, error) {
	res := &Result{Text: text}
	for _, p := range f.phases(opts.Mode) {
		if err := f.runPhase(ctx, p, res, opts.Engine); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (f *Formatter) runPhase(ctx context.Context, p phase, res *Result, opts engine.Options) error {
	doc := newDocument(res.Text)

	for r := range p.scan(res.Text) {
		if err := ctx.Err(); err != nil {
			return err
		}

		replacement, changed, err := f.rewrite(ctx, r, opts)
		if err != nil {
			rerr := &RegionError{Region: r, Err: err}
			f.logFailure(rerr)
			if p.policy == FailFast {
				return rerr
			}
			rerr.ResultStart = r.Start
			res.Skipped = append(res.Skipped, rerr)
			continue
		}
		if !changed {
			continue
		}
		if err := doc.splice(r, replacement); err != nil {
			return err
		}
	}

	res.Text = doc.String()
	for _, skipped := range res.Skipped {
		skipped.ResultStart = doc.mapOffset(skipped.ResultStart)
	}
	return nil
}

// rewrite computes the replacement for a single region. changed is false
// when the region should be left as it is.
func (f *Formatter) rewrite(ctx context.Context, r region.Region, opts engine.Options) (string, bool, error) {
	dialect := Sniff(r)
	_, input := engineInput(r)

	switch r.Kind {
	case region.Script:
		if input == "" {
			return "", false, nil
		}
		code, err := f.Engine.Format(ctx, input, dialect, opts)
		if err != nil {
			return "", false, err
		}
		out := reindentScript(r, code, opts.Indent())
		return out, out != r.Text, nil

	case region.ClassAttr:
		// The engine only sees a bare element carrying the attribute.
		html, err := f.Engine.Format(ctx, input, dialect, opts)
		if err != nil {
			return "", false, err
		}
		attr, ok := region.MatchClassAttr(html)
		if !ok || attr == r.Text {
			return "", false, nil
		}
		return attr, true, nil
	}

	return "", false, fmt.Errorf("unknown region kind %v", r.Kind)
}

func (f *Formatter) logFailure(err *RegionError) {
	if f.Log == nil {
		return
	}
	f.Log.Errorf("Error formatting %s within .templ file: %v", err.Region.Kind, err.Err)
	if loc, ok := err.Location(); ok {
		f.Log.Errorf("Location: Line %d, Column %d", loc.Line, loc.Column)
	}
}
