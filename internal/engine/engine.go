// Package engine provides the formatting engines that embedded regions are
// delegated to. The templ formatter never reflows code itself; it hands each
// region's text to a Formatter together with the dialect it should be
// formatted as.
package engine

import (
	"context"
	"fmt"
	"strings"
)

// Dialect selects the grammar a region is formatted with.
type Dialect int

const (
	Code Dialect = iota
	StructuredData
	MarkupFragment
)

func (d Dialect) String() string {
	switch d {
	case Code:
		return "code"
	case StructuredData:
		return "structured data"
	case MarkupFragment:
		return "markup fragment"
	default:
		return fmt.Sprintf("Dialect(%d)", int(d))
	}
}

// ParserName is the prettier parser that handles the dialect.
func (d Dialect) ParserName() string {
	switch d {
	case StructuredData:
		return "json"
	case MarkupFragment:
		return "html"
	default:
		return "babel"
	}
}

// ClassOrder controls how class lists are reordered.
type ClassOrder int

const (
	PreserveOrder ClassOrder = iota
	VariantsLast
)

func (o ClassOrder) String() string {
	if o == VariantsLast {
		return "variants-last"
	}
	return "preserve"
}

// ParseClassOrder parses the textual name of a ClassOrder.
func ParseClassOrder(s string) (ClassOrder, error) {
	switch s {
	case "", "preserve":
		return PreserveOrder, nil
	case "variants-last":
		return VariantsLast, nil
	}
	return PreserveOrder, fmt.Errorf("unknown class order %q (valid: preserve, variants-last)", s)
}

// Options are passed through to every Format call.
type Options struct {
	UseTabs    bool
	TabWidth   int
	ClassOrder ClassOrder
}

// DefaultTabWidth is used when Options.TabWidth is not positive.
const DefaultTabWidth = 2

// Indent returns one indentation unit.
func (o Options) Indent() string {
	if o.UseTabs {
		return "\t"
	}
	return strings.Repeat(" ", o.width())
}

func (o Options) width() int {
	if o.TabWidth <= 0 {
		return DefaultTabWidth
	}
	return o.TabWidth
}

// Formatter formats text in a given dialect.
type Formatter interface {
	Format(ctx context.Context, text string, dialect Dialect, opts Options) (string, error)
}

// Location is a 1-based position inside the text handed to a Formatter.
type Location struct {
	Line   int
	Column int
}

// Error is returned by a Formatter that rejects its input.
type Error struct {
	Dialect Dialect
	Message string
	Loc     *Location
}

func (e *Error) Error() string {
	if e.Loc != nil {
		return fmt.Sprintf("%s (%d:%d)", e.Message, e.Loc.Line, e.Loc.Column)
	}
	return e.Message
}
