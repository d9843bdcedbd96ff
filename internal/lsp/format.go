package lsp

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"unicode/utf16"

	"github.com/jsvensson/templfmt"
	"github.com/jsvensson/templfmt/internal/config"
	"github.com/jsvensson/templfmt/internal/format"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

var (
	DiagError   = protocol.DiagnosticSeverityError
	DiagWarning = protocol.DiagnosticSeverityWarning
)

// formatDocument formats content with the config that applies to path,
// overridden by the editor's formatting options. An empty path uses the
// defaults.
func formatDocument(ctx context.Context, path, content string, opts protocol.FormattingOptions) (*format.Result, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Resolve(path); err != nil {
			return nil, err
		}
	}

	if size, ok := tabSize(opts); ok {
		cfg.TabWidth = size
	}
	if spaces, ok := opts[protocol.FormattingOptionInsertSpaces].(bool); ok {
		cfg.UseTabs = !spaces
	}

	return templfmt.Format(ctx, content, cfg)
}

// tabSize reads the tabSize option, which arrives as a JSON number.
func tabSize(opts protocol.FormattingOptions) (int, bool) {
	var n int
	switch v := opts[protocol.FormattingOptionTabSize].(type) {
	case float64:
		n = int(v)
	case int:
		n = v
	case int32:
		n = int(v)
	case uint32:
		n = int(v)
	default:
		return 0, false
	}
	return n, n > 0
}

// uriPath returns the filesystem path of a file:// URI, or "" for any other
// scheme.
func uriPath(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return ""
	}
	return filepath.FromSlash(u.Path)
}

// offsetToPosition converts a byte offset into an LSP position, counting
// characters in UTF-16 code units.
func offsetToPosition(text string, offset int) protocol.Position {
	var pos protocol.Position
	for i, r := range text {
		if i >= offset {
			break
		}
		if r == '\n' {
			pos.Line++
			pos.Character = 0
			continue
		}
		pos.Character += uint32(utf16.RuneLen(r))
	}
	return pos
}

// fullRange spans the whole of text.
func fullRange(text string) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: 0, Character: 0},
		End:   offsetToPosition(text, len(text)),
	}
}

// regionDiagnostic reports a fatal formatting failure at the engine's
// location in text, or across the failing region when the engine gave none.
func regionDiagnostic(text string, err *format.RegionError) protocol.Diagnostic {
	start, end := err.Region.Start, err.Region.End
	if off, ok := err.Offset(); ok {
		start, end = off, off
	}
	return diagnostic(text, start, end, DiagError,
		fmt.Sprintf("Error formatting %s: %v", err.Region.Kind, err.Err))
}

// skippedDiagnostic reports a region that was left unformatted. Positions
// refer to the formatted text.
func skippedDiagnostic(text string, err *format.RegionError) protocol.Diagnostic {
	start, end := err.ResultStart, err.ResultStart+len(err.Region.Text)
	if off, ok := err.ResultOffset(); ok {
		start, end = off, off
	}
	return diagnostic(text, start, end, DiagWarning,
		fmt.Sprintf("Skipped %s: %v", err.Region.Kind, err.Err))
}

func diagnostic(text string, start, end int, severity protocol.DiagnosticSeverity, msg string) protocol.Diagnostic {
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: offsetToPosition(text, start),
			End:   offsetToPosition(text, end),
		},
		Severity: &severity,
		Source:   strPtr(serverName),
		Message:  msg,
	}
}

func strPtr(s string) *string {
	return &s
}

func (s *Server) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, diags []protocol.Diagnostic) {
	if ctx == nil || ctx.Notify == nil {
		return
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diags,
	})
}

func (s *Server) textDocumentFormatting(ctx *glsp.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	uri := params.TextDocument.URI
	doc, ok := s.docs.Get(string(uri))
	if !ok {
		return nil, nil
	}

	res, err := formatDocument(context.Background(), doc.Path, doc.Text, params.Options)
	if err != nil {
		var rerr *format.RegionError
		if !errors.As(err, &rerr) {
			return nil, err
		}
		if s.docs.Current(doc) {
			s.publishDiagnostics(ctx, uri, []protocol.Diagnostic{regionDiagnostic(doc.Text, rerr)})
		}
		return nil, nil
	}

	// Edits computed against an older version would clobber newer changes.
	if !s.docs.Current(doc) {
		return nil, nil
	}

	diags := []protocol.Diagnostic{}
	for _, skipped := range res.Skipped {
		diags = append(diags, skippedDiagnostic(res.Text, skipped))
	}
	s.publishDiagnostics(ctx, uri, diags)

	if res.Text == doc.Text {
		return []protocol.TextEdit{}, nil
	}

	return []protocol.TextEdit{{
		Range:   fullRange(doc.Text),
		NewText: res.Text,
	}}, nil
}
