package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"
)

// Native formats regions in-process: JavaScript through esbuild's printer,
// JSON through encoding/json, and class fragments through the HTML
// tokenizer.
type Native struct{}

func NewNative() *Native {
	return &Native{}
}

func (n *Native) Format(ctx context.Context, text string, dialect Dialect, opts Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	switch dialect {
	case Code:
		return formatCode(text, opts)
	case StructuredData:
		return formatJSON(text, opts)
	case MarkupFragment:
		return formatFragment(text, opts)
	default:
		return "", fmt.Errorf("native engine: unsupported dialect %v", dialect)
	}
}

// esbuildIndent is the indentation unit esbuild prints with.
const esbuildIndent = "  "

func formatCode(text string, opts Options) (string, error) {
	if hasComment(text) {
		return "", &Error{
			Dialect: Code,
			Message: "script contains comments, which the native engine would drop; use the prettier engine",
		}
	}

	result := api.Transform(text, api.TransformOptions{
		Loader:     api.LoaderJS,
		Charset:    api.CharsetUTF8,
		Sourcefile: "script.js",
	})
	if len(result.Errors) > 0 {
		return "", esbuildError(result.Errors[0])
	}

	return reindentLeading(string(result.Code), opts.Indent()), nil
}

func esbuildError(msg api.Message) *Error {
	e := &Error{Dialect: Code, Message: msg.Text}
	if msg.Location != nil {
		e.Loc = &Location{
			Line:   msg.Location.Line,
			Column: msg.Location.Column + 1,
		}
	}
	return e
}

// reindentLeading rewrites the leading esbuild indentation of every line to
// the given unit. Spaces beyond whole units are kept as they are.
func reindentLeading(code, unit string) string {
	if unit == esbuildIndent {
		return code
	}

	lines := strings.Split(code, "\n")
	for i, line := range lines {
		n := len(line) - len(strings.TrimLeft(line, " "))
		levels := n / len(esbuildIndent)
		if levels == 0 {
			continue
		}
		rest := line[levels*len(esbuildIndent):]
		lines[i] = strings.Repeat(unit, levels) + rest
	}
	return strings.Join(lines, "\n")
}

// hasComment reports whether src contains a line or block comment. A slash
// starts a regular expression unless it follows a token that ends an
// operand. Source the lexer rejects reports false and is left to esbuild.
func hasComment(src string) bool {
	l := js.NewLexer(parse.NewInputString(src))
	prev := js.ErrorToken
	for {
		tt, _ := l.Next()
		switch tt {
		case js.ErrorToken:
			return false
		case js.CommentToken, js.CommentLineTerminatorToken:
			return true
		case js.WhitespaceToken, js.LineTerminatorToken:
			continue
		case js.DivToken, js.DivEqToken:
			if !endsOperand(prev) {
				if tt, _ = l.RegExp(); tt == js.ErrorToken {
					return false
				}
			}
		}
		prev = tt
	}
}

// endsOperand reports whether a slash after tt is a division operator.
func endsOperand(tt js.TokenType) bool {
	if js.IsIdentifier(tt) || js.IsNumeric(tt) {
		return true
	}
	switch tt {
	case js.StringToken, js.TemplateToken, js.TemplateEndToken, js.RegExpToken,
		js.PrivateIdentifierToken,
		js.CloseParenToken, js.CloseBracketToken, js.CloseBraceToken,
		js.IncrToken, js.DecrToken,
		js.ThisToken, js.SuperToken, js.NullToken, js.TrueToken, js.FalseToken:
		return true
	}
	return false
}

func formatJSON(text string, opts Options) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(text), "", opts.Indent()); err != nil {
		return "", jsonError(text, err)
	}
	return buf.String(), nil
}

func jsonError(text string, err error) error {
	e := &Error{Dialect: StructuredData, Message: err.Error()}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		// Offset counts the bytes read, including the offending one.
		e.Loc = offsetToLocation(text, int(syntaxErr.Offset)-1)
	}
	return e
}

func offsetToLocation(text string, offset int) *Location {
	offset = min(max(offset, 0), len(text))
	before := text[:offset]
	lineStart := strings.LastIndexByte(before, '\n') + 1
	return &Location{
		Line:   strings.Count(before, "\n") + 1,
		Column: offset - lineStart + 1,
	}
}
