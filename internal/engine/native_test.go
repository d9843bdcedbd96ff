package engine

import (
	"context"
	"errors"
	"testing"
)

func TestNativeCode(t *testing.T) {
	n := NewNative()

	tests := []struct {
		name  string
		input string
		opts  Options
		want  string
	}{
		{
			name:  "arrow iife with tabs",
			input: `(()=>{console.log("x")})();`,
			opts:  Options{UseTabs: true},
			want:  "(() => {\n\tconsole.log(\"x\");\n})();\n",
		},
		{
			name:  "arrow iife with two spaces",
			input: `(()=>{console.log("x")})();`,
			opts:  Options{TabWidth: 2},
			want:  "(() => {\n  console.log(\"x\");\n})();\n",
		},
		{
			name:  "nested blocks with four spaces",
			input: `if(a){if(b){c()}}`,
			opts:  Options{TabWidth: 4},
			want:  "if (a) {\n    if (b) {\n        c();\n    }\n}\n",
		},
		{
			name:  "already formatted is stable",
			input: "(() => {\n\tconsole.log(\"x\");\n})();\n",
			opts:  Options{UseTabs: true},
			want:  "(() => {\n\tconsole.log(\"x\");\n})();\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.Format(context.Background(), tt.input, Code, tt.opts)
			if err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNativeCodeSyntaxError(t *testing.T) {
	_, err := NewNative().Format(context.Background(), "let x = ;", Code, Options{})

	var fmtErr *Error
	if !errors.As(err, &fmtErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if fmtErr.Dialect != Code {
		t.Errorf("Dialect = %v, want %v", fmtErr.Dialect, Code)
	}
	if fmtErr.Loc == nil || fmtErr.Loc.Line != 1 || fmtErr.Loc.Column != 9 {
		t.Errorf("Loc = %+v, want line 1 column 9", fmtErr.Loc)
	}
}

func TestNativeCodeRejectsComments(t *testing.T) {
	inputs := []string{
		"// setup\nfoo();",
		"foo(); /* trailing */",
	}
	for _, input := range inputs {
		_, err := NewNative().Format(context.Background(), input, Code, Options{})
		var fmtErr *Error
		if !errors.As(err, &fmtErr) {
			t.Errorf("Format(%q) error = %v, want *Error", input, err)
		}
	}
}

func TestHasComment(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: `foo()`, want: false},
		{input: `fetch("https://example.com")`, want: false},
		{input: "let u = `//not a comment`", want: false},
		{input: `let s = 'it\'s // fine'`, want: false},
		{input: `a / b`, want: false},
		{input: `foo() // call`, want: true},
		{input: `/* block */ foo()`, want: true},
		{input: "const q = /\"/; // keep me\nq.test(x);", want: true},
		{input: "s.replace(/'/g, \"\"); // strip quotes\nf();", want: true},
		{input: `const re = /^https?:\/\//;`, want: false},
		{input: `if (/\/\*/.test(s)) { go() }`, want: false},
		{input: `let n = (a + b) / 2 / c`, want: false},
		{input: "let t = `${a / b} // not a comment`", want: false},
		{input: "let t = `${a /* sum */}`", want: true},
	}

	for _, tt := range tests {
		if got := hasComment(tt.input); got != tt.want {
			t.Errorf("hasComment(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestReindentLeading(t *testing.T) {
	code := "a {\n  b {\n    c\n   d\n  }\n}\n"

	if got := reindentLeading(code, "  "); got != code {
		t.Errorf("two-space unit should be unchanged, got %q", got)
	}

	want := "a {\n\tb {\n\t\tc\n\t d\n\t}\n}\n"
	if got := reindentLeading(code, "\t"); got != want {
		t.Errorf("reindentLeading() = %q, want %q", got, want)
	}
}

func TestNativeJSON(t *testing.T) {
	input := `{"imports":{"app":"./app.js","lib":["a","b"]}}`

	got, err := NewNative().Format(context.Background(), input, StructuredData, Options{UseTabs: true})
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	want := "{\n\t\"imports\": {\n\t\t\"app\": \"./app.js\",\n\t\t\"lib\": [\n\t\t\t\"a\",\n\t\t\t\"b\"\n\t\t]\n\t}\n}"
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}

	again, err := NewNative().Format(context.Background(), got, StructuredData, Options{UseTabs: true})
	if err != nil {
		t.Fatalf("second Format() error = %v", err)
	}
	if again != got {
		t.Errorf("formatting is not idempotent: %q", again)
	}
}

func TestNativeJSONSyntaxError(t *testing.T) {
	_, err := NewNative().Format(context.Background(), "{\n\"a\": }", StructuredData, Options{})

	var fmtErr *Error
	if !errors.As(err, &fmtErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if fmtErr.Loc == nil || *fmtErr.Loc != (Location{Line: 2, Column: 6}) {
		t.Errorf("Loc = %+v, want line 2 column 6", fmtErr.Loc)
	}
}

func TestNativeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewNative().Format(ctx, "a()", Code, Options{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Format() error = %v, want context.Canceled", err)
	}
}
