// Package region locates embedded foreign-content regions in templ source:
// script element bodies and quoted class attribute values.
//
// Scanners are plain functions over a string. Each call returns a fresh
// sequence, so re-scanning a buffer after it has been rewritten is always
// safe.
package region

import (
	"iter"
	"regexp"
	"strings"
)

// Kind identifies the category of an embedded region.
type Kind int

const (
	Script Kind = iota
	ClassAttr
)

func (k Kind) String() string {
	switch k {
	case Script:
		return "script"
	case ClassAttr:
		return "class attribute"
	default:
		return "unknown"
	}
}

// Region is a span of embedded content discovered in a document.
type Region struct {
	Kind Kind

	// Start and End are byte offsets of Text within the scanned string.
	Start int
	End   int

	// Text is the exact matched substring.
	Text string

	// Indent is the whitespace between the start of the line and the
	// opening tag. Empty for class attributes.
	Indent string

	// Attrs is the raw attribute text of the opening tag, including any
	// leading whitespace. Empty for class attributes.
	Attrs string

	// Content is the text to be reformatted: the script body, or the
	// attribute itself for class attributes.
	Content string
}

// Scan returns the regions of kind k in text, in document order.
func Scan(text string, k Kind) iter.Seq[Region] {
	if k == ClassAttr {
		return ClassAttrs(text)
	}
	return Scripts(text)
}

const (
	scriptOpen  = "<script"
	scriptClose = "</script>"
)

// Scripts returns the script elements in text whose body starts on the line
// after the opening tag. Elements with an empty or whitespace-only body are
// not reported.
func Scripts(text string) iter.Seq[Region] {
	return func(yield func(Region) bool) {
		pos := 0
		for {
			r, next, ok := nextScript(text, pos)
			if !ok {
				return
			}
			pos = next
			if strings.TrimSpace(r.Content) == "" {
				continue
			}
			if !yield(r) {
				return
			}
		}
	}
}

func nextScript(text string, from int) (Region, int, bool) {
	for from < len(text) {
		i := strings.Index(text[from:], scriptOpen)
		if i < 0 {
			return Region{}, len(text), false
		}
		tagStart := from + i
		from = tagStart + len(scriptOpen)

		lineStart := strings.LastIndexByte(text[:tagStart], '\n') + 1
		indent := text[lineStart:tagStart]
		if !isIndent(indent) {
			continue
		}
		if from < len(text) && !isTagNameEnd(text[from]) {
			continue
		}

		gt := strings.IndexByte(text[from:], '>')
		if gt < 0 {
			return Region{}, len(text), false
		}
		attrs := text[from : from+gt]
		bodyStart := from + gt + 1
		if strings.HasSuffix(attrs, "/") {
			from = bodyStart
			continue
		}

		end := strings.Index(text[bodyStart:], scriptClose)
		if end < 0 {
			return Region{}, len(text), false
		}
		bodyEnd := bodyStart + end
		regionEnd := bodyEnd + len(scriptClose)
		body := text[bodyStart:bodyEnd]

		var content string
		switch {
		case body == "":
		case body[0] == '\n':
			content = body[1:]
		case strings.HasPrefix(body, "\r\n"):
			content = body[2:]
		default:
			// Body shares the opening tag's line; leave it alone.
			from = regionEnd
			continue
		}

		return Region{
			Kind:    Script,
			Start:   lineStart,
			End:     regionEnd,
			Text:    text[lineStart:regionEnd],
			Indent:  indent,
			Attrs:   attrs,
			Content: content,
		}, regionEnd, true
	}
	return Region{}, len(text), false
}

func isIndent(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != ' ' && s[i] != '\t' {
			return false
		}
	}
	return true
}

func isTagNameEnd(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '/', '>':
		return true
	}
	return false
}

var classAttrPattern = regexp.MustCompile(`class="[^"\\]*(?:\\.[^"\\]*)*"|class='[^'\\]*(?:\\.[^'\\]*)*'`)

// ClassAttrs returns every quoted class attribute in text, single or double
// quoted. Backslash escapes inside the value are honored.
func ClassAttrs(text string) iter.Seq[Region] {
	return func(yield func(Region) bool) {
		pos := 0
		for pos < len(text) {
			loc := classAttrPattern.FindStringIndex(text[pos:])
			if loc == nil {
				return
			}
			start, end := pos+loc[0], pos+loc[1]
			pos = end
			// data-class="..." and friends are different attributes.
			if start > 0 && isAttrNameByte(text[start-1]) {
				continue
			}
			r := Region{
				Kind:    ClassAttr,
				Start:   start,
				End:     end,
				Text:    text[start:end],
				Content: text[start:end],
			}
			if !yield(r) {
				return
			}
		}
	}
}

// MatchClassAttr returns the first class attribute in text.
func MatchClassAttr(text string) (string, bool) {
	for r := range ClassAttrs(text) {
		return r.Text, true
	}
	return "", false
}

func isAttrNameByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '-', c == '_', c == ':', c == '.', c == '@':
		return true
	}
	return false
}
