package engine

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// formatFragment normalizes the class attribute of a single-element
// fragment such as <br class="...">. The element must carry the class
// attribute and nothing else.
func formatFragment(text string, opts Options) (string, error) {
	z := html.NewTokenizer(strings.NewReader(text))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return "", &Error{Dialect: MarkupFragment, Message: "fragment contains no element"}
		case html.StartTagToken, html.SelfClosingTagToken:
			raw := string(z.Raw())
			return renderFragment(z.Token(), raw, opts)
		}
	}
}

func renderFragment(tok html.Token, raw string, opts Options) (string, error) {
	var class *html.Attribute
	for i := range tok.Attr {
		attr := &tok.Attr[i]
		if attr.Key != "class" {
			return "", &Error{
				Dialect: MarkupFragment,
				Message: fmt.Sprintf("unexpected attribute %q in class fragment", attr.Key),
			}
		}
		if class != nil {
			return "", &Error{Dialect: MarkupFragment, Message: "duplicate class attribute"}
		}
		class = attr
	}
	if class == nil {
		return "", &Error{Dialect: MarkupFragment, Message: "fragment has no class attribute"}
	}

	// Character references are kept as written.
	value := SortClasses(rawAttrValue(raw), opts.ClassOrder)
	value = strings.ReplaceAll(value, `"`, "&quot;")
	return fmt.Sprintf(`<%s class="%s">`, tok.Data, value), nil
}

// rawAttrValue returns the undecoded value of the only attribute in a raw
// start tag, without its quotes.
func rawAttrValue(raw string) string {
	_, rest, ok := strings.Cut(raw, "=")
	if !ok {
		return ""
	}
	rest = strings.TrimLeft(rest, " \t\n\f\r")
	if rest == "" {
		return ""
	}
	if q := rest[0]; q == '"' || q == '\'' {
		value, _, _ := strings.Cut(rest[1:], string(q))
		return value
	}
	if end := strings.IndexAny(rest, " \t\n\f\r>"); end >= 0 {
		return rest[:end]
	}
	return rest
}

// SortClasses collapses whitespace in a class list and applies the given
// ordering. Ordering is stable: classes with equal rank keep their relative
// positions.
func SortClasses(list string, order ClassOrder) string {
	classes := strings.Fields(list)
	if order == VariantsLast {
		slices.SortStableFunc(classes, func(a, b string) int {
			return cmp.Compare(variantDepth(a), variantDepth(b))
		})
	}
	return strings.Join(classes, " ")
}

// variantDepth counts the variant prefixes of a utility class, e.g. 0 for
// "p-4", 1 for "hover:p-4" and 2 for "md:hover:p-4". Colons inside
// arbitrary values ("[&:hover]:p-4", "bg-[url(a:b)]") are not separators.
func variantDepth(class string) int {
	depth, nesting := 0, 0
	for i := 0; i < len(class); i++ {
		switch class[i] {
		case '[', '(':
			nesting++
		case ']', ')':
			if nesting > 0 {
				nesting--
			}
		case ':':
			if nesting == 0 {
				depth++
			}
		}
	}
	return depth
}
