package format

import (
	"regexp"

	"github.com/jsvensson/templfmt/internal/engine"
	"github.com/jsvensson/templfmt/internal/region"
)

// jsonScriptType matches script type declarations whose body is JSON.
var jsonScriptType = regexp.MustCompile(`(?i)(?:^|\s)type\s*=\s*["']?(importmap|application/json|application/ld\+json)["'\s/]`)

// Sniff picks the dialect a region is formatted with.
func Sniff(r region.Region) engine.Dialect {
	if r.Kind == region.ClassAttr {
		return engine.MarkupFragment
	}
	if jsonScriptType.MatchString(r.Attrs + " ") {
		return engine.StructuredData
	}
	return engine.Code
}
