package format

import (
	"fmt"
	"strings"

	"github.com/jsvensson/templfmt/internal/region"
)

// document rebuilds one pass over a source string. Regions must be spliced
// in ascending offset order; text between them is copied unchanged.
type document struct {
	src   string
	out   strings.Builder
	pos   int
	edits []edit
}

// edit records that src[start:end] became n bytes of output.
type edit struct {
	start, end, n int
}

func newDocument(src string) *document {
	d := &document{src: src}
	d.out.Grow(len(src))
	return d
}

// splice replaces the span of r with replacement.
func (d *document) splice(r region.Region, replacement string) error {
	if r.Start < d.pos || r.End > len(d.src) || d.src[r.Start:r.End] != r.Text {
		return fmt.Errorf("%s region at [%d:%d] does not follow the spliced prefix", r.Kind, r.Start, r.End)
	}
	d.out.WriteString(d.src[d.pos:r.Start])
	d.out.WriteString(replacement)
	d.pos = r.End
	d.edits = append(d.edits, edit{start: r.Start, end: r.End, n: len(replacement)})
	return nil
}

// mapOffset maps an offset in the source to the output. Offsets inside a
// replaced span map to the start of its replacement.
func (d *document) mapOffset(off int) int {
	delta := 0
	for _, e := range d.edits {
		switch {
		case e.end <= off:
			delta += e.n - (e.end - e.start)
		case e.start < off:
			return e.start + delta
		default:
			return off + delta
		}
	}
	return off + delta
}

func (d *document) String() string {
	return d.out.String() + d.src[d.pos:]
}

// reindentScript rebuilds a script element around formatted code. Each
// non-blank line of code is indented one unit deeper than the opening tag.
func reindentScript(r region.Region, code, unit string) string {
	code = strings.TrimSpace(strings.ReplaceAll(code, "\r\n", "\n"))
	bodyIndent := r.Indent + unit

	var b strings.Builder
	b.WriteString(r.Indent)
	b.WriteString("<script")
	b.WriteString(r.Attrs)
	b.WriteString(">\n")
	for line := range strings.SplitSeq(code, "\n") {
		if strings.TrimSpace(line) != "" {
			b.WriteString(bodyIndent)
			b.WriteString(line)
		}
		b.WriteByte('\n')
	}
	b.WriteString(r.Indent)
	b.WriteString("</script>")
	return b.String()
}
