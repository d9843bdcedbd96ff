package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"
)

var (
	diffAdd    = color.New(color.FgGreen)
	diffRemove = color.New(color.FgRed)
	diffHunk   = color.New(color.FgCyan)
	diffHeader = color.New(color.Bold)
)

// unifiedDiff returns a unified diff between the original and formatted text.
func unifiedDiff(path, original, formatted string) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(original),
		B:        difflib.SplitLines(formatted),
		FromFile: path + ".orig",
		ToFile:   path,
		Context:  3,
	})
}

func writeDiff(w io.Writer, path, original, formatted string) error {
	diff, err := unifiedDiff(path, original, formatted)
	if err != nil {
		return err
	}

	for line := range strings.Lines(diff) {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			diffHeader.Fprint(w, line)
		case strings.HasPrefix(line, "@@"):
			diffHunk.Fprint(w, line)
		case strings.HasPrefix(line, "+"):
			diffAdd.Fprint(w, line)
		case strings.HasPrefix(line, "-"):
			diffRemove.Fprint(w, line)
		default:
			fmt.Fprint(w, line)
		}
	}
	return nil
}
