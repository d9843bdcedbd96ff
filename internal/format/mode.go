package format

import (
	"fmt"

	"github.com/jsvensson/templfmt/internal/region"
)

// Mode selects which region kinds are formatted.
type Mode int

const (
	Both Mode = iota
	ScriptOnly
	ClassOnly
)

var modeNames = map[Mode]string{
	Both:       "both",
	ScriptOnly: "script-only",
	ClassOnly:  "class-only",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses a mode name. The empty string selects Both.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return Both, nil
	}
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return Both, fmt.Errorf("unknown mode %q (valid: both, script-only, class-only)", s)
}

// Includes reports whether regions of kind k are formatted in this mode.
func (m Mode) Includes(k region.Kind) bool {
	switch m {
	case ScriptOnly:
		return k == region.Script
	case ClassOnly:
		return k == region.ClassAttr
	default:
		return true
	}
}
