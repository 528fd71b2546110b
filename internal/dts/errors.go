package dts

import "fmt"

// MissingSectionError reports that a conventional top-level section (keymap
// or combos) was not found in the document. Callers may treat it as
// recoverable and substitute an empty section.
type MissingSectionError struct {
	Section string
}

func (e *MissingSectionError) Error() string {
	return fmt.Sprintf("no %q section found in the document", e.Section)
}

// StructuralParseError reports malformed syntax inside a required section,
// with the path of the enclosing node for context.
type StructuralParseError struct {
	Path    string
	Line    int
	Message string
}

func (e *StructuralParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", e.Path, e.Line, e.Message)
	}

	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}
