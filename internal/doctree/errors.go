package doctree

import "fmt"

// StructuralError reports input whose shape does not match the expected
// tree contract. Path locates the offending node, e.g. "content[1].content[0]".
type StructuralError struct {
	Kind   string
	Path   string
	Reason string
}

func (e *StructuralError) Error() string {
	where := e.Path
	if where == "" {
		where = "root"
	}
	if e.Kind != "" {
		return fmt.Sprintf("structural error at %s (%s): %s", where, e.Kind, e.Reason)
	}
	return fmt.Sprintf("structural error at %s: %s", where, e.Reason)
}

// Structuralf builds a StructuralError with a formatted reason.
func Structuralf(kind, path, format string, args ...any) *StructuralError {
	return &StructuralError{Kind: kind, Path: path, Reason: fmt.Sprintf(format, args...)}
}

// ChildPath appends an indexed content segment to a node path.
func ChildPath(parent string, i int) string {
	if parent == "" {
		return fmt.Sprintf("content[%d]", i)
	}
	return fmt.Sprintf("%s.content[%d]", parent, i)
}
