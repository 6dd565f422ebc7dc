package render

import (
	"strconv"
	"strings"

	"github.com/dgallion1/meetnotes/internal/doctree"
)

// IndentWidth is the number of spaces per list nesting level in the
// reference export.
const IndentWidth = 2

// ListFormatter computes indentation and item markers.
type ListFormatter struct {
	IndentWidth int
}

// Indent returns the leading whitespace for a list at depth.
func (f ListFormatter) Indent(depth int) string {
	w := f.IndentWidth
	if w <= 0 {
		w = IndentWidth
	}
	return strings.Repeat(" ", w*depth)
}

// Marker returns "-" for bullet items and "N." for numbered items, where
// index is 1-based within the item's own list.
func (f ListFormatter) Marker(kind doctree.ListKind, index int) string {
	if kind == doctree.Ordered {
		return strconv.Itoa(index) + "."
	}
	return "-"
}

// Prefix is the full marker line prefix, including the trailing space.
func (f ListFormatter) Prefix(depth, index int, kind doctree.ListKind) string {
	return f.Indent(depth) + f.Marker(kind, index) + " "
}

// RenderItem renders one list item at depth. Paragraph text is joined onto
// the marker line; nested lists follow at depth+1; any other block follows on
// continuation lines indented to depth+1.
func (r *Renderer) RenderItem(item *doctree.ListItem, depth, index int, kind doctree.ListKind) (string, error) {
	return r.renderItem(item, depth, index, kind, "", 1)
}

func (r *Renderer) renderItem(item *doctree.ListItem, depth, index int, kind doctree.ListKind, path string, nesting int) (string, error) {
	if err := r.checkDepth(string(doctree.KindListItem), path, nesting); err != nil {
		return "", err
	}

	var inline []string
	var trailing []string
	if item != nil {
		for i, b := range item.Content {
			childPath := doctree.ChildPath(path, i)
			if isNilNode(b) {
				return "", doctree.Structuralf("nil", childPath, "missing block node")
			}
			switch b := b.(type) {
			case *doctree.Paragraph:
				text, err := r.inline(b.Content, childPath, nesting+1)
				if err != nil {
					return "", err
				}
				if text != "" {
					inline = append(inline, text)
				}
			case *doctree.List:
				nested, err := r.list(b, depth+1, childPath, nesting+1)
				if err != nil {
					return "", err
				}
				if nested != "" {
					trailing = append(trailing, nested)
				}
			default:
				s, err := r.block(b, depth+1, childPath, nesting+1)
				if err != nil {
					return "", err
				}
				trailing = append(trailing, indentLines(s, r.Lists.Indent(depth+1)))
			}
		}
	}

	lines := make([]string, 0, 1+len(trailing))
	// Lines after a hard break stay inside the item.
	head := continueLines(strings.Join(inline, " "), r.Lists.Indent(depth+1))
	lines = append(lines, r.Lists.Prefix(depth, index, kind)+head)
	lines = append(lines, trailing...)
	return strings.Join(lines, "\n"), nil
}

func (r *Renderer) list(l *doctree.List, depth int, path string, nesting int) (string, error) {
	if l == nil {
		return "", doctree.Structuralf("nil", path, "missing list node")
	}
	if err := r.checkDepth(string(l.Kind()), path, nesting); err != nil {
		return "", err
	}
	lines := make([]string, 0, len(l.Items))
	for i, item := range l.Items {
		s, err := r.renderItem(item, depth, i+1, l.ListKind, doctree.ChildPath(path, i), nesting+1)
		if err != nil {
			return "", err
		}
		lines = append(lines, s)
	}
	return strings.Join(lines, "\n"), nil
}

func indentLines(s, indent string) string {
	if indent == "" || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = indent + line
		}
	}
	return strings.Join(lines, "\n")
}

// continueLines indents every line of s after the first.
func continueLines(s, indent string) string {
	first, rest, ok := strings.Cut(s, "\n")
	if !ok {
		return s
	}
	return first + "\n" + indentLines(rest, indent)
}
