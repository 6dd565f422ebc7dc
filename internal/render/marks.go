package render

import (
	"cmp"
	"slices"
	"strings"

	"github.com/dgallion1/meetnotes/internal/doctree"
)

// ApplyMarks decorates text with Markdown syntax for each mark. Composition
// is fixed regardless of input order: code innermost, then italic, then bold,
// with a link outermost, e.g. [***`x`***](u). Empty text is still wrapped.
func ApplyMarks(text string, marks []doctree.Mark) string {
	if len(marks) == 0 {
		return text
	}

	sorted := slices.Clone(marks)
	slices.SortFunc(sorted, func(a, b doctree.Mark) int {
		if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
			return c
		}
		return strings.Compare(a.Href, b.Href)
	})

	applied := make(map[doctree.MarkKind]bool, len(sorted))
	for _, m := range sorted {
		if applied[m.Kind] {
			continue
		}
		applied[m.Kind] = true

		switch m.Kind {
		case doctree.MarkCode:
			text = "`" + text + "`"
		case doctree.MarkItalic:
			text = "*" + text + "*"
		case doctree.MarkBold:
			text = "**" + text + "**"
		case doctree.MarkLink:
			text = "[" + text + "](" + m.Href + ")"
		}
	}
	return text
}
