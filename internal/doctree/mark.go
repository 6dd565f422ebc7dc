package doctree

import "fmt"

// MarkKind is an inline decoration. The numeric order is the composition
// order, innermost first.
type MarkKind int

const (
	MarkCode MarkKind = iota
	MarkItalic
	MarkBold
	MarkLink
)

var markNames = map[MarkKind]string{
	MarkCode:   "code",
	MarkItalic: "italic",
	MarkBold:   "bold",
	MarkLink:   "link",
}

func (k MarkKind) String() string {
	if name, ok := markNames[k]; ok {
		return name
	}
	return fmt.Sprintf("mark(%d)", int(k))
}

// ParseMarkKind maps an upstream mark type name to its MarkKind.
func ParseMarkKind(name string) (MarkKind, bool) {
	for k, n := range markNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// Mark is a single decoration on a Text run. Href is only set for links.
type Mark struct {
	Kind MarkKind
	Href string
}

func Bold() Mark            { return Mark{Kind: MarkBold} }
func Italic() Mark          { return Mark{Kind: MarkItalic} }
func Code() Mark            { return Mark{Kind: MarkCode} }
func Link(href string) Mark { return Mark{Kind: MarkLink, Href: href} }
