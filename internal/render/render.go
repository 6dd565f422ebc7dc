package render

import (
	"strings"

	"github.com/dgallion1/meetnotes/internal/doctree"
)

// HardBreak is the Markdown line break token used by the reference export.
const HardBreak = "  \n"

// Renderer converts a typed document tree into Markdown. It holds no state
// between calls and is safe for concurrent use.
type Renderer struct {
	// MaxDepth bounds node nesting; past it Render fails with a
	// *doctree.StructuralError. Zero means doctree.DefaultMaxDepth.
	MaxDepth int
	Lists    ListFormatter
}

// New returns a Renderer with the reference export settings.
func New(maxDepth int) *Renderer {
	return &Renderer{
		MaxDepth: maxDepth,
		Lists:    ListFormatter{IndentWidth: IndentWidth},
	}
}

// Render converts doc to Markdown using default settings.
func Render(doc *doctree.Doc) (string, error) {
	return New(0).Render(doc)
}

// RenderJSON validates a ProseMirror JSON payload and renders it.
func RenderJSON(data []byte) (string, error) {
	return New(0).RenderJSON(data)
}

// RenderJSON validates a ProseMirror JSON payload and renders it. Nothing is
// returned on a structural error.
func (r *Renderer) RenderJSON(data []byte) (string, error) {
	doc, err := doctree.Decoder{MaxDepth: r.MaxDepth}.Decode(data)
	if err != nil {
		return "", err
	}
	return r.Render(doc)
}

// Render converts doc to Markdown. Top-level blocks are separated by a blank
// line. An empty document renders to the empty string.
func (r *Renderer) Render(doc *doctree.Doc) (string, error) {
	if doc.IsEmpty() {
		return "", nil
	}
	parts := make([]string, 0, len(doc.Content))
	for i, b := range doc.Content {
		s, err := r.block(b, 0, doctree.ChildPath("", i), 1)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "\n\n"), nil
}

func (r *Renderer) block(b doctree.Block, depth int, path string, nesting int) (string, error) {
	if isNilNode(b) {
		return "", doctree.Structuralf("nil", path, "missing block node")
	}
	if err := r.checkDepth(kindOf(b), path, nesting); err != nil {
		return "", err
	}

	switch b := b.(type) {
	case *doctree.Heading:
		if b.Level < 1 || b.Level > 6 {
			return "", doctree.Structuralf(string(doctree.KindHeading), path, "heading level %d out of range 1-6", b.Level)
		}
		// A heading is a single line, so hard breaks become spaces.
		text, err := r.inlineWith(b.Content, " ", path, nesting+1)
		if err != nil {
			return "", err
		}
		return strings.Repeat("#", b.Level) + " " + text, nil

	case *doctree.Paragraph:
		return r.inline(b.Content, path, nesting+1)

	case *doctree.List:
		return r.list(b, depth, path, nesting)

	case *doctree.HorizontalRule:
		return "---", nil

	case *doctree.CodeBlock:
		return "```" + b.Language + "\n" + b.Text + "\n```", nil

	default:
		return "", doctree.Structuralf(kindOf(b), path, "unsupported block node %T", b)
	}
}

func (r *Renderer) inline(content []doctree.Inline, path string, nesting int) (string, error) {
	return r.inlineWith(content, HardBreak, path, nesting)
}

// inlineWith concatenates inline content, writing brk for each hard break.
func (r *Renderer) inlineWith(content []doctree.Inline, brk, path string, nesting int) (string, error) {
	var sb strings.Builder
	for i, n := range content {
		if isNilNode(n) {
			return "", doctree.Structuralf("nil", doctree.ChildPath(path, i), "missing inline node")
		}
		switch n := n.(type) {
		case *doctree.Text:
			sb.WriteString(ApplyMarks(n.Text, n.Marks))
		case *doctree.HardBreak:
			sb.WriteString(brk)
		default:
			childPath := doctree.ChildPath(path, i)
			return "", doctree.Structuralf(kindOf(n), childPath, "unsupported inline node %T", n)
		}
	}
	return sb.String(), nil
}

func (r *Renderer) checkDepth(kind, path string, nesting int) error {
	limit := r.MaxDepth
	if limit <= 0 {
		limit = doctree.DefaultMaxDepth
	}
	if nesting > limit {
		return doctree.Structuralf(kind, path, "nesting exceeds maximum depth %d", limit)
	}
	return nil
}

// isNilNode reports a nil interface or a typed nil pointer.
func isNilNode(n doctree.Node) bool {
	switch n := n.(type) {
	case nil:
		return true
	case *doctree.Heading:
		return n == nil
	case *doctree.Paragraph:
		return n == nil
	case *doctree.List:
		return n == nil
	case *doctree.ListItem:
		return n == nil
	case *doctree.HorizontalRule:
		return n == nil
	case *doctree.CodeBlock:
		return n == nil
	case *doctree.Text:
		return n == nil
	case *doctree.HardBreak:
		return n == nil
	}
	return false
}

func kindOf(n doctree.Node) string {
	if isNilNode(n) {
		return "nil"
	}
	return string(n.Kind())
}
