package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/meetnotes/internal/doctree"
	"github.com/dgallion1/meetnotes/internal/render"
)

func parseMarkdown(t *testing.T, input string) *doctree.Doc {
	t.Helper()
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "notes.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return doc
}

func TestMarkdownParser_Structure(t *testing.T) {
	doc := parseMarkdown(t, "## Agenda\n\n- Item A\n- Item B\n")

	if len(doc.Content) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(doc.Content))
	}
	h, ok := doc.Content[0].(*doctree.Heading)
	if !ok || h.Level != 2 {
		t.Fatalf("expected h2, got %#v", doc.Content[0])
	}
	list, ok := doc.Content[1].(*doctree.List)
	if !ok || list.ListKind != doctree.Unordered {
		t.Fatalf("expected bullet list, got %#v", doc.Content[1])
	}
	if len(list.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(list.Items))
	}
	p, ok := list.Items[1].Content[0].(*doctree.Paragraph)
	if !ok {
		t.Fatalf("expected tight item text as paragraph, got %#v", list.Items[1].Content[0])
	}
	if got := p.Content[0].(*doctree.Text).Text; got != "Item B" {
		t.Errorf("expected %q, got %q", "Item B", got)
	}
}

func TestMarkdownParser_Marks(t *testing.T) {
	doc := parseMarkdown(t, "plain **bold** *it* `code` [site](https://e.test)")
	p := doc.Content[0].(*doctree.Paragraph)

	want := []struct {
		text string
		mark doctree.MarkKind
	}{
		{"bold", doctree.MarkBold},
		{"it", doctree.MarkItalic},
		{"code", doctree.MarkCode},
		{"site", doctree.MarkLink},
	}
	var marked []*doctree.Text
	for _, n := range p.Content {
		if tx := n.(*doctree.Text); len(tx.Marks) > 0 {
			marked = append(marked, tx)
		}
	}
	if len(marked) != len(want) {
		t.Fatalf("expected %d marked runs, got %d", len(want), len(marked))
	}
	for i, w := range want {
		if marked[i].Text != w.text || marked[i].Marks[0].Kind != w.mark {
			t.Errorf("run %d: got %q %v, want %q %v", i, marked[i].Text, marked[i].Marks, w.text, w.mark)
		}
	}
	if href := marked[3].Marks[0].Href; href != "https://e.test" {
		t.Errorf("expected link href, got %q", href)
	}
}

func TestMarkdownParser_SoftBreakBecomesSpace(t *testing.T) {
	got, err := render.Render(parseMarkdown(t, "first line\nsecond line"))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "first line second line" {
		t.Errorf("got %q", got)
	}
}

// Output produced by the renderer parses back into a tree that renders
// identically.
func TestMarkdownParser_RoundTrip(t *testing.T) {
	tests := []string{
		"## Agenda\n\n- Item A\n- Item B",
		"# Weekly sync\n\nOwner: *Dana*\n\n- Ship `v2`\n  1. tag\n  2. deploy",
		"- one\n  - two\n    - three\n- back",
		"[***`x`***](u)",
		"line one  \nline two",
		"### Next steps\n\n---\n\n```sh\necho hi\n```",
		"1. a\n2. b",
	}
	for _, input := range tests {
		got, err := render.Render(parseMarkdown(t, input))
		if err != nil {
			t.Fatalf("render %q: %v", input, err)
		}
		if got != input {
			t.Errorf("round trip mismatch:\n got %q\nwant %q", got, input)
		}
	}
}

func TestMarkdownParser_Unsupported(t *testing.T) {
	tests := []struct {
		input string
		kind  string
		path  string
	}{
		{"> quoted", "Blockquote", "content[0]"},
		{"text ![img](a.png)", "Image", "content[0].content[1]"},
	}
	p := &MarkdownParser{}
	for _, tt := range tests {
		_, err := p.Parse(strings.NewReader(tt.input), "x.md")
		var se *doctree.StructuralError
		if !errors.As(err, &se) {
			t.Fatalf("%q: expected *StructuralError, got %v", tt.input, err)
		}
		if se.Kind != tt.kind || se.Path != tt.path {
			t.Errorf("%q: got kind=%q path=%q, want %q %q", tt.input, se.Kind, se.Path, tt.kind, tt.path)
		}
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	if doc := parseMarkdown(t, ""); !doc.IsEmpty() {
		t.Errorf("expected empty document, got %d blocks", len(doc.Content))
	}
}
