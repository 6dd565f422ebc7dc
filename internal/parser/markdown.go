package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/dgallion1/meetnotes/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown input using goldmark. Constructs the
// document tree cannot represent (block quotes, images, raw HTML) are
// rejected with a *doctree.StructuralError.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Doc, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(src))

	c := mdConverter{src: src}
	blocks, err := c.blocks(root, "")
	if err != nil {
		return nil, err
	}
	return &doctree.Doc{Content: blocks}, nil
}

type mdConverter struct {
	src []byte
}

func (c mdConverter) blocks(parent ast.Node, path string) ([]doctree.Block, error) {
	var out []doctree.Block
	i := 0
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		b, err := c.block(n, doctree.ChildPath(path, i))
		if err != nil {
			return nil, err
		}
		out = append(out, b)
		i++
	}
	return out, nil
}

func (c mdConverter) block(n ast.Node, path string) (doctree.Block, error) {
	switch n := n.(type) {
	case *ast.Heading:
		inl, err := c.inlines(n, nil, path)
		if err != nil {
			return nil, err
		}
		return &doctree.Heading{Level: n.Level, Content: inl}, nil

	case *ast.Paragraph, *ast.TextBlock:
		inl, err := c.inlines(n, nil, path)
		if err != nil {
			return nil, err
		}
		return &doctree.Paragraph{Content: inl}, nil

	case *ast.List:
		list := &doctree.List{ListKind: doctree.Unordered}
		if n.IsOrdered() {
			list.ListKind = doctree.Ordered
		}
		i := 0
		for it := n.FirstChild(); it != nil; it = it.NextSibling() {
			content, err := c.blocks(it, doctree.ChildPath(path, i))
			if err != nil {
				return nil, err
			}
			list.Items = append(list.Items, &doctree.ListItem{Content: content})
			i++
		}
		return list, nil

	case *ast.ThematicBreak:
		return &doctree.HorizontalRule{}, nil

	case *ast.FencedCodeBlock:
		return &doctree.CodeBlock{Language: string(n.Language(c.src)), Text: c.lines(n)}, nil

	case *ast.CodeBlock:
		return &doctree.CodeBlock{Text: c.lines(n)}, nil

	default:
		return nil, doctree.Structuralf(n.Kind().String(), path, "unsupported markdown block %s", n.Kind())
	}
}

func (c mdConverter) lines(n ast.Node) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(c.src))
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func (c mdConverter) inlines(parent ast.Node, marks []doctree.Mark, path string) ([]doctree.Inline, error) {
	var out []doctree.Inline
	i := 0
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		childPath := doctree.ChildPath(path, i)
		i++

		switch n := n.(type) {
		case *ast.Text:
			s := string(n.Segment.Value(c.src))
			switch {
			case n.HardLineBreak():
				out = appendMarked(out, strings.TrimRight(s, " "), marks)
				out = append(out, &doctree.HardBreak{})
			case n.SoftLineBreak():
				out = appendMarked(out, s+" ", marks)
			default:
				out = appendMarked(out, s, marks)
			}

		case *ast.String:
			out = appendMarked(out, string(n.Value), marks)

		case *ast.Emphasis:
			m := doctree.Italic()
			if n.Level >= 2 {
				m = doctree.Bold()
			}
			inl, err := c.inlines(n, withMark(marks, m), childPath)
			if err != nil {
				return nil, err
			}
			out = append(out, inl...)

		case *ast.CodeSpan:
			var buf strings.Builder
			for t := n.FirstChild(); t != nil; t = t.NextSibling() {
				if seg, ok := t.(*ast.Text); ok {
					buf.Write(seg.Segment.Value(c.src))
					if seg.SoftLineBreak() {
						buf.WriteByte(' ')
					}
				}
			}
			out = appendMarked(out, buf.String(), withMark(marks, doctree.Code()))

		case *ast.Link:
			inl, err := c.inlines(n, withMark(marks, doctree.Link(string(n.Destination))), childPath)
			if err != nil {
				return nil, err
			}
			out = append(out, inl...)

		case *ast.AutoLink:
			href := string(n.URL(c.src))
			out = appendMarked(out, string(n.Label(c.src)), withMark(marks, doctree.Link(href)))

		default:
			return nil, doctree.Structuralf(n.Kind().String(), childPath, "unsupported markdown inline %s", n.Kind())
		}
	}
	return out, nil
}

func appendMarked(out []doctree.Inline, s string, marks []doctree.Mark) []doctree.Inline {
	if s == "" {
		return out
	}
	return append(out, &doctree.Text{Text: s, Marks: marks})
}
