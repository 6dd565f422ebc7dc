package parser

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"unicode"

	"github.com/dgallion1/meetnotes/internal/doctree"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML panel content. Unknown elements are rejected
// rather than dropped.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.Doc, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	body := findBody(root)
	if body == nil {
		body = root
	}
	blocks, err := htmlBlocks(body, "body")
	if err != nil {
		return nil, err
	}
	return &doctree.Doc{Content: blocks}, nil
}

var inlineTags = map[string]bool{
	"strong": true, "b": true, "em": true, "i": true, "code": true, "a": true, "br": true,
	"span": true, "u": true, "mark": true, "s": true, "del": true, "small": true, "sub": true, "sup": true,
}

// htmlBlocks converts the children of n. Loose inline content between block
// elements is gathered into paragraphs.
func htmlBlocks(n *html.Node, path string) ([]doctree.Block, error) {
	var out []doctree.Block
	var pending []doctree.Inline

	flush := func() {
		if inl := trimInlines(pending); len(inl) > 0 {
			out = append(out, &doctree.Paragraph{Content: inl})
		}
		pending = nil
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			pending = appendText(pending, c.Data, nil)
		case html.ElementNode:
			childPath := path + ">" + c.Data
			if inlineTags[c.Data] {
				inl, err := htmlInline(c, nil, childPath)
				if err != nil {
					return nil, err
				}
				pending = append(pending, inl...)
				continue
			}
			flush()
			blocks, err := htmlBlock(c, childPath)
			if err != nil {
				return nil, err
			}
			out = append(out, blocks...)
		}
	}
	flush()
	return out, nil
}

func htmlBlock(n *html.Node, path string) ([]doctree.Block, error) {
	switch n.Data {
	case "script", "style", "head", "nav", "template":
		return nil, nil

	case "html", "body", "div", "section", "article", "main", "header", "footer":
		return htmlBlocks(n, path)

	case "h1", "h2", "h3", "h4", "h5", "h6":
		inl, err := htmlInlineChildren(n, nil, path)
		if err != nil {
			return nil, err
		}
		return []doctree.Block{&doctree.Heading{Level: int(n.Data[1] - '0'), Content: trimInlines(inl)}}, nil

	case "p":
		inl, err := htmlInlineChildren(n, nil, path)
		if err != nil {
			return nil, err
		}
		return []doctree.Block{&doctree.Paragraph{Content: trimInlines(inl)}}, nil

	case "ul", "ol":
		list, err := htmlList(n, path)
		if err != nil {
			return nil, err
		}
		return []doctree.Block{list}, nil

	case "hr":
		return []doctree.Block{&doctree.HorizontalRule{}}, nil

	case "pre":
		return []doctree.Block{htmlPre(n)}, nil

	case "li":
		return nil, doctree.Structuralf(n.Data, path, "list item outside of a list")

	default:
		return nil, doctree.Structuralf(n.Data, path, "unsupported html element <%s>", n.Data)
	}
}

func htmlList(n *html.Node, path string) (*doctree.List, error) {
	list := &doctree.List{ListKind: doctree.Unordered}
	if n.Data == "ol" {
		list.ListKind = doctree.Ordered
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				return nil, doctree.Structuralf(n.Data, path, "text directly inside <%s>", n.Data)
			}
		case html.ElementNode:
			childPath := fmt.Sprintf("%s>li[%d]", path, len(list.Items))
			if c.Data != "li" {
				return nil, doctree.Structuralf(c.Data, childPath, "<%s> may only contain <li>", n.Data)
			}
			content, err := htmlBlocks(c, childPath)
			if err != nil {
				return nil, err
			}
			list.Items = append(list.Items, &doctree.ListItem{Content: content})
		}
	}
	return list, nil
}

func htmlPre(n *html.Node) *doctree.CodeBlock {
	cb := &doctree.CodeBlock{Text: strings.TrimSuffix(textContent(n), "\n")}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "code" {
			for _, class := range strings.Fields(attr(c, "class")) {
				if lang, ok := strings.CutPrefix(class, "language-"); ok {
					cb.Language = lang
				}
			}
		}
	}
	return cb
}

func htmlInlineChildren(n *html.Node, marks []doctree.Mark, path string) ([]doctree.Inline, error) {
	var out []doctree.Inline
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			out = appendText(out, c.Data, marks)
		case html.ElementNode:
			inl, err := htmlInline(c, marks, path+">"+c.Data)
			if err != nil {
				return nil, err
			}
			out = append(out, inl...)
		}
	}
	return out, nil
}

func htmlInline(n *html.Node, marks []doctree.Mark, path string) ([]doctree.Inline, error) {
	switch n.Data {
	case "strong", "b":
		return htmlInlineChildren(n, withMark(marks, doctree.Bold()), path)
	case "em", "i":
		return htmlInlineChildren(n, withMark(marks, doctree.Italic()), path)
	case "code":
		return htmlInlineChildren(n, withMark(marks, doctree.Code()), path)
	case "a":
		if href := attr(n, "href"); href != "" {
			return htmlInlineChildren(n, withMark(marks, doctree.Link(href)), path)
		}
		return htmlInlineChildren(n, marks, path)
	case "br":
		return []doctree.Inline{&doctree.HardBreak{}}, nil
	case "span", "u", "mark", "s", "del", "small", "sub", "sup":
		return htmlInlineChildren(n, marks, path)
	default:
		return nil, doctree.Structuralf(n.Data, path, "block element <%s> in inline position", n.Data)
	}
}

func withMark(marks []doctree.Mark, m doctree.Mark) []doctree.Mark {
	for _, existing := range marks {
		if existing.Kind == m.Kind {
			return marks
		}
	}
	return append(slices.Clone(marks), m)
}

func appendText(out []doctree.Inline, data string, marks []doctree.Mark) []doctree.Inline {
	s := collapseSpace(data)
	if s == "" {
		return out
	}
	return append(out, &doctree.Text{Text: s, Marks: marks})
}

func collapseSpace(s string) string {
	var sb strings.Builder
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !space {
				sb.WriteByte(' ')
				space = true
			}
			continue
		}
		space = false
		sb.WriteRune(r)
	}
	return sb.String()
}

// trimInlines applies HTML whitespace rules across text run boundaries:
// no leading or trailing space in a block and no doubled spaces.
func trimInlines(in []doctree.Inline) []doctree.Inline {
	out := make([]doctree.Inline, 0, len(in))
	afterSpace := true
	for _, n := range in {
		t, ok := n.(*doctree.Text)
		if !ok {
			out = append(out, n)
			afterSpace = true
			continue
		}
		s := t.Text
		if afterSpace {
			s = strings.TrimLeft(s, " ")
		}
		if s == "" {
			continue
		}
		afterSpace = strings.HasSuffix(s, " ")
		out = append(out, &doctree.Text{Text: s, Marks: t.Marks})
	}
	for len(out) > 0 {
		t, ok := out[len(out)-1].(*doctree.Text)
		if !ok {
			break
		}
		s := strings.TrimRight(t.Text, " ")
		if s != "" {
			out[len(out)-1] = &doctree.Text{Text: s, Marks: t.Marks}
			break
		}
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
