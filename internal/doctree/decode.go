package doctree

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// DefaultMaxDepth bounds node nesting for decoding and rendering.
const DefaultMaxDepth = 64

// RawNode is the untyped ProseMirror JSON shape served by the notes API.
type RawNode struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []RawNode      `json:"content,omitempty"`
	Text    *string        `json:"text,omitempty"`
	Marks   []RawMark      `json:"marks,omitempty"`
}

// RawMark is the untyped form of a text mark.
type RawMark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// Decoder validates raw payloads into a typed Doc. The zero value uses
// DefaultMaxDepth.
type Decoder struct {
	MaxDepth int
}

// Decode parses and validates a ProseMirror JSON document.
func Decode(data []byte) (*Doc, error) {
	return Decoder{}.Decode(data)
}

// Decode parses and validates a ProseMirror JSON document.
func (d Decoder) Decode(data []byte) (*Doc, error) {
	var raw RawNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &StructuralError{Reason: fmt.Sprintf("invalid document json: %v", err)}
	}
	return d.FromRaw(&raw)
}

// FromRaw validates an already-unmarshaled tree.
func (d Decoder) FromRaw(raw *RawNode) (*Doc, error) {
	if raw == nil {
		return &Doc{}, nil
	}
	if Kind(raw.Type) != KindDoc {
		return nil, Structuralf(raw.Type, "", "root must be %q", KindDoc)
	}
	blocks, err := d.blocks(raw.Content, "", 1)
	if err != nil {
		return nil, err
	}
	return &Doc{Content: blocks}, nil
}

// FromValue validates a tree that arrived as a generic JSON value, e.g. a
// field typed as `any` in a larger response.
func (d Decoder) FromValue(v any) (*Doc, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, &StructuralError{Reason: fmt.Sprintf("re-encode document: %v", err)}
	}
	return d.Decode(data)
}

func (d Decoder) maxDepth() int {
	if d.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return d.MaxDepth
}

func (d Decoder) blocks(raws []RawNode, parent string, depth int) ([]Block, error) {
	if len(raws) == 0 {
		return nil, nil
	}
	out := make([]Block, 0, len(raws))
	for i := range raws {
		b, err := d.block(&raws[i], ChildPath(parent, i), depth)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (d Decoder) block(raw *RawNode, path string, depth int) (Block, error) {
	if depth > d.maxDepth() {
		return nil, Structuralf(raw.Type, path, "nesting exceeds maximum depth %d", d.maxDepth())
	}

	switch Kind(raw.Type) {
	case KindHeading:
		level, err := headingLevel(raw, path)
		if err != nil {
			return nil, err
		}
		inl, err := d.inlines(raw.Content, path, depth+1)
		if err != nil {
			return nil, err
		}
		return &Heading{Level: level, Content: inl}, nil

	case KindParagraph:
		inl, err := d.inlines(raw.Content, path, depth+1)
		if err != nil {
			return nil, err
		}
		return &Paragraph{Content: inl}, nil

	case KindBulletList, KindOrderedList:
		list := &List{ListKind: Unordered}
		if Kind(raw.Type) == KindOrderedList {
			list.ListKind = Ordered
		}
		for i := range raw.Content {
			child := &raw.Content[i]
			childPath := ChildPath(path, i)
			if Kind(child.Type) != KindListItem {
				return nil, Structuralf(child.Type, childPath, "%s may only contain %s", raw.Type, KindListItem)
			}
			if depth+1 > d.maxDepth() {
				return nil, Structuralf(child.Type, childPath, "nesting exceeds maximum depth %d", d.maxDepth())
			}
			content, err := d.blocks(child.Content, childPath, depth+2)
			if err != nil {
				return nil, err
			}
			list.Items = append(list.Items, &ListItem{Content: content})
		}
		return list, nil

	case KindHorizontalRule:
		if len(raw.Content) > 0 {
			return nil, Structuralf(raw.Type, path, "leaf node has children")
		}
		return &HorizontalRule{}, nil

	case KindCodeBlock:
		var sb strings.Builder
		for i := range raw.Content {
			child := &raw.Content[i]
			switch Kind(child.Type) {
			case KindText:
				if child.Text == nil {
					return nil, Structuralf(child.Type, ChildPath(path, i), "text node without text")
				}
				sb.WriteString(*child.Text)
			case KindHardBreak:
				sb.WriteByte('\n')
			default:
				return nil, Structuralf(child.Type, ChildPath(path, i), "codeBlock may only contain text")
			}
		}
		lang, _ := raw.Attrs["language"].(string)
		return &CodeBlock{Language: lang, Text: sb.String()}, nil

	case KindListItem:
		return nil, Structuralf(raw.Type, path, "listItem outside of a list")
	case KindText, KindHardBreak:
		return nil, Structuralf(raw.Type, path, "inline node in block position")
	case "":
		return nil, Structuralf(raw.Type, path, "node without type")
	default:
		return nil, Structuralf(raw.Type, path, "unknown node kind %q", raw.Type)
	}
}

func (d Decoder) inlines(raws []RawNode, parent string, depth int) ([]Inline, error) {
	if len(raws) == 0 {
		return nil, nil
	}
	if depth > d.maxDepth() {
		return nil, Structuralf(raws[0].Type, ChildPath(parent, 0), "nesting exceeds maximum depth %d", d.maxDepth())
	}
	out := make([]Inline, 0, len(raws))
	for i := range raws {
		raw := &raws[i]
		path := ChildPath(parent, i)
		switch Kind(raw.Type) {
		case KindText:
			if raw.Text == nil {
				return nil, Structuralf(raw.Type, path, "text node without text")
			}
			if len(raw.Content) > 0 {
				return nil, Structuralf(raw.Type, path, "leaf node has children")
			}
			marks, err := decodeMarks(raw.Marks, path)
			if err != nil {
				return nil, err
			}
			out = append(out, &Text{Text: *raw.Text, Marks: marks})
		case KindHardBreak:
			if len(raw.Content) > 0 {
				return nil, Structuralf(raw.Type, path, "leaf node has children")
			}
			out = append(out, &HardBreak{})
		case KindHeading, KindParagraph, KindBulletList, KindOrderedList, KindListItem, KindHorizontalRule, KindCodeBlock:
			return nil, Structuralf(raw.Type, path, "block node in inline position")
		case "":
			return nil, Structuralf(raw.Type, path, "node without type")
		default:
			return nil, Structuralf(raw.Type, path, "unknown node kind %q", raw.Type)
		}
	}
	return out, nil
}

func decodeMarks(raws []RawMark, path string) ([]Mark, error) {
	if len(raws) == 0 {
		return nil, nil
	}
	seen := make(map[MarkKind]bool, len(raws))
	marks := make([]Mark, 0, len(raws))
	for _, rm := range raws {
		kind, ok := ParseMarkKind(rm.Type)
		if !ok {
			return nil, Structuralf(string(KindText), path, "unknown mark %q", rm.Type)
		}
		if seen[kind] {
			return nil, Structuralf(string(KindText), path, "duplicate mark %q", rm.Type)
		}
		seen[kind] = true

		m := Mark{Kind: kind}
		if kind == MarkLink {
			href, _ := rm.Attrs["href"].(string)
			if href == "" {
				return nil, Structuralf(string(KindText), path, "link mark without href")
			}
			m.Href = href
		}
		marks = append(marks, m)
	}
	return marks, nil
}

func headingLevel(raw *RawNode, path string) (int, error) {
	v, ok := raw.Attrs["level"]
	if !ok {
		return 0, Structuralf(raw.Type, path, "heading without level")
	}
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) {
		return 0, Structuralf(raw.Type, path, "heading level must be an integer, got %v", v)
	}
	level := int(f)
	if level < 1 || level > 6 {
		return 0, Structuralf(raw.Type, path, "heading level %d out of range 1-6", level)
	}
	return level, nil
}
