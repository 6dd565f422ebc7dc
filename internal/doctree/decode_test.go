package doctree

import (
	"errors"
	"strings"
	"testing"
)

func TestDecode_AllKinds(t *testing.T) {
	input := `{
		"type": "doc",
		"content": [
			{"type": "heading", "attrs": {"level": 2, "id": "h-1"}, "content": [{"type": "text", "text": "Agenda"}]},
			{"type": "paragraph", "content": [
				{"type": "text", "text": "see "},
				{"type": "text", "text": "docs", "marks": [{"type": "link", "attrs": {"href": "https://x.test"}}, {"type": "bold"}]},
				{"type": "hardBreak"}
			]},
			{"type": "bulletList", "content": [
				{"type": "listItem", "content": [{"type": "paragraph", "content": [{"type": "text", "text": "one"}]}]}
			]},
			{"type": "orderedList", "attrs": {"start": 1}, "content": []},
			{"type": "horizontalRule"},
			{"type": "codeBlock", "attrs": {"language": "go"}, "content": [{"type": "text", "text": "x := 1"}]}
		]
	}`

	doc, err := Decode([]byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Content) != 6 {
		t.Fatalf("expected 6 blocks, got %d", len(doc.Content))
	}

	h, ok := doc.Content[0].(*Heading)
	if !ok {
		t.Fatalf("expected *Heading, got %T", doc.Content[0])
	}
	if h.Level != 2 {
		t.Errorf("expected level 2, got %d", h.Level)
	}

	p := doc.Content[1].(*Paragraph)
	if len(p.Content) != 3 {
		t.Fatalf("expected 3 inlines, got %d", len(p.Content))
	}
	link := p.Content[1].(*Text)
	if len(link.Marks) != 2 || link.Marks[0].Kind != MarkLink || link.Marks[0].Href != "https://x.test" {
		t.Errorf("unexpected marks: %+v", link.Marks)
	}
	if _, ok := p.Content[2].(*HardBreak); !ok {
		t.Errorf("expected *HardBreak, got %T", p.Content[2])
	}

	bl := doc.Content[2].(*List)
	if bl.ListKind != Unordered || len(bl.Items) != 1 {
		t.Errorf("unexpected bullet list: %+v", bl)
	}
	if ol := doc.Content[3].(*List); ol.ListKind != Ordered || ol.Kind() != KindOrderedList {
		t.Errorf("expected ordered list, got %+v", ol)
	}

	cb := doc.Content[5].(*CodeBlock)
	if cb.Language != "go" || cb.Text != "x := 1" {
		t.Errorf("unexpected code block: %+v", cb)
	}
}

func TestDecode_EmptyDoc(t *testing.T) {
	doc, err := Decode([]byte(`{"type":"doc","content":[]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !doc.IsEmpty() {
		t.Errorf("expected empty doc, got %d blocks", len(doc.Content))
	}
}

func TestDecode_StructuralErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantKind string
		wantPath string
		wantMsg  string
	}{
		{
			name:     "unknown block kind",
			input:    `{"type":"doc","content":[{"type":"paragraph"},{"type":"table","content":[]}]}`,
			wantKind: "table",
			wantPath: "content[1]",
			wantMsg:  "unknown node kind",
		},
		{
			name:     "heading without level",
			input:    `{"type":"doc","content":[{"type":"heading","content":[{"type":"text","text":"x"}]}]}`,
			wantKind: "heading",
			wantPath: "content[0]",
			wantMsg:  "without level",
		},
		{
			name:     "heading level out of range",
			input:    `{"type":"doc","content":[{"type":"heading","attrs":{"level":9}}]}`,
			wantKind: "heading",
			wantMsg:  "out of range",
		},
		{
			name:     "fractional heading level",
			input:    `{"type":"doc","content":[{"type":"heading","attrs":{"level":1.5}}]}`,
			wantKind: "heading",
			wantMsg:  "must be an integer",
		},
		{
			name:     "unknown mark",
			input:    `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"x","marks":[{"type":"strike"}]}]}]}`,
			wantKind: "text",
			wantPath: "content[0].content[0]",
			wantMsg:  "unknown mark",
		},
		{
			name:    "link without href",
			input:   `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"x","marks":[{"type":"link"}]}]}]}`,
			wantMsg: "without href",
		},
		{
			name:    "duplicate mark",
			input:   `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"x","marks":[{"type":"bold"},{"type":"bold"}]}]}]}`,
			wantMsg: "duplicate mark",
		},
		{
			name:     "list with non-item child",
			input:    `{"type":"doc","content":[{"type":"bulletList","content":[{"type":"paragraph"}]}]}`,
			wantKind: "paragraph",
			wantPath: "content[0].content[0]",
			wantMsg:  "may only contain listItem",
		},
		{
			name:    "inline at block level",
			input:   `{"type":"doc","content":[{"type":"text","text":"loose"}]}`,
			wantMsg: "inline node in block position",
		},
		{
			name:    "block inside paragraph",
			input:   `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"paragraph"}]}]}`,
			wantMsg: "block node in inline position",
		},
		{
			name:    "text without text",
			input:   `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text"}]}]}`,
			wantMsg: "without text",
		},
		{
			name:    "wrong root",
			input:   `{"type":"paragraph"}`,
			wantMsg: "root must be",
		},
		{
			name:    "invalid json",
			input:   `{"type":`,
			wantMsg: "invalid document json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Decode([]byte(tt.input))
			if err == nil {
				t.Fatalf("expected error, got doc %+v", doc)
			}
			if doc != nil {
				t.Errorf("expected nil doc on error")
			}
			var se *StructuralError
			if !errors.As(err, &se) {
				t.Fatalf("expected *StructuralError, got %T: %v", err, err)
			}
			if tt.wantKind != "" && se.Kind != tt.wantKind {
				t.Errorf("expected kind %q, got %q", tt.wantKind, se.Kind)
			}
			if tt.wantPath != "" && se.Path != tt.wantPath {
				t.Errorf("expected path %q, got %q", tt.wantPath, se.Path)
			}
			if !strings.Contains(se.Error(), tt.wantMsg) {
				t.Errorf("expected message containing %q, got %q", tt.wantMsg, se.Error())
			}
		})
	}
}

func TestDecode_MaxDepth(t *testing.T) {
	// Each nested bullet list adds two levels (list + item).
	nested := `{"type":"paragraph","content":[{"type":"text","text":"leaf"}]}`
	for i := 0; i < 10; i++ {
		nested = `{"type":"bulletList","content":[{"type":"listItem","content":[` + nested + `]}]}`
	}
	input := []byte(`{"type":"doc","content":[` + nested + `]}`)

	if _, err := (Decoder{MaxDepth: 64}).Decode(input); err != nil {
		t.Fatalf("expected decode within limit, got %v", err)
	}

	_, err := (Decoder{MaxDepth: 8}).Decode(input)
	var se *StructuralError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StructuralError, got %v", err)
	}
	if !strings.Contains(se.Reason, "maximum depth 8") {
		t.Errorf("unexpected reason %q", se.Reason)
	}
}

func TestDecoder_FromValue(t *testing.T) {
	v := map[string]any{
		"type": "doc",
		"content": []any{
			map[string]any{"type": "paragraph", "content": []any{
				map[string]any{"type": "text", "text": "hi"},
			}},
		},
	}
	doc, err := Decoder{}.FromValue(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Content) != 1 {
		t.Fatalf("expected 1 block, got %d", len(doc.Content))
	}

	if _, err := (Decoder{}).FromValue("<p>html</p>"); err == nil {
		t.Error("expected error for non-object value")
	}
}

func TestParseMarkKind(t *testing.T) {
	for _, name := range []string{"bold", "italic", "code", "link"} {
		k, ok := ParseMarkKind(name)
		if !ok {
			t.Fatalf("expected %q to parse", name)
		}
		if k.String() != name {
			t.Errorf("round trip: got %q want %q", k.String(), name)
		}
	}
	if _, ok := ParseMarkKind("underline"); ok {
		t.Error("expected underline to be rejected")
	}
}
