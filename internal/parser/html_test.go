package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/meetnotes/internal/doctree"
	"github.com/dgallion1/meetnotes/internal/render"
)

func renderHTML(t *testing.T, input string) string {
	t.Helper()
	p := &HTMLParser{}
	doc, err := p.Parse(strings.NewReader(input), "panel.html")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	out, err := render.Render(doc)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return out
}

func TestHTMLParser_Render(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "heading and list",
			input: "<h2>Agenda</h2><ul><li>Item A</li><li>Item B</li></ul>",
			want:  "## Agenda\n\n- Item A\n- Item B",
		},
		{
			name:  "nested ordered list",
			input: "<ul><li><p>Ship <code>v2</code></p><ol><li>tag</li><li>deploy</li></ol></li></ul>",
			want:  "- Ship `v2`\n  1. tag\n  2. deploy",
		},
		{
			name:  "whitespace collapsed",
			input: "<p>\n  Owner:\n  <em>Dana</em>\n</p>",
			want:  "Owner: *Dana*",
		},
		{
			name:  "line break",
			input: "<p>a<br>b</p>",
			want:  "a  \nb",
		},
		{
			name:  "nested marks",
			input: `<p><a href="u"><strong><em><code>x</code></em></strong></a></p>`,
			want:  "[***`x`***](u)",
		},
		{
			name:  "code block language",
			input: "<pre><code class=\"language-go\">x := 1\n</code></pre>",
			want:  "```go\nx := 1\n```",
		},
		{
			name:  "loose inline content wrapped",
			input: "<div>hello <b>world</b><p>next</p></div>",
			want:  "hello **world**\n\nnext",
		},
		{
			name:  "scripts skipped",
			input: "<html><head><title>t</title></head><body><script>x()</script><p>kept</p><hr></body></html>",
			want:  "kept\n\n---",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderHTML(t, tt.input); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHTMLParser_Rejects(t *testing.T) {
	tests := []struct {
		input string
		kind  string
	}{
		{"<table><tr><td>x</td></tr></table>", "table"},
		{"<li>stray</li>", "li"},
		{"<blockquote>q</blockquote>", "blockquote"},
	}
	p := &HTMLParser{}
	for _, tt := range tests {
		_, err := p.Parse(strings.NewReader(tt.input), "x.html")
		var se *doctree.StructuralError
		if !errors.As(err, &se) {
			t.Fatalf("%q: expected *StructuralError, got %v", tt.input, err)
		}
		if se.Kind != tt.kind {
			t.Errorf("%q: expected kind %q, got %q", tt.input, tt.kind, se.Kind)
		}
	}
}
