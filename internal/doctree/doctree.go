package doctree

// Kind identifies a node variant. The string values match the ProseMirror
// type names used by the upstream notes service.
type Kind string

const (
	KindDoc            Kind = "doc"
	KindHeading        Kind = "heading"
	KindParagraph      Kind = "paragraph"
	KindBulletList     Kind = "bulletList"
	KindOrderedList    Kind = "orderedList"
	KindListItem       Kind = "listItem"
	KindText           Kind = "text"
	KindHardBreak      Kind = "hardBreak"
	KindHorizontalRule Kind = "horizontalRule"
	KindCodeBlock      Kind = "codeBlock"
)

// Node is implemented by every variant in the tree.
type Node interface {
	Kind() Kind
	node()
}

// Block is a node that may appear directly under a Doc or a ListItem.
type Block interface {
	Node
	block()
}

// Inline is a node that may appear inside a Heading or Paragraph.
type Inline interface {
	Node
	inline()
}

// Doc is the root of a rich-text document.
type Doc struct {
	Content []Block
}

// Heading is an ATX heading. Level is 1-6.
type Heading struct {
	Level   int
	Content []Inline
}

// Paragraph is a run of inline content.
type Paragraph struct {
	Content []Inline
}

// ListKind distinguishes bullet from numbered lists.
type ListKind int

const (
	Unordered ListKind = iota
	Ordered
)

func (k ListKind) String() string {
	if k == Ordered {
		return string(KindOrderedList)
	}
	return string(KindBulletList)
}

// List holds list items of one kind.
type List struct {
	ListKind ListKind
	Items    []*ListItem
}

// ListItem holds block content; nested lists live here.
type ListItem struct {
	Content []Block
}

// Text is a literal run with its decorations.
type Text struct {
	Text  string
	Marks []Mark
}

// HardBreak is a forced line break inside inline content.
type HardBreak struct{}

// HorizontalRule is a thematic break.
type HorizontalRule struct{}

// CodeBlock is a fenced block of literal text.
type CodeBlock struct {
	Language string
	Text     string
}

func (*Doc) Kind() Kind            { return KindDoc }
func (*Heading) Kind() Kind        { return KindHeading }
func (*Paragraph) Kind() Kind      { return KindParagraph }
func (*ListItem) Kind() Kind       { return KindListItem }
func (*Text) Kind() Kind           { return KindText }
func (*HardBreak) Kind() Kind      { return KindHardBreak }
func (*HorizontalRule) Kind() Kind { return KindHorizontalRule }
func (*CodeBlock) Kind() Kind      { return KindCodeBlock }

func (l *List) Kind() Kind {
	if l.ListKind == Ordered {
		return KindOrderedList
	}
	return KindBulletList
}

func (*Doc) node()            {}
func (*Heading) node()        {}
func (*Paragraph) node()      {}
func (*List) node()           {}
func (*ListItem) node()       {}
func (*Text) node()           {}
func (*HardBreak) node()      {}
func (*HorizontalRule) node() {}
func (*CodeBlock) node()      {}

func (*Heading) block()        {}
func (*Paragraph) block()      {}
func (*List) block()           {}
func (*HorizontalRule) block() {}
func (*CodeBlock) block()      {}

func (*Text) inline()      {}
func (*HardBreak) inline() {}

// IsEmpty reports whether the document has no content.
func (d *Doc) IsEmpty() bool {
	return d == nil || len(d.Content) == 0
}
