package dom

import "strings"

// Attr is a name/value pair in a snapshot.
type Attr struct {
	Name  string
	Value string
}

// Node is an immutable copy of an element, safe to hand to another
// goroutine.
type Node struct {
	Handle    int
	Tag       string
	ID        string
	Text      string // text nodes only
	Attrs     []Attr
	Classes   []string
	Hidden    bool
	Disabled  bool
	Clickable bool
	Children  []Node
}

// Attr returns the named attribute from the snapshot.
func (n Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// HasClass reports whether the node carried class name.
func (n Node) HasClass(name string) bool {
	for _, c := range n.Classes {
		if c == name {
			return true
		}
	}
	return false
}

// TextContent returns the collapsed text of n and its descendants.
func (n Node) TextContent() string {
	var b strings.Builder
	n.collect(&b)
	return strings.Join(strings.Fields(b.String()), " ")
}

func (n Node) collect(b *strings.Builder) {
	if n.Tag == TextTag {
		b.WriteString(n.Text)
		b.WriteByte(' ')
		return
	}
	for _, c := range n.Children {
		c.collect(b)
	}
}

// Snapshot is a frozen copy of a document.
type Snapshot struct {
	Doc     uint64 // Document.Serial
	Title   string
	Page    string
	Version uint64
	Body    Node
}

// Snapshot copies the document for painting.
func (d *Document) Snapshot() Snapshot {
	if d == nil {
		return Snapshot{}
	}
	return Snapshot{
		Doc:     d.serial,
		Title:   d.title,
		Page:    d.Page(),
		Version: d.version,
		Body:    freeze(d.body),
	}
}

func freeze(e *Element) Node {
	n := Node{
		Handle:    e.handle,
		Tag:       e.tag,
		ID:        e.ID(),
		Text:      e.text,
		Attrs:     e.sortedAttrs(),
		Classes:   e.Classes(),
		Hidden:    e.tag != TextTag && e.Hidden(),
		Disabled:  e.Disabled(),
		Clickable: e.tag != TextTag && e.ListenerCount("click") > 0 && !e.Disabled(),
	}
	if len(e.children) > 0 {
		n.Children = make([]Node, 0, len(e.children))
		for _, c := range e.children {
			n.Children = append(n.Children, freeze(c))
		}
	}
	return n
}
