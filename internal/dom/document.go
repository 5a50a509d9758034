package dom

import (
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a parsed page.
type Document struct {
	serial     uint64
	title      string
	body       *Element
	nextHandle int
	version    uint64
	keys       []Listener
}

var serials atomic.Uint64

// New returns an empty document with a bare body.
func New() *Document {
	d := &Document{serial: serials.Add(1)}
	d.body = d.CreateElement("body")
	return d
}

// Parse builds a document from page markup. Full documents and fragments
// are both accepted; scripts, styles and comments are dropped.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}
	d := New()
	if t := findFirst(root, atom.Title); t != nil {
		d.title = strings.TrimSpace(textOf(t))
	}
	body := findFirst(root, atom.Body)
	if body == nil {
		return d, nil
	}
	for _, a := range body.Attr {
		d.body.SetAttr(a.Key, a.Val)
	}
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		d.body.AppendChild(d.convert(c))
	}
	return d, nil
}

// ParseString is Parse over a string.
func ParseString(markup string) (*Document, error) {
	return Parse(strings.NewReader(markup))
}

func (d *Document) convert(n *html.Node) *Element {
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" {
			return nil
		}
		return d.CreateText(n.Data)
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Template, atom.Noscript:
			return nil
		}
		el := d.CreateElement(n.Data)
		for _, a := range n.Attr {
			el.SetAttr(a.Key, a.Val)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			el.AppendChild(d.convert(c))
		}
		return el
	default:
		return nil
	}
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if f := findFirst(c, a); f != nil {
			return f
		}
	}
	return nil
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// CreateElement returns a detached element owned by d.
func (d *Document) CreateElement(tag string) *Element {
	d.nextHandle++
	return &Element{doc: d, handle: d.nextHandle, tag: strings.ToLower(tag)}
}

// CreateText returns a detached text node.
func (d *Document) CreateText(s string) *Element {
	el := d.CreateElement(TextTag)
	el.text = s
	return el
}

// Title returns the <title> text, if any.
func (d *Document) Title() string { return d.title }

// Body returns the root element.
func (d *Document) Body() *Element { return d.body }

// Page returns the data-page value of the body, falling back to the first
// element that carries one. Recipe markup is sometimes a fragment whose
// wrapper holds the attribute.
func (d *Document) Page() string {
	if v, ok := d.body.Attr("data-page"); ok {
		return v
	}
	var found string
	d.walk(func(e *Element) bool {
		if v, ok := e.Attr("data-page"); ok {
			found = v
			return false
		}
		return true
	})
	return found
}

// GetElementByID returns the first element with the given id, or nil.
func (d *Document) GetElementByID(id string) *Element {
	if d == nil || id == "" {
		return nil
	}
	var found *Element
	d.walk(func(e *Element) bool {
		if e.ID() == id {
			found = e
			return false
		}
		return true
	})
	return found
}

// ElementByHandle finds an attached element by handle, or nil.
func (d *Document) ElementByHandle(h int) *Element {
	if d == nil || h == 0 {
		return nil
	}
	var found *Element
	d.walk(func(e *Element) bool {
		if e.handle == h {
			found = e
			return false
		}
		return true
	})
	return found
}

// QueryAll returns every attached element with the given tag, in document
// order.
func (d *Document) QueryAll(tag string) []*Element {
	if d == nil {
		return nil
	}
	tag = strings.ToLower(tag)
	var out []*Element
	d.walk(func(e *Element) bool {
		if e.tag == tag {
			out = append(out, e)
		}
		return true
	})
	return out
}

// QueryClass returns every attached element carrying class name.
func (d *Document) QueryClass(name string) []*Element {
	if d == nil {
		return nil
	}
	var out []*Element
	d.walk(func(e *Element) bool {
		if e.HasClass(name) {
			out = append(out, e)
		}
		return true
	})
	return out
}

// walk visits attached elements depth first until fn returns false.
func (d *Document) walk(fn func(*Element) bool) {
	var visit func(*Element) bool
	visit = func(e *Element) bool {
		if !fn(e) {
			return false
		}
		for _, c := range e.children {
			if !visit(c) {
				return false
			}
		}
		return true
	}
	visit(d.body)
}

// ── Document-level key listeners ─────────────────────────────────

// AddKeyListener registers a document key handler.
func (d *Document) AddKeyListener(fn Listener) {
	if d == nil || fn == nil {
		return
	}
	d.keys = append(d.keys, fn)
}

// KeyListenerCount returns the number of document key handlers.
func (d *Document) KeyListenerCount() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}

// DispatchKey delivers a keydown event to every document key handler.
func (d *Document) DispatchKey(key string) int {
	if d == nil {
		return 0
	}
	ev := &Event{Type: "keydown", Key: key}
	ls := append([]Listener(nil), d.keys...)
	for _, fn := range ls {
		fn(ev)
	}
	return len(ls)
}

// Serial identifies the document among all documents of the process.
// Element handles are only unique within one document.
func (d *Document) Serial() uint64 {
	if d == nil {
		return 0
	}
	return d.serial
}

// Version increases on every mutation. The display uses it to skip
// repaints of unchanged documents.
func (d *Document) Version() uint64 {
	if d == nil {
		return 0
	}
	return d.version
}

func (d *Document) touch() {
	if d != nil {
		d.version++
	}
}
