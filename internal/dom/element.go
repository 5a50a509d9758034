// Package dom is a small in-memory document model. Pages served by the
// food vision server are parsed into a Document; the controller mutates it
// and the terminal surface paints immutable snapshots of it.
//
// Lookups are guarded: a missing element is a nil *Element and every method
// on a nil *Element is a no-op, so page variants without a given control
// degrade instead of panicking.
//
// A Document is not safe for concurrent use. It is owned by the goroutine
// that runs the controller loop.
package dom

import (
	"sort"
	"strings"
)

// Event is delivered to listeners. Target is the element the event was
// dispatched on; for document key events it is nil.
type Event struct {
	Type    string
	Key     string
	Target  *Element
	stopped bool
}

// StopPropagation keeps the event from reaching ancestor listeners.
func (e *Event) StopPropagation() { e.stopped = true }

// Listener handles a dispatched event.
type Listener func(ev *Event)

// Element is a node of the document tree. Text nodes have Tag "#text".
type Element struct {
	doc       *Document
	handle    int
	tag       string
	text      string
	attrs     map[string]string
	parent    *Element
	children  []*Element
	listeners map[string][]Listener
}

// TextTag is the tag of text nodes.
const TextTag = "#text"

// Handle is the element's document-unique number. The display uses it to
// address elements in snapshots.
func (e *Element) Handle() int {
	if e == nil {
		return 0
	}
	return e.handle
}

// Tag returns the lower-case tag name.
func (e *Element) Tag() string {
	if e == nil {
		return ""
	}
	return e.tag
}

// ID returns the id attribute.
func (e *Element) ID() string {
	v, _ := e.Attr("id")
	return v
}

// Attr returns an attribute value and whether it is set.
func (e *Element) Attr(name string) (string, bool) {
	if e == nil || e.attrs == nil {
		return "", false
	}
	v, ok := e.attrs[name]
	return v, ok
}

// SetAttr sets an attribute.
func (e *Element) SetAttr(name, value string) {
	if e == nil {
		return
	}
	if e.attrs == nil {
		e.attrs = make(map[string]string)
	}
	e.attrs[name] = value
	e.doc.touch()
}

// RemoveAttr deletes an attribute if present.
func (e *Element) RemoveAttr(name string) {
	if e == nil || e.attrs == nil {
		return
	}
	if _, ok := e.attrs[name]; ok {
		delete(e.attrs, name)
		e.doc.touch()
	}
}

// Parent returns the parent element, nil for the root.
func (e *Element) Parent() *Element {
	if e == nil {
		return nil
	}
	return e.parent
}

// Children returns a copy of the child list.
func (e *Element) Children() []*Element {
	if e == nil {
		return nil
	}
	out := make([]*Element, len(e.children))
	copy(out, e.children)
	return out
}

// Text returns the concatenated text of the element and its descendants,
// with runs of whitespace collapsed.
func (e *Element) Text() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	e.collectText(&b)
	return strings.Join(strings.Fields(b.String()), " ")
}

func (e *Element) collectText(b *strings.Builder) {
	if e.tag == TextTag {
		b.WriteString(e.text)
		b.WriteByte(' ')
		return
	}
	for _, c := range e.children {
		c.collectText(b)
	}
}

// SetText replaces the children with a single text node.
func (e *Element) SetText(s string) {
	if e == nil {
		return
	}
	e.Clear()
	e.AppendChild(e.doc.CreateText(s))
}

// AppendChild moves child under e. Appending nil is a no-op.
func (e *Element) AppendChild(child *Element) {
	if e == nil || child == nil {
		return
	}
	if child.parent != nil {
		child.parent.removeChild(child)
	}
	child.parent = e
	e.children = append(e.children, child)
	e.doc.touch()
}

// PrependChild inserts child as the first child of e.
func (e *Element) PrependChild(child *Element) {
	if e == nil || child == nil {
		return
	}
	if child.parent != nil {
		child.parent.removeChild(child)
	}
	child.parent = e
	e.children = append([]*Element{child}, e.children...)
	e.doc.touch()
}

// Remove detaches e from its parent.
func (e *Element) Remove() {
	if e == nil || e.parent == nil {
		return
	}
	e.parent.removeChild(e)
}

func (e *Element) removeChild(child *Element) {
	for i, c := range e.children {
		if c == child {
			e.children = append(e.children[:i], e.children[i+1:]...)
			child.parent = nil
			e.doc.touch()
			return
		}
	}
}

// Clear removes every child. Listeners on removed elements go with them.
func (e *Element) Clear() {
	if e == nil || len(e.children) == 0 {
		return
	}
	for _, c := range e.children {
		c.parent = nil
	}
	e.children = nil
	e.doc.touch()
}

// ── Classes & visibility ─────────────────────────────────────────

// HiddenClass is the utility class that hides an element.
const HiddenClass = "d-none"

// Classes returns the class list.
func (e *Element) Classes() []string {
	v, _ := e.Attr("class")
	return strings.Fields(v)
}

// HasClass reports whether the class list contains name.
func (e *Element) HasClass(name string) bool {
	for _, c := range e.Classes() {
		if c == name {
			return true
		}
	}
	return false
}

// AddClass adds name to the class list if missing.
func (e *Element) AddClass(name string) {
	if e == nil || e.HasClass(name) {
		return
	}
	e.SetAttr("class", strings.Join(append(e.Classes(), name), " "))
}

// RemoveClass drops name from the class list.
func (e *Element) RemoveClass(name string) {
	if e == nil || !e.HasClass(name) {
		return
	}
	var keep []string
	for _, c := range e.Classes() {
		if c != name {
			keep = append(keep, c)
		}
	}
	if len(keep) == 0 {
		e.RemoveAttr("class")
		return
	}
	e.SetAttr("class", strings.Join(keep, " "))
}

// Hidden reports whether the element itself is hidden, by class, by the
// hidden attribute, or by an inline display:none.
func (e *Element) Hidden() bool {
	if e == nil {
		return true
	}
	if e.HasClass(HiddenClass) {
		return true
	}
	if _, ok := e.Attr("hidden"); ok {
		return true
	}
	return styleDisplayNone(e.attrs["style"])
}

// Hide hides the element.
func (e *Element) Hide() {
	e.AddClass(HiddenClass)
}

// Show clears every way the element can be hidden.
func (e *Element) Show() {
	if e == nil {
		return
	}
	e.RemoveClass(HiddenClass)
	e.RemoveAttr("hidden")
	if style, ok := e.Attr("style"); ok && styleDisplayNone(style) {
		e.SetAttr("style", stripDisplay(style))
	}
}

// SetVisible shows or hides the element.
func (e *Element) SetVisible(visible bool) {
	if visible {
		e.Show()
	} else {
		e.Hide()
	}
}

// Disabled reports whether the disabled attribute is set.
func (e *Element) Disabled() bool {
	_, ok := e.Attr("disabled")
	return ok
}

// SetDisabled sets or clears the disabled attribute.
func (e *Element) SetDisabled(disabled bool) {
	if disabled {
		if !e.Disabled() {
			e.SetAttr("disabled", "")
		}
		return
	}
	e.RemoveAttr("disabled")
}

func styleDisplayNone(style string) bool {
	for _, decl := range strings.Split(style, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(k), "display") &&
			strings.EqualFold(strings.TrimSpace(v), "none") {
			return true
		}
	}
	return false
}

func stripDisplay(style string) string {
	var keep []string
	for _, decl := range strings.Split(style, ";") {
		k, _, _ := strings.Cut(decl, ":")
		if strings.TrimSpace(decl) == "" || strings.EqualFold(strings.TrimSpace(k), "display") {
			continue
		}
		keep = append(keep, strings.TrimSpace(decl))
	}
	return strings.Join(keep, "; ")
}

// ── Listeners ────────────────────────────────────────────────────

// AddEventListener registers fn for events of type typ on e.
func (e *Element) AddEventListener(typ string, fn Listener) {
	if e == nil || fn == nil {
		return
	}
	if e.listeners == nil {
		e.listeners = make(map[string][]Listener)
	}
	e.listeners[typ] = append(e.listeners[typ], fn)
}

// RemoveEventListeners drops every listener of type typ on e.
func (e *Element) RemoveEventListeners(typ string) {
	if e == nil || e.listeners == nil {
		return
	}
	delete(e.listeners, typ)
}

// SetEventListener replaces all listeners of type typ with fn.
func (e *Element) SetEventListener(typ string, fn Listener) {
	e.RemoveEventListeners(typ)
	e.AddEventListener(typ, fn)
}

// ListenerCount returns how many listeners of type typ are registered on e.
func (e *Element) ListenerCount(typ string) int {
	if e == nil || e.listeners == nil {
		return 0
	}
	return len(e.listeners[typ])
}

// Dispatch delivers an event of type typ to e and then to its ancestors,
// unless a listener stops propagation. Disabled elements swallow clicks.
// It returns the number of listeners invoked.
func (e *Element) Dispatch(typ string) int {
	if e == nil {
		return 0
	}
	if typ == "click" && e.Disabled() {
		return 0
	}
	ev := &Event{Type: typ, Target: e}
	n := 0
	for cur := e; cur != nil && !ev.stopped; cur = cur.parent {
		// Copy so listeners may re-register on the element mid-dispatch.
		ls := append([]Listener(nil), cur.listeners[typ]...)
		for _, fn := range ls {
			fn(ev)
			n++
		}
	}
	return n
}

// Clickable reports whether a click on e would reach a listener.
func (e *Element) Clickable() bool {
	for cur := e; cur != nil; cur = cur.parent {
		if cur.ListenerCount("click") > 0 {
			return !e.Disabled()
		}
	}
	return false
}

func (e *Element) sortedAttrs() []Attr {
	if e == nil || len(e.attrs) == 0 {
		return nil
	}
	out := make([]Attr, 0, len(e.attrs))
	for k, v := range e.attrs {
		out = append(out, Attr{Name: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
