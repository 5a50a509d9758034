package display

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/foodvision/internal/dom"
	"github.com/hammamikhairi/foodvision/internal/view"
)

// blockTags start and end on their own line.
var blockTags = map[string]bool{
	"body": true, "div": true, "p": true, "section": true, "article": true,
	"header": true, "footer": true, "main": true, "nav": true, "form": true,
	"ul": true, "ol": true, "li": true, "table": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"img": true, "hr": true, "pre": true, "blockquote": true,
}

// page is the painted form of one snapshot.
type page struct {
	text      string
	clickable []int // handles in document order
}

// renderer walks a snapshot and writes terminal text.
type renderer struct {
	focus   int
	spinner string
	lines   []string
	cur     strings.Builder
	click   []int
}

// renderPage paints snap. focus is the handle drawn as focused; spin is
// the current spinner frame for the loading indicator.
func renderPage(snap dom.Snapshot, focus int, spin string) page {
	r := &renderer{focus: focus, spinner: spin}
	r.node(snap.Body)
	r.flush()
	// Collapse runs of blank lines.
	var out []string
	for _, l := range r.lines {
		if l == "" && (len(out) == 0 || out[len(out)-1] == "") {
			continue
		}
		out = append(out, l)
	}
	return page{text: strings.TrimRight(strings.Join(out, "\n"), "\n"), clickable: r.click}
}

func (r *renderer) flush() {
	if r.cur.Len() == 0 {
		return
	}
	r.lines = append(r.lines, strings.TrimRight(r.cur.String(), " "))
	r.cur.Reset()
}

func (r *renderer) write(s string) {
	if s == "" {
		return
	}
	if r.cur.Len() > 0 && !strings.HasSuffix(r.cur.String(), " ") {
		r.cur.WriteByte(' ')
	}
	r.cur.WriteString(s)
}

func (r *renderer) node(n dom.Node) {
	if n.Hidden {
		return
	}
	if n.Tag == dom.TextTag {
		r.write(strings.Join(strings.Fields(n.Text), " "))
		return
	}

	block := blockTags[n.Tag]
	if block {
		r.flush()
	}
	defer func() {
		if block {
			r.flush()
			if strings.HasPrefix(n.Tag, "h") && len(n.Tag) == 2 {
				r.lines = append(r.lines, "")
			}
		}
	}()

	switch {
	case n.ID == view.IDLoading:
		r.write(spinnerStyle.Render(r.spinner) + " " + secondaryStyle.Render(n.TextContent()))
		return
	case n.Tag == "img":
		alt, _ := n.Attr("alt")
		if alt == "" {
			alt = "image"
		}
		r.write(secondaryStyle.Render("[" + alt + "]"))
		return
	case n.Tag == "button" || n.Tag == "a" || n.HasClass(view.DishItemClass):
		r.control(n)
		return
	case n.Tag == "h1" || n.Tag == "h2":
		r.write(headingStyle.Render(n.TextContent()))
		return
	case n.Tag == "h3" || n.Tag == "h4" || n.Tag == "h5" || n.Tag == "h6":
		r.write(subheadingStyle.Render(n.TextContent()))
		return
	case roleAlert(n):
		r.alert(n)
		return
	}
	for _, c := range n.Children {
		r.node(c)
	}
}

func (r *renderer) control(n dom.Node) {
	label := n.TextContent()
	if label == "" {
		label = n.Tag
	}
	var style lipgloss.Style
	switch {
	case n.Disabled:
		style = disabledStyle
	case n.Tag == "a":
		style = linkStyle
	default:
		style = buttonStyle
	}
	if n.Clickable && !n.Disabled {
		r.click = append(r.click, n.Handle)
		if n.Handle == r.focus {
			style = focusStyle
		}
	}
	switch n.Tag {
	case "a":
		r.write(style.Render(label))
	case "button":
		r.write(style.Render("[ " + label + " ]"))
	default:
		r.flush()
		r.write(style.Render(label))
		r.flush()
	}
}

// alert paints a banner; its close button stays focusable.
func (r *renderer) alert(n dom.Node) {
	r.flush()
	for _, c := range n.Children {
		if c.Tag == dom.TextTag {
			r.write(urgentStyle.Render(c.Text))
			continue
		}
		r.node(c)
	}
	r.flush()
}

func roleAlert(n dom.Node) bool {
	role, _ := n.Attr("role")
	return role == "alert"
}
