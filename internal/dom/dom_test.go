package dom

import (
	"testing"
)

const indexPage = `<!DOCTYPE html>
<html><head><title>Food Vision</title><script>var x = 1;</script></head>
<body data-page="index">
  <button id="captureBtn" class="btn btn-primary">Capture</button>
  <div id="loading" class="spinner d-none">Loading...</div>
  <div id="suggestions" class="d-none"><div id="suggestionsGrid"></div></div>
  <div id="voiceStatus" style="display: none">Speaking</div>
  <a href="/about">About</a>
  <!-- comment -->
</body></html>`

func TestParseIndexPage(t *testing.T) {
	doc, err := ParseString(indexPage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title() != "Food Vision" {
		t.Errorf("expected title %q, got %q", "Food Vision", doc.Title())
	}
	if doc.Page() != "index" {
		t.Errorf("expected page index, got %q", doc.Page())
	}
	if got := doc.GetElementByID("captureBtn").Text(); got != "Capture" {
		t.Errorf("expected capture button text, got %q", got)
	}
	if !doc.GetElementByID("loading").Hidden() {
		t.Error("loading should start hidden")
	}
	if !doc.GetElementByID("voiceStatus").Hidden() {
		t.Error("inline display:none should count as hidden")
	}
	if n := len(doc.QueryAll("a")); n != 1 {
		t.Errorf("expected 1 link, got %d", n)
	}
	if n := len(doc.QueryAll("script")); n != 0 {
		t.Errorf("scripts should be dropped, got %d", n)
	}
}

func TestParseFragmentPage(t *testing.T) {
	doc, err := ParseString(`<div data-page="recipe"><h1>Pizza</h1><button id="continueYes">Yes</button></div>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Page() != "recipe" {
		t.Errorf("expected page recipe from wrapper, got %q", doc.Page())
	}
	if doc.GetElementByID("continueYes") == nil {
		t.Error("expected continueYes")
	}
}

func TestMissingElementIsNoOp(t *testing.T) {
	doc := New()
	el := doc.GetElementByID("nope")
	if el != nil {
		t.Fatal("expected nil element")
	}

	// None of these may panic.
	el.Show()
	el.Hide()
	el.SetText("x")
	el.AddClass("a")
	el.SetDisabled(true)
	el.AddEventListener("click", func(*Event) {})
	el.AppendChild(doc.CreateElement("div"))
	el.Remove()
	if n := el.Dispatch("click"); n != 0 {
		t.Errorf("expected 0 listeners on nil element, got %d", n)
	}
	if el.Text() != "" || el.ID() != "" {
		t.Error("nil element should read as empty")
	}
}

func TestShowClearsAllHidingForms(t *testing.T) {
	doc, _ := ParseString(`<body><div id="a" class="x d-none" hidden style="color: red; display:none">A</div></body>`)
	a := doc.GetElementByID("a")
	if !a.Hidden() {
		t.Fatal("expected hidden")
	}
	a.Show()
	if a.Hidden() {
		t.Fatal("expected visible after Show")
	}
	if !a.HasClass("x") {
		t.Error("unrelated class should survive")
	}
	if style, _ := a.Attr("style"); style != "color: red" {
		t.Errorf("expected remaining style %q, got %q", "color: red", style)
	}
}

func TestDispatchBubblesAndHonoursDisabled(t *testing.T) {
	doc, _ := ParseString(`<body><div id="card"><span id="label">Pizza</span></div><button id="b" disabled>B</button></body>`)
	var hits []string
	doc.GetElementByID("card").AddEventListener("click", func(ev *Event) {
		hits = append(hits, "card:"+ev.Target.ID())
	})
	doc.GetElementByID("b").AddEventListener("click", func(*Event) {
		hits = append(hits, "b")
	})

	doc.GetElementByID("label").Dispatch("click")
	doc.GetElementByID("b").Dispatch("click")

	if len(hits) != 1 || hits[0] != "card:label" {
		t.Errorf("unexpected hits: %v", hits)
	}
}

func TestSetEventListenerReplaces(t *testing.T) {
	doc := New()
	el := doc.CreateElement("div")
	doc.Body().AppendChild(el)
	for i := 0; i < 5; i++ {
		el.SetEventListener("click", func(*Event) {})
	}
	if n := el.ListenerCount("click"); n != 1 {
		t.Errorf("expected 1 listener, got %d", n)
	}
}

func TestClearDetachesChildren(t *testing.T) {
	doc, _ := ParseString(`<body><div id="grid"><p id="a">a</p><p id="b">b</p></div></body>`)
	grid := doc.GetElementByID("grid")
	before := doc.Version()
	grid.Clear()
	if doc.GetElementByID("a") != nil {
		t.Error("cleared child still reachable")
	}
	if doc.Version() == before {
		t.Error("clear should bump the version")
	}
}

func TestDocumentKeys(t *testing.T) {
	doc := New()
	var got string
	doc.AddKeyListener(func(ev *Event) { got = ev.Key })
	if n := doc.DispatchKey("c"); n != 1 {
		t.Fatalf("expected 1 key listener, got %d", n)
	}
	if got != "c" {
		t.Errorf("expected key c, got %q", got)
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	doc, _ := ParseString(`<body data-page="index"><button id="captureBtn">Capture</button></body>`)
	btn := doc.GetElementByID("captureBtn")
	btn.AddEventListener("click", func(*Event) {})

	snap := doc.Snapshot()
	btn.SetText("Changed")
	btn.SetDisabled(true)

	if snap.Page != "index" {
		t.Errorf("expected page index, got %q", snap.Page)
	}
	node := snap.Body.Children[0]
	if node.ID != "captureBtn" || !node.Clickable || node.Disabled {
		t.Errorf("unexpected node: %+v", node)
	}
	if node.Children[0].Text != "Capture" {
		t.Errorf("snapshot text changed with the document: %q", node.Children[0].Text)
	}
	if doc.ElementByHandle(node.Handle) != btn {
		t.Error("handle should resolve to the live element")
	}
}
