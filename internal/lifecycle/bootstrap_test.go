package lifecycle

import (
	"testing"

	"github.com/hammamikhairi/foodvision/internal/dom"
	"github.com/hammamikhairi/foodvision/internal/domain"
	"github.com/hammamikhairi/foodvision/internal/view"
)

const indexPage = `<html><body data-page="index">
<a id="home" href="/">Home</a>
<a id="top" href="#top">Top</a>
<button id="captureBtn">Capture</button>
<button id="voiceToggle">Voice</button>
<div id="loading" class="d-none">Loading</div>
</body></html>`

const recipePage = `<html><body data-page="recipe">
<h1>Calzone</h1>
<a id="more" href="/recipes/calzone">More</a>
<button id="continueYes">Yes</button>
<button id="continueNo">No</button>
</body></html>`

type recorder struct {
	links    []string
	captures int
	toggles  int
	keys     []string
	choices  []domain.Choice
	starts   int
}

func (r *recorder) hooks(available bool) Hooks {
	return Hooks{
		FollowLink:     func(href string) { r.links = append(r.links, href) },
		Capture:        func() { r.captures++ },
		ToggleVoice:    func() { r.toggles++ },
		Key:            func(key string) { r.keys = append(r.keys, key) },
		Continue:       func(c domain.Choice) { r.choices = append(r.choices, c) },
		StartVoice:     func() { r.starts++ },
		VoiceAvailable: available,
	}
}

func parse(t *testing.T, markup string) *dom.Document {
	t.Helper()
	doc, err := dom.ParseString(markup)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestBootstrapIndex(t *testing.T) {
	doc := parse(t, indexPage)
	r := &recorder{}
	s := domain.NewSession(domain.PhaseIndex, true)

	Bootstrap(doc, s, r.hooks(true))

	doc.GetElementByID("home").Dispatch("click")
	doc.GetElementByID("top").Dispatch("click")
	doc.GetElementByID(view.IDCaptureButton).Dispatch("click")
	doc.GetElementByID(view.IDVoiceToggle).Dispatch("click")
	doc.DispatchKey("c")

	if len(r.links) != 1 || r.links[0] != "/" {
		t.Errorf("links = %v, want [/]", r.links)
	}
	if r.captures != 1 || r.toggles != 1 {
		t.Errorf("captures=%d toggles=%d, want 1 and 1", r.captures, r.toggles)
	}
	if len(r.keys) != 1 || r.keys[0] != "c" {
		t.Errorf("keys = %v", r.keys)
	}
	if r.starts != 1 {
		t.Errorf("voice starts = %d, want 1", r.starts)
	}
	if got := doc.GetElementByID(view.IDVoiceToggle).Text(); got != "Voice: on" {
		t.Errorf("toggle label = %q", got)
	}
}

func TestBootstrapTwiceDoesNotDuplicate(t *testing.T) {
	doc := parse(t, indexPage)
	r := &recorder{}
	s := domain.NewSession(domain.PhaseIndex, false)

	Bootstrap(doc, s, r.hooks(true))
	Bootstrap(doc, s, r.hooks(true))

	doc.GetElementByID(view.IDCaptureButton).Dispatch("click")
	doc.DispatchKey("x")
	if r.captures != 1 {
		t.Errorf("captures = %d, want 1", r.captures)
	}
	if len(r.keys) != 1 {
		t.Errorf("key deliveries = %d, want 1", len(r.keys))
	}
	if r.starts != 0 {
		t.Errorf("voice started with voice disabled")
	}
}

func TestBootstrapVoiceUnavailable(t *testing.T) {
	doc := parse(t, indexPage)
	r := &recorder{}
	Bootstrap(doc, domain.NewSession(domain.PhaseIndex, true), r.hooks(false))

	if r.starts != 0 {
		t.Errorf("voice started while unavailable")
	}
	toggle := doc.GetElementByID(view.IDVoiceToggle)
	if !toggle.Disabled() || toggle.Text() != "Voice unavailable" {
		t.Errorf("toggle = %q disabled=%v", toggle.Text(), toggle.Disabled())
	}
}

func TestBootstrapRecipe(t *testing.T) {
	doc := parse(t, recipePage)
	r := &recorder{}
	Bootstrap(doc, domain.NewSession(domain.PhaseRecipe, false), r.hooks(true))

	doc.GetElementByID(view.IDContinueYes).Dispatch("click")
	doc.GetElementByID(view.IDContinueNo).Dispatch("click")
	doc.GetElementByID("more").Dispatch("click")

	want := []domain.Choice{domain.ChoiceContinue, domain.ChoiceExit}
	if len(r.choices) != 2 || r.choices[0] != want[0] || r.choices[1] != want[1] {
		t.Errorf("choices = %v, want %v", r.choices, want)
	}
	if len(r.links) != 1 || r.links[0] != "/recipes/calzone" {
		t.Errorf("links = %v", r.links)
	}
}

func TestBootstrapToleratesMissingElements(t *testing.T) {
	doc := parse(t, `<html><body><p>plain</p></body></html>`)
	Bootstrap(doc, domain.NewSession(domain.PhaseNone, true), Hooks{})
	if doc.DispatchKey("c") != 1 {
		t.Errorf("key handler not installed")
	}
}

func TestFollowable(t *testing.T) {
	tests := []struct {
		href string
		want bool
	}{
		{"/", true},
		{"/recipes/1", true},
		{"http://example.com/x", true},
		{"", false},
		{"#", false},
		{"#section", false},
		{"javascript:void(0)", false},
		{"JavaScript:alert(1)", false},
	}
	for _, tt := range tests {
		if got := followable(tt.href); got != tt.want {
			t.Errorf("followable(%q) = %v, want %v", tt.href, got, tt.want)
		}
	}
}
