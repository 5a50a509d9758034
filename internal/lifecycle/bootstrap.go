// Package lifecycle arms a freshly installed document: link interception,
// control handlers, the key handler and the voice restart.
package lifecycle

import (
	"strings"

	"github.com/hammamikhairi/foodvision/internal/dom"
	"github.com/hammamikhairi/foodvision/internal/domain"
	"github.com/hammamikhairi/foodvision/internal/view"
)

// Hooks are the controller entry points a document's listeners call. Nil
// hooks are skipped.
type Hooks struct {
	FollowLink     func(href string)
	Capture        func()
	ToggleVoice    func()
	Key            func(key string)
	Continue       func(choice domain.Choice)
	StartVoice     func()
	VoiceAvailable bool
}

// Bootstrap wires doc for session s. It is safe to call again on the same
// document: every listener is set, never appended.
func Bootstrap(doc *dom.Document, s domain.Session, h Hooks) {
	// 1. Navigation intercept.
	for _, a := range doc.QueryAll("a") {
		href, ok := a.Attr("href")
		if !ok || !followable(href) {
			continue
		}
		a.SetEventListener("click", func(ev *dom.Event) {
			ev.StopPropagation()
			call1(h.FollowLink, href)
		})
	}

	// 2. Controls.
	doc.GetElementByID(view.IDCaptureButton).SetEventListener("click", func(*dom.Event) {
		call(h.Capture)
	})
	doc.GetElementByID(view.IDVoiceToggle).SetEventListener("click", func(*dom.Event) {
		call(h.ToggleVoice)
	})
	view.VoiceToggle(doc, s.VoiceEnabled, h.VoiceAvailable)

	// 3. Keys.
	if doc.KeyListenerCount() == 0 {
		doc.AddKeyListener(func(ev *dom.Event) {
			call1(h.Key, ev.Key)
		})
	}

	// 4. Voice.
	if s.VoiceEnabled && h.VoiceAvailable {
		call(h.StartVoice)
	}

	// 5. Continue prompt.
	if s.Phase == domain.PhaseRecipe {
		doc.GetElementByID(view.IDContinueYes).SetEventListener("click", func(*dom.Event) {
			call1(h.Continue, domain.ChoiceContinue)
		})
		doc.GetElementByID(view.IDContinueNo).SetEventListener("click", func(*dom.Event) {
			call1(h.Continue, domain.ChoiceExit)
		})
	}
}

// followable reports whether clicking href leaves the page.
func followable(href string) bool {
	href = strings.TrimSpace(href)
	switch {
	case href == "", strings.HasPrefix(href, "#"):
		return false
	case strings.HasPrefix(strings.ToLower(href), "javascript:"):
		return false
	}
	return true
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}

func call1[T any](fn func(T), v T) {
	if fn != nil {
		fn(v)
	}
}
