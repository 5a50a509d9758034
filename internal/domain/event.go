package domain

// Event is anything the interaction controller reacts to.
type Event interface {
	eventName() string
}

// EventName returns a short label for logging.
func EventName(ev Event) string {
	if ev == nil {
		return "<nil>"
	}
	return ev.eventName()
}

// CaptureRequested asks for a new photo to be classified.
type CaptureRequested struct{}

// CaptureSucceeded carries a decoded capture response.
type CaptureSucceeded struct{ Result *DetectionResult }

// CaptureFailed carries a transport, status or server-reported failure.
type CaptureFailed struct{ Err error }

// DishSelected picks a suggestion by its 1-based rank.
type DishSelected struct{ Rank int }

// RecipeLoaded carries the markup that replaces the current page.
type RecipeLoaded struct{ Markup string }

// RecipeFailed means the recipe request did not produce a page.
type RecipeFailed struct{ Err error }

// ContinueRequested posts the continue/exit answer.
type ContinueRequested struct{ Choice Choice }

// ContinueSettled fires when the continue request finished, however it ended.
type ContinueSettled struct{ Err error }

// NavigationReceived is a server-initiated navigation from the push channel.
type NavigationReceived struct{ Command NavigationCommand }

// HomeRequested is a local request to go back to the start page.
type HomeRequested struct{}

// LinkFollowed is an intercepted click on an outbound link.
type LinkFollowed struct{ Href string }

// UtteranceHeard is one finalized, normalized piece of recognized speech.
type UtteranceHeard struct{ Text string }

// KeyPressed is a key delivered to the document.
type KeyPressed struct{ Key string }

// VoiceToggled flips the voice-enabled flag.
type VoiceToggled struct{}

// ErrorDismissed closes the error banner.
type ErrorDismissed struct{}

// SpeakingChanged reports spoken feedback starting or stopping.
type SpeakingChanged struct{ Speaking bool }

func (CaptureRequested) eventName() string   { return "capture_requested" }
func (CaptureSucceeded) eventName() string   { return "capture_succeeded" }
func (CaptureFailed) eventName() string      { return "capture_failed" }
func (DishSelected) eventName() string       { return "dish_selected" }
func (RecipeLoaded) eventName() string       { return "recipe_loaded" }
func (RecipeFailed) eventName() string       { return "recipe_failed" }
func (ContinueRequested) eventName() string  { return "continue_requested" }
func (ContinueSettled) eventName() string    { return "continue_settled" }
func (NavigationReceived) eventName() string { return "navigation_received" }
func (HomeRequested) eventName() string      { return "home_requested" }
func (LinkFollowed) eventName() string       { return "link_followed" }
func (UtteranceHeard) eventName() string     { return "utterance_heard" }
func (KeyPressed) eventName() string         { return "key_pressed" }
func (VoiceToggled) eventName() string       { return "voice_toggled" }
func (ErrorDismissed) eventName() string     { return "error_dismissed" }
func (SpeakingChanged) eventName() string    { return "speaking_changed" }
