package controller

import "github.com/hammamikhairi/foodvision/internal/domain"

// Effect is an instruction produced by Transition and carried out by the
// Controller loop. Effects run in the order they are returned.
type Effect interface {
	effectName() string
}

// EffectName returns a short label for logging.
func EffectName(e Effect) string {
	if e == nil {
		return "<nil>"
	}
	return e.effectName()
}

// ShowLoading toggles the loading indicator and, inversely, the capture
// control.
type ShowLoading struct{ Visible bool }

// IssueCapture sends the capture request.
type IssueCapture struct{}

// RenderResults paints the image, label and confidence of a capture.
type RenderResults struct{ Result *domain.DetectionResult }

// RenderSuggestions rebuilds the suggestion list from the session's dishes.
type RenderSuggestions struct{ Dishes []domain.Dish }

// RenderError shows the error banner; an empty message clears it.
type RenderError struct{ Message string }

// StopVoice stops recognition. Release also drops the engine for good
// on the current page.
type StopVoice struct{ Release bool }

// StartVoice starts recognition.
type StartVoice struct{}

// RenderVoiceToggle repaints the voice toggle from the session.
type RenderVoiceToggle struct{}

// RenderToast shows or hides the speaking toast.
type RenderToast struct{ Speaking bool }

// RequestRecipe asks the server for the recipe of a ranked dish.
type RequestRecipe struct{ Rank int }

// InstallPage replaces the current document with markup.
type InstallPage struct{ Markup string }

// PostContinue sends the continue/exit answer.
type PostContinue struct{ Choice domain.Choice }

// Navigate loads a page by path, abandoning the current one.
type Navigate struct{ Path string }

// Alert shows a blocking message.
type Alert struct{ Message string }

// EmitVoiceCommand forwards an utterance on the push channel.
type EmitVoiceCommand struct{ Text string }

// Announce sends a status line to the notifier.
type Announce struct {
	Text   string
	Urgent bool
}

func (ShowLoading) effectName() string       { return "show_loading" }
func (IssueCapture) effectName() string      { return "issue_capture" }
func (RenderResults) effectName() string     { return "render_results" }
func (RenderSuggestions) effectName() string { return "render_suggestions" }
func (RenderError) effectName() string       { return "render_error" }
func (StopVoice) effectName() string         { return "stop_voice" }
func (StartVoice) effectName() string        { return "start_voice" }
func (RenderVoiceToggle) effectName() string { return "render_voice_toggle" }
func (RenderToast) effectName() string       { return "render_toast" }
func (RequestRecipe) effectName() string     { return "request_recipe" }
func (InstallPage) effectName() string       { return "install_page" }
func (PostContinue) effectName() string      { return "post_continue" }
func (Navigate) effectName() string          { return "navigate" }
func (Alert) effectName() string             { return "alert" }
func (EmitVoiceCommand) effectName() string  { return "emit_voice_command" }
func (Announce) effectName() string          { return "announce" }
