// Package view renders controller state into a dom.Document. Each function
// reconciles one region completely from its arguments, so calling it again
// with the same input leaves the document unchanged.
package view

import (
	"encoding/base64"
	"strconv"

	"github.com/hammamikhairi/foodvision/internal/dom"
	"github.com/hammamikhairi/foodvision/internal/domain"
)

// Element ids the renderer and the lifecycle hooks look up.
const (
	IDCaptureButton   = "captureBtn"
	IDLoading         = "loading"
	IDResultsContent  = "resultsContent"
	IDCapturedImage   = "capturedImage"
	IDDetectedItem    = "detectedItem"
	IDConfidenceValue = "confidenceValue"
	IDSuggestions     = "suggestions"
	IDSuggestionsGrid = "suggestionsGrid"
	IDErrorContainer  = "detectionResults"
	IDErrorBanner     = "errorBanner"
	IDVoiceToggle     = "voiceToggle"
	IDVoiceStatus     = "voiceStatus"
	IDContinueYes     = "continueYes"
	IDContinueNo      = "continueNo"
)

// DishItemClass marks one rendered suggestion card.
const DishItemClass = "dish-item"

// Loading shows or hides the loading indicator and disables the capture
// control while it is shown.
func Loading(doc *dom.Document, loading bool) {
	doc.GetElementByID(IDLoading).SetVisible(loading)
	doc.GetElementByID(IDCaptureButton).SetDisabled(loading)
}

// Results renders the captured image, detected label and confidence. A nil
// result, or one without a label, clears the label and confidence; the
// image is still shown when present.
func Results(doc *dom.Document, r *domain.DetectionResult) {
	content := doc.GetElementByID(IDResultsContent)
	img := doc.GetElementByID(IDCapturedImage)
	if r != nil && len(r.ImageData) > 0 {
		img.SetAttr("src", "data:image/jpeg;base64,"+base64.StdEncoding.EncodeToString(r.ImageData))
		content.Show()
	}

	label := doc.GetElementByID(IDDetectedItem)
	confidence := doc.GetElementByID(IDConfidenceValue)
	if !r.Detected() {
		label.SetText("")
		confidence.SetText("")
		return
	}
	label.SetText(r.DetectedLabel)
	confidence.SetText(r.ConfidenceText())
}

// Suggestions rebuilds the suggestion grid from dishes. Old cards are
// removed together with their handlers; each new card carries exactly one
// click handler that calls onSelect with the card's rank.
func Suggestions(doc *dom.Document, dishes []domain.Dish, onSelect func(rank int)) {
	grid := doc.GetElementByID(IDSuggestionsGrid)
	grid.Clear()
	doc.GetElementByID(IDSuggestions).SetVisible(len(dishes) > 0)
	if grid == nil {
		return
	}

	for _, d := range dishes {
		rank := d.Rank
		card := doc.CreateElement("div")
		card.SetAttr("class", "col-md-6 "+DishItemClass)
		card.SetAttr("data-rank", strconv.Itoa(rank))

		badge := doc.CreateElement("span")
		badge.SetAttr("class", "badge bg-primary me-2")
		badge.SetText(strconv.Itoa(rank))
		title := doc.CreateElement("h5")
		title.SetAttr("class", "mb-0")
		title.SetText(d.Label)

		card.AppendChild(badge)
		card.AppendChild(title)
		card.AddEventListener("click", func(*dom.Event) {
			if onSelect != nil {
				onSelect(rank)
			}
		})
		grid.AppendChild(card)
	}
}

// ErrorBanner renders message as a dismissible alert at the top of the
// error container. An empty message removes the banner.
func ErrorBanner(doc *dom.Document, message string, onDismiss func()) {
	container := doc.GetElementByID(IDErrorContainer)
	doc.GetElementByID(IDErrorBanner).Remove()
	if message == "" || container == nil {
		return
	}

	banner := doc.CreateElement("div")
	banner.SetAttr("id", IDErrorBanner)
	banner.SetAttr("class", "alert alert-danger alert-dismissible")
	banner.SetAttr("role", "alert")
	banner.AppendChild(doc.CreateText(message))

	closeBtn := doc.CreateElement("button")
	closeBtn.SetAttr("type", "button")
	closeBtn.SetAttr("class", "btn-close")
	closeBtn.SetText("x")
	closeBtn.AddEventListener("click", func(ev *dom.Event) {
		ev.StopPropagation()
		if onDismiss != nil {
			onDismiss()
		}
	})
	banner.AppendChild(closeBtn)
	container.PrependChild(banner)
}

// VoiceToast shows the "speaking" toast while spoken feedback plays.
func VoiceToast(doc *dom.Document, speaking bool) {
	doc.GetElementByID(IDVoiceStatus).SetVisible(speaking)
}

// VoiceToggle labels the voice toggle with the current state. When the
// recognizer is unavailable the toggle is disabled.
func VoiceToggle(doc *dom.Document, enabled, available bool) {
	toggle := doc.GetElementByID(IDVoiceToggle)
	switch {
	case !available:
		toggle.SetText("Voice unavailable")
		toggle.SetDisabled(true)
	case enabled:
		toggle.SetText("Voice: on")
		toggle.SetDisabled(false)
	default:
		toggle.SetText("Voice: off")
		toggle.SetDisabled(false)
	}
	toggle.SetAttr("aria-pressed", strconv.FormatBool(enabled && available))
}
