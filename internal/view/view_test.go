package view

import (
	"strings"
	"testing"

	"github.com/hammamikhairi/foodvision/internal/dom"
	"github.com/hammamikhairi/foodvision/internal/domain"
)

const page = `<body data-page="index">
  <button id="captureBtn">Capture</button>
  <div id="loading" class="d-none">Loading</div>
  <div id="detectionResults">
    <div id="resultsContent" class="d-none">
      <img id="capturedImage">
      <span id="detectedItem"></span>
      <span id="confidenceValue"></span>
    </div>
    <div id="suggestions" class="d-none"><div id="suggestionsGrid"></div></div>
  </div>
  <button id="voiceToggle">Voice</button>
  <div id="voiceStatus" style="display:none">Speaking...</div>
</body>`

func mustParse(t *testing.T, markup string) *dom.Document {
	t.Helper()
	doc, err := dom.ParseString(markup)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestLoadingTogglesIndicatorAndControl(t *testing.T) {
	doc := mustParse(t, page)

	Loading(doc, true)
	if doc.GetElementByID(IDLoading).Hidden() {
		t.Error("loading should be visible")
	}
	if !doc.GetElementByID(IDCaptureButton).Disabled() {
		t.Error("capture control should be disabled")
	}

	Loading(doc, false)
	if !doc.GetElementByID(IDLoading).Hidden() {
		t.Error("loading should be hidden")
	}
	if doc.GetElementByID(IDCaptureButton).Disabled() {
		t.Error("capture control should be enabled")
	}
}

func TestResultsRendersLabelAndConfidence(t *testing.T) {
	doc := mustParse(t, page)
	Results(doc, &domain.DetectionResult{
		ImageData:     []byte{0xff, 0xd8},
		DetectedLabel: "pizza",
		Confidence:    0.87,
	})

	if got := doc.GetElementByID(IDDetectedItem).Text(); got != "pizza" {
		t.Errorf("expected label pizza, got %q", got)
	}
	if got := doc.GetElementByID(IDConfidenceValue).Text(); got != "87.0%" {
		t.Errorf("expected 87.0%%, got %q", got)
	}
	if doc.GetElementByID(IDResultsContent).Hidden() {
		t.Error("results should be visible once an image arrived")
	}
	src, _ := doc.GetElementByID(IDCapturedImage).Attr("src")
	if !strings.HasPrefix(src, "data:image/jpeg;base64,") {
		t.Errorf("unexpected image src %q", src)
	}
}

func TestResultsWithoutLabelClears(t *testing.T) {
	doc := mustParse(t, page)
	Results(doc, &domain.DetectionResult{DetectedLabel: "pizza", Confidence: 0.5})
	Results(doc, &domain.DetectionResult{})

	if got := doc.GetElementByID(IDDetectedItem).Text(); got != "" {
		t.Errorf("expected cleared label, got %q", got)
	}
	if got := doc.GetElementByID(IDConfidenceValue).Text(); got != "" {
		t.Errorf("expected cleared confidence, got %q", got)
	}
}

func TestSuggestionsNoHandlerAccumulation(t *testing.T) {
	doc := mustParse(t, page)
	dishes := domain.DishesFromLabels([]string{"pizza", "calzone", "focaccia"})

	var selected []int
	onSelect := func(rank int) { selected = append(selected, rank) }
	for i := 0; i < 10; i++ {
		Suggestions(doc, dishes, onSelect)
	}

	cards := doc.QueryClass(DishItemClass)
	if len(cards) != len(dishes) {
		t.Fatalf("expected %d cards, got %d", len(dishes), len(cards))
	}
	for i, c := range cards {
		if n := c.ListenerCount("click"); n != 1 {
			t.Errorf("card %d: expected 1 handler, got %d", i, n)
		}
		if !strings.Contains(c.Text(), dishes[i].Label) {
			t.Errorf("card %d: expected label %q in %q", i, dishes[i].Label, c.Text())
		}
	}

	cards[1].Dispatch("click")
	if len(selected) != 1 || selected[0] != 2 {
		t.Errorf("expected a single selection of rank 2, got %v", selected)
	}
	if doc.GetElementByID(IDSuggestions).Hidden() {
		t.Error("suggestions should be visible")
	}
}

func TestSuggestionsEmptyHidesRegion(t *testing.T) {
	doc := mustParse(t, page)
	Suggestions(doc, domain.DishesFromLabels([]string{"pizza"}), nil)
	Suggestions(doc, nil, nil)

	if n := len(doc.QueryClass(DishItemClass)); n != 0 {
		t.Errorf("expected no cards, got %d", n)
	}
	if !doc.GetElementByID(IDSuggestions).Hidden() {
		t.Error("empty suggestion list should be hidden")
	}
}

func TestErrorBannerIsSingleAndDismissible(t *testing.T) {
	doc := mustParse(t, page)
	dismissed := 0
	ErrorBanner(doc, "first", func() { dismissed++ })
	ErrorBanner(doc, "model unavailable", func() { dismissed++ })

	banners := doc.QueryClass("alert")
	if len(banners) != 1 {
		t.Fatalf("expected one banner, got %d", len(banners))
	}
	if !strings.Contains(banners[0].Text(), "model unavailable") {
		t.Errorf("unexpected banner text %q", banners[0].Text())
	}

	doc.QueryClass("btn-close")[0].Dispatch("click")
	if dismissed != 1 {
		t.Errorf("expected one dismissal, got %d", dismissed)
	}

	ErrorBanner(doc, "", nil)
	if doc.GetElementByID(IDErrorBanner) != nil {
		t.Error("empty message should remove the banner")
	}
}

func TestMissingRegionsAreTolerated(t *testing.T) {
	doc := mustParse(t, `<body data-page="recipe"><h1>Recipe</h1></body>`)
	Loading(doc, true)
	Results(doc, &domain.DetectionResult{DetectedLabel: "pizza"})
	Suggestions(doc, domain.DishesFromLabels([]string{"pizza"}), nil)
	ErrorBanner(doc, "boom", nil)
	VoiceToast(doc, true)
	VoiceToggle(doc, true, true)
}

func TestVoiceToggleAndToast(t *testing.T) {
	doc := mustParse(t, page)

	VoiceToggle(doc, true, true)
	if got := doc.GetElementByID(IDVoiceToggle).Text(); got != "Voice: on" {
		t.Errorf("unexpected toggle label %q", got)
	}
	VoiceToggle(doc, true, false)
	toggle := doc.GetElementByID(IDVoiceToggle)
	if !toggle.Disabled() || toggle.Text() != "Voice unavailable" {
		t.Errorf("unavailable toggle should be disabled, got %q", toggle.Text())
	}

	VoiceToast(doc, true)
	if doc.GetElementByID(IDVoiceStatus).Hidden() {
		t.Error("toast should be visible while speaking")
	}
	VoiceToast(doc, false)
	if !doc.GetElementByID(IDVoiceStatus).Hidden() {
		t.Error("toast should be hidden when quiet")
	}
}
