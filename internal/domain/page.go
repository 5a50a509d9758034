// Package domain defines the core types and interfaces for the food vision
// client. All other packages depend on domain; domain depends on nothing but
// the standard library and uuid.
package domain

import "fmt"

// Phase tags which page variant is installed. It decides which shortcuts
// and lifecycle hooks are active.
type Phase int

const (
	// PhaseNone is a document without a recognised data-page attribute.
	PhaseNone Phase = iota
	PhaseIndex
	PhaseRecipe
)

// String returns the data-page value for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIndex:
		return "index"
	case PhaseRecipe:
		return "recipe"
	default:
		return "none"
	}
}

// PhaseFromString converts a data-page attribute value to a Phase.
func PhaseFromString(s string) Phase {
	switch s {
	case "index":
		return PhaseIndex
	case "recipe":
		return PhaseRecipe
	default:
		return PhaseNone
	}
}

// Dish is a ranked suggestion returned by the detection service.
type Dish struct {
	Rank  int // 1-based; also the keyboard selection key
	Label string
}

// String renders the dish the way suggestion cards show it.
func (d Dish) String() string {
	return fmt.Sprintf("[%d] %s", d.Rank, d.Label)
}

// DishesFromLabels ranks labels in order, starting at 1.
func DishesFromLabels(labels []string) []Dish {
	out := make([]Dish, 0, len(labels))
	for i, l := range labels {
		out = append(out, Dish{Rank: i + 1, Label: l})
	}
	return out
}

// DetectionResult is a decoded capture response. It is consumed once.
type DetectionResult struct {
	ImageData     []byte
	DetectedLabel string // empty when the server detected nothing
	Confidence    float64
	Suggestions   []Dish
}

// Detected reports whether the server named a label.
func (r *DetectionResult) Detected() bool {
	return r != nil && r.DetectedLabel != ""
}

// ConfidenceText formats the confidence as a percentage with one decimal.
func (r *DetectionResult) ConfidenceText() string {
	return fmt.Sprintf("%.1f%%", r.Confidence*100)
}

// Navigation commands understood from the push channel.
const (
	NavGoHome = "go_home"
)

// NavigationCommand arrives asynchronously from the push channel.
type NavigationCommand struct {
	Command string
}

// Choice is the answer to the "try another dish?" prompt.
type Choice string

const (
	ChoiceContinue Choice = "y"
	ChoiceExit     Choice = "n"
)
