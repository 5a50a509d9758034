package conversation

import (
	"fmt"

	"github.com/hammamikhairi/foodvision/internal/domain"
)

// Status lines shown in the status pane and, when speech is on, spoken.
// Keep them short.

// ── Capture ──────────────────────────────────────────────────────

func LineCapturing() string {
	return "Capturing."
}

// LineDetected announces a detection and how to pick a dish.
func LineDetected(r *domain.DetectionResult) string {
	switch n := len(r.Suggestions); n {
	case 0:
		return fmt.Sprintf("Detected %s, %s.", r.DetectedLabel, r.ConfidenceText())
	case 1:
		return fmt.Sprintf("Detected %s, %s. Press 1 for the recipe.", r.DetectedLabel, r.ConfidenceText())
	default:
		return fmt.Sprintf("Detected %s, %s. Press 1 to %d to pick a dish.", r.DetectedLabel, r.ConfidenceText(), min(n, 9))
	}
}

// ── Recipe ───────────────────────────────────────────────────────

func LineOpeningRecipe(d domain.Dish) string {
	return fmt.Sprintf("Opening the recipe for %s.", d.Label)
}

func LineRecipeReady() string {
	return "Here is your recipe. Try another dish? Press y or n."
}

// ── Navigation & voice ───────────────────────────────────────────

func LineGoingHome() string {
	return "Going home."
}

func LineVoiceOn() string {
	return "Voice commands on."
}

func LineVoiceOff() string {
	return "Voice commands off."
}

func LineWelcome() string {
	return "Press c to capture a photo."
}
