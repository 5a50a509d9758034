package domain

import "github.com/google/uuid"

// Session is the state of one installed page. It is owned by the controller
// loop and replaced wholesale when the document is swapped.
type Session struct {
	ID           string
	Phase        Phase
	Stage        Stage
	Dishes       []Dish
	VoiceEnabled bool
	LastError    string
	PendingRank  int // rank being submitted, 0 otherwise
}

// NewSession creates the state for a freshly installed page.
func NewSession(phase Phase, voiceEnabled bool) Session {
	return Session{
		ID:           uuid.NewString(),
		Phase:        phase,
		Stage:        StageIdle,
		VoiceEnabled: voiceEnabled,
	}
}

// ValidRank reports whether rank selects one of the displayed dishes.
func (s Session) ValidRank(rank int) bool {
	return rank >= 1 && rank <= len(s.Dishes)
}

// Interactive reports whether the page still accepts user actions.
func (s Session) Interactive() bool {
	return s.Stage != StageContinuing && s.Stage != StageLeaving
}

// Stage is the controller's position in the interaction flow.
type Stage int

const (
	StageIdle Stage = iota
	StageCapturing
	StageDisplaying
	StageSubmitting
	StageContinuing // continue/exit posted, waiting for any response
	StageLeaving    // navigation started; late completions are ignored
)

// String returns a human-readable stage.
func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageCapturing:
		return "capturing"
	case StageDisplaying:
		return "displaying"
	case StageSubmitting:
		return "submitting"
	case StageContinuing:
		return "continuing"
	case StageLeaving:
		return "leaving"
	default:
		return "unknown"
	}
}
