package domain

// IntentType classifies what a key press or utterance asks for.
type IntentType int

const (
	IntentUnknown IntentType = iota
	IntentCapture
	IntentSelectDish
	IntentGoHome
	IntentContinue
	IntentExit
)

// String returns a human-readable intent type.
func (i IntentType) String() string {
	switch i {
	case IntentCapture:
		return "capture"
	case IntentSelectDish:
		return "select_dish"
	case IntentGoHome:
		return "go_home"
	case IntentContinue:
		return "continue"
	case IntentExit:
		return "exit"
	default:
		return "unknown"
	}
}

// Intent represents a parsed user action.
type Intent struct {
	Type IntentType
	Rank int // set for IntentSelectDish
}
