// Package controller owns the interaction flow of one installed page: a
// pure transition function over domain.Session and a single-goroutine
// runtime that carries out the resulting effects.
package controller

import (
	"github.com/hammamikhairi/foodvision/internal/conversation"
	"github.com/hammamikhairi/foodvision/internal/domain"
	"github.com/hammamikhairi/foodvision/internal/logger"
)

// HomePath is where go_home, continue and exit lead.
const HomePath = "/"

// Machine maps (session, event) to (session, effects). It has no side
// effects; the parser only classifies keys and utterances.
type Machine struct {
	parser domain.IntentParser
}

// NewMachine creates a transition machine using parser for keys and
// utterances.
func NewMachine(parser domain.IntentParser) *Machine {
	return &Machine{parser: parser}
}

var defaultMachine = NewMachine(defaultParser(logger.New(logger.LevelOff, nil)))

func defaultParser(log *logger.Logger) domain.IntentParser {
	return conversation.NewKeywordParser(log)
}

// Transition applies ev to s using the keyword parser.
func Transition(s domain.Session, ev domain.Event) (domain.Session, []Effect) {
	return defaultMachine.Transition(s, ev)
}

// Transition applies ev to s. The returned session is a copy; s is not
// modified. An event that does not apply to the current stage returns s
// unchanged and no effects.
func (m *Machine) Transition(s domain.Session, ev domain.Event) (domain.Session, []Effect) {
	if s.Stage == domain.StageLeaving {
		// The page is going away. Utterances are still forwarded and the
		// toast still tracks speech; nothing else applies.
		switch ev := ev.(type) {
		case domain.SpeakingChanged:
			return s, []Effect{RenderToast{Speaking: ev.Speaking}}
		case domain.UtteranceHeard:
			if ev.Text != "" {
				return s, []Effect{EmitVoiceCommand{Text: ev.Text}}
			}
		}
		return s, nil
	}

	switch ev := ev.(type) {
	case domain.CaptureRequested:
		return m.captureRequested(s)
	case domain.CaptureSucceeded:
		return m.captureSucceeded(s, ev.Result)
	case domain.CaptureFailed:
		return m.captureFailed(s, ev.Err)
	case domain.DishSelected:
		return m.dishSelected(s, ev.Rank)
	case domain.RecipeLoaded:
		if s.Stage != domain.StageSubmitting {
			return s, nil
		}
		s.Stage = domain.StageLeaving
		return s, []Effect{InstallPage{Markup: ev.Markup}}
	case domain.RecipeFailed:
		return m.recipeFailed(s, ev.Err)
	case domain.ContinueRequested:
		if !s.Interactive() {
			return s, nil
		}
		s.Stage = domain.StageContinuing
		return s, []Effect{StopVoice{}, PostContinue{Choice: ev.Choice}}
	case domain.ContinueSettled:
		if s.Stage != domain.StageContinuing {
			return s, nil
		}
		s.Stage = domain.StageLeaving
		return s, []Effect{Navigate{Path: HomePath}}
	case domain.NavigationReceived:
		if ev.Command.Command != domain.NavGoHome {
			return s, nil
		}
		s.Stage = domain.StageLeaving
		return s, []Effect{
			StopVoice{Release: true},
			Announce{Text: conversation.LineGoingHome()},
			Navigate{Path: HomePath},
		}
	case domain.HomeRequested:
		if !s.Interactive() {
			return s, nil
		}
		s.Stage = domain.StageLeaving
		return s, []Effect{
			StopVoice{},
			Announce{Text: conversation.LineGoingHome()},
			Navigate{Path: HomePath},
		}
	case domain.LinkFollowed:
		if ev.Href == "" {
			return s, nil
		}
		s.Stage = domain.StageLeaving
		return s, []Effect{ShowLoading{Visible: true}, StopVoice{}, Navigate{Path: ev.Href}}
	case domain.UtteranceHeard:
		if ev.Text == "" {
			return s, nil
		}
		effects := []Effect{EmitVoiceCommand{Text: ev.Text}}
		next, more := m.dispatch(s, m.parser.ParseUtterance(s.Phase, ev.Text))
		return next, append(effects, more...)
	case domain.KeyPressed:
		return m.dispatch(s, m.parser.ParseKey(s.Phase, ev.Key))
	case domain.VoiceToggled:
		return m.voiceToggled(s)
	case domain.ErrorDismissed:
		s.LastError = ""
		return s, []Effect{RenderError{}}
	case domain.SpeakingChanged:
		return s, []Effect{RenderToast{Speaking: ev.Speaking}}
	}
	return s, nil
}

// dispatch turns an intent into the event it stands for.
func (m *Machine) dispatch(s domain.Session, in domain.Intent) (domain.Session, []Effect) {
	switch in.Type {
	case domain.IntentCapture:
		return m.Transition(s, domain.CaptureRequested{})
	case domain.IntentSelectDish:
		return m.Transition(s, domain.DishSelected{Rank: in.Rank})
	case domain.IntentGoHome:
		return m.Transition(s, domain.HomeRequested{})
	case domain.IntentContinue:
		return m.Transition(s, domain.ContinueRequested{Choice: domain.ChoiceContinue})
	case domain.IntentExit:
		return m.Transition(s, domain.ContinueRequested{Choice: domain.ChoiceExit})
	}
	return s, nil
}

// ── Capture ──────────────────────────────────────────────────────

func (m *Machine) captureRequested(s domain.Session) (domain.Session, []Effect) {
	if s.Phase != domain.PhaseIndex {
		return s, nil
	}
	if s.Stage != domain.StageIdle && s.Stage != domain.StageDisplaying {
		return s, nil
	}
	s.Stage = domain.StageCapturing
	return s, []Effect{
		ShowLoading{Visible: true},
		Announce{Text: conversation.LineCapturing()},
		IssueCapture{},
	}
}

func (m *Machine) captureSucceeded(s domain.Session, r *domain.DetectionResult) (domain.Session, []Effect) {
	if s.Stage != domain.StageCapturing {
		return s, nil
	}
	effects := []Effect{ShowLoading{Visible: false}, RenderResults{Result: r}}

	if !r.Detected() {
		s.Stage = domain.StageIdle
		s.Dishes = nil
		s.LastError = domain.MsgNoFoodDetected
		return s, append(effects,
			RenderSuggestions{},
			RenderError{Message: domain.MsgNoFoodDetected},
			Announce{Text: domain.MsgNoFoodDetected, Urgent: true},
		)
	}

	s.Stage = domain.StageDisplaying
	s.Dishes = append([]domain.Dish(nil), r.Suggestions...)
	s.LastError = ""
	return s, append(effects,
		RenderSuggestions{Dishes: s.Dishes},
		RenderError{},
		Announce{Text: conversation.LineDetected(r)},
	)
}

func (m *Machine) captureFailed(s domain.Session, err error) (domain.Session, []Effect) {
	if s.Stage != domain.StageCapturing {
		return s, nil
	}
	msg := domain.UserMessage(err)
	if msg == "" {
		msg = domain.MsgNetworkError
	}
	s.LastError = msg
	s.Stage = domain.StageIdle
	if len(s.Dishes) > 0 {
		// The previous suggestions are still on screen and selectable.
		s.Stage = domain.StageDisplaying
	}
	return s, []Effect{
		ShowLoading{Visible: false},
		RenderError{Message: msg},
		Announce{Text: msg, Urgent: true},
	}
}

// ── Recipe ───────────────────────────────────────────────────────

func (m *Machine) dishSelected(s domain.Session, rank int) (domain.Session, []Effect) {
	if s.Phase != domain.PhaseIndex || s.Stage != domain.StageDisplaying || !s.ValidRank(rank) {
		return s, nil
	}
	s.Stage = domain.StageSubmitting
	s.PendingRank = rank
	return s, []Effect{
		StopVoice{},
		Announce{Text: conversation.LineOpeningRecipe(s.Dishes[rank-1])},
		RequestRecipe{Rank: rank},
	}
}

func (m *Machine) recipeFailed(s domain.Session, err error) (domain.Session, []Effect) {
	if s.Stage != domain.StageSubmitting {
		return s, nil
	}
	msg := domain.UserMessage(err)
	if msg == "" {
		msg = domain.MsgRecipeNotFound
	}
	s.Stage = domain.StageDisplaying
	s.PendingRank = 0
	s.LastError = msg
	effects := []Effect{Alert{Message: msg}, Announce{Text: msg, Urgent: true}}
	if s.VoiceEnabled {
		effects = append(effects, StartVoice{})
	}
	return s, effects
}

// ── Voice ────────────────────────────────────────────────────────

func (m *Machine) voiceToggled(s domain.Session) (domain.Session, []Effect) {
	s.VoiceEnabled = !s.VoiceEnabled
	var effects []Effect
	switch {
	case !s.VoiceEnabled:
		effects = append(effects, StopVoice{}, Announce{Text: conversation.LineVoiceOff()})
	case voiceAllowed(s.Stage):
		effects = append(effects, StartVoice{}, Announce{Text: conversation.LineVoiceOn()})
	default:
		effects = append(effects, Announce{Text: conversation.LineVoiceOn()})
	}
	return s, append(effects, RenderVoiceToggle{})
}

// voiceAllowed reports whether recognition may run in stage. It never runs
// while a page replacement is pending.
func voiceAllowed(st domain.Stage) bool {
	switch st {
	case domain.StageIdle, domain.StageCapturing, domain.StageDisplaying:
		return true
	}
	return false
}
