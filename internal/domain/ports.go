package domain

import "context"

// ServerBridge issues the outbound requests of the application. Every call
// is at-most-once; failures are returned to the caller, never retried.
type ServerBridge interface {
	Capture(ctx context.Context) (*DetectionResult, error)
	SelectDish(ctx context.Context, rank int) (string, error)
	ContinueSession(ctx context.Context, choice Choice) error
	FetchPage(ctx context.Context, path string) (string, error)
}

// PushChannel carries server-initiated events. Handlers are registered once
// per connection and are called from the channel's own goroutine.
type PushChannel interface {
	OnNavigationCommand(handler func(NavigationCommand))
	OnDebugTrace(handler func(message string))
	EmitVoiceCommand(ctx context.Context, command string) error
	Close() error
}

// VoiceInput is a continuous speech recognizer that can be switched on and
// off. Stop must be idempotent. Release stops and waits until the engine
// has let go of the microphone.
type VoiceInput interface {
	Start()
	Stop()
	Release()
	Available() bool
	Utterances() <-chan string
}

// Notifier surfaces short status lines to the user.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}

// IntentParser converts raw key presses and utterances into intents,
// scoped to the installed page phase.
type IntentParser interface {
	ParseKey(phase Phase, key string) Intent
	ParseUtterance(phase Phase, text string) Intent
}
