package speech

import (
	"context"
	"regexp"
	"strings"

	"github.com/hammamikhairi/foodvision/internal/domain"
	"github.com/hammamikhairi/foodvision/internal/logger"
)

// Compile-time interface check.
var _ domain.Notifier = (*SpeakingNotifier)(nil)

// Sayer queues a line for speech.
type Sayer interface {
	Say(text string, priority Priority)
}

// SpeakingNotifier prints through an inner notifier and also speaks the
// line. Urgent lines jump the speech queue.
type SpeakingNotifier struct {
	text  domain.Notifier
	voice Sayer
	log   *logger.Logger
}

// NewSpeakingNotifier creates a notifier that both prints and speaks.
func NewSpeakingNotifier(text domain.Notifier, voice Sayer, log *logger.Logger) *SpeakingNotifier {
	return &SpeakingNotifier{text: text, voice: voice, log: log}
}

// Notify prints the line and queues it at normal priority.
func (n *SpeakingNotifier) Notify(ctx context.Context, message string) error {
	if err := n.text.Notify(ctx, message); err != nil {
		return err
	}
	n.voice.Say(cleanForSpeech(message), PriorityNormal)
	return nil
}

// NotifyUrgent prints the line and queues it at high priority.
func (n *SpeakingNotifier) NotifyUrgent(ctx context.Context, message string) error {
	if err := n.text.NotifyUrgent(ctx, message); err != nil {
		return err
	}
	n.voice.Say(cleanForSpeech(message), PriorityHigh)
	return nil
}

var (
	rankPrefix = regexp.MustCompile(`^\[\d+\]\s*`)
	ansiCodes  = regexp.MustCompile(`\x1b\[[0-9;]*m`)
)

// cleanForSpeech strips terminal styling and list markers.
func cleanForSpeech(msg string) string {
	msg = ansiCodes.ReplaceAllString(msg, "")
	msg = rankPrefix.ReplaceAllString(msg, "")
	return strings.TrimSpace(msg)
}
