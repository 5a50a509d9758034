// Package conversation turns key presses and recognised speech into
// intents, and prints status notifications to the terminal surface.
package conversation

import (
	"regexp"
	"strings"

	"github.com/hammamikhairi/foodvision/internal/domain"
	"github.com/hammamikhairi/foodvision/internal/logger"
)

// Compile-time interface check.
var _ domain.IntentParser = (*KeywordParser)(nil)

// KeywordParser matches input to intents with fixed keys and keyword
// patterns. Every rule is scoped to a page phase; dispatch never looks at
// which elements the page has.
type KeywordParser struct {
	log  *logger.Logger
	keys map[domain.Phase]map[string]domain.IntentType
	said map[domain.Phase][]patternRule
}

type patternRule struct {
	regex  *regexp.Regexp
	intent domain.IntentType
}

// NewKeywordParser creates a keyword-based intent parser.
func NewKeywordParser(log *logger.Logger) *KeywordParser {
	p := &KeywordParser{log: log}

	both := map[string]domain.IntentType{
		"y": domain.IntentContinue, "Y": domain.IntentContinue,
		"n": domain.IntentExit, "N": domain.IntentExit,
	}
	index := merge(both, map[string]domain.IntentType{
		"c": domain.IntentCapture, "C": domain.IntentCapture,
	})
	recipe := merge(both, map[string]domain.IntentType{
		"h": domain.IntentGoHome, "H": domain.IntentGoHome, "Escape": domain.IntentGoHome,
	})
	p.keys = map[domain.Phase]map[string]domain.IntentType{
		domain.PhaseIndex:  index,
		domain.PhaseRecipe: recipe,
	}

	answers := []patternRule{
		{regexp.MustCompile(`^(yes|yeah|yep|continue)$`), domain.IntentContinue},
		{regexp.MustCompile(`^(no|nope|exit)$`), domain.IntentExit},
	}
	p.said = map[domain.Phase][]patternRule{
		domain.PhaseIndex: append([]patternRule{
			{regexp.MustCompile(`capture`), domain.IntentCapture},
		}, answers...),
		domain.PhaseRecipe: append([]patternRule{
			{regexp.MustCompile(`\b(home|back|return)\b`), domain.IntentGoHome},
		}, answers...),
	}
	return p
}

func merge(a, b map[string]domain.IntentType) map[string]domain.IntentType {
	out := make(map[string]domain.IntentType, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

// ParseKey maps a key name to an intent for the given phase. Digits 1-9
// select a dish on the index page; the caller checks the rank against the
// displayed list.
func (p *KeywordParser) ParseKey(phase domain.Phase, key string) domain.Intent {
	if phase == domain.PhaseIndex && len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		return domain.Intent{Type: domain.IntentSelectDish, Rank: int(key[0] - '0')}
	}
	if t, ok := p.keys[phase][key]; ok {
		p.log.Debug("key %q -> %s", key, t)
		return domain.Intent{Type: t}
	}
	return domain.Intent{Type: domain.IntentUnknown}
}

// ParseUtterance maps recognised speech to an intent for the given phase.
// Dish selection is not available by voice.
func (p *KeywordParser) ParseUtterance(phase domain.Phase, text string) domain.Intent {
	cleaned := normalize(text)
	if cleaned == "" {
		return domain.Intent{Type: domain.IntentUnknown}
	}
	for _, rule := range p.said[phase] {
		if rule.regex.MatchString(cleaned) {
			p.log.Debug("utterance %q -> %s", cleaned, rule.intent)
			return domain.Intent{Type: rule.intent}
		}
	}
	p.log.Debug("utterance %q matched nothing in phase %s", cleaned, phase)
	return domain.Intent{Type: domain.IntentUnknown}
}

var punctuation = regexp.MustCompile(`[^a-z0-9' ]+`)

// normalize lower-cases and strips punctuation the recognizer tends to add.
func normalize(s string) string {
	s = strings.ToLower(s)
	s = punctuation.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}
