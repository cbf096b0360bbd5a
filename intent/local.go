package intent

import (
	"strings"

	"github.com/tbxark/formpilot/types"
)

// Rule pairs a predicate over the folded message with the intent it produces.
// Rules are evaluated in slice order, the first matching rule wins.
type Rule struct {
	Name  string
	Match func(folded string) bool
	Build func(raw, folded string) Intent
}

type LocalIntentRecognizer struct {
	Rules []Rule

	CheckedKeywords   []string
	UncheckedKeywords []string
}

func NewLocalIntentRecognizer() *LocalIntentRecognizer {
	return &LocalIntentRecognizer{
		Rules:             DefaultRules(),
		CheckedKeywords:   []string{"x", "ja", "ankreuzen", "ja bitte"},
		UncheckedKeywords: []string{"nein", "leer", "nicht an", "nein danke"},
	}
}

func DefaultRules() []Rule {
	return []Rule{
		{
			Name:  "show_commands",
			Match: equalsAny("befehle", "commands"),
			Build: kind(ShowCommands),
		},
		{
			Name: "help",
			Match: func(s string) bool {
				return equalsAny("hilfe", "help", "?", "was")(s) || containsAny("was ist", "beispiel")(s)
			},
			Build: kind(Help),
		},
		{
			Name:  "clear",
			Match: equalsAny("löschen", "clear", "entfernen", "reset"),
			Build: kind(Clear),
		},
		{
			Name:  "skip",
			Match: equalsAny("weiter", "skip", "next", "überspringen"),
			Build: kind(Skip),
		},
		{
			Name:  "back",
			Match: equalsAny("zurück", "back", "vorheriges", "previous"),
			Build: kind(Back),
		},
		{
			Name:  "status",
			Match: equalsAny("status", "fortschritt", "progress"),
			Build: kind(Status),
		},
		{
			Name:  "finish",
			Match: equalsAny("fertig", "done", "abschluss"),
			Build: kind(Finish),
		},
		{
			Name:  "navigate",
			Match: containsAny("gehe zu", "springe zu", "zu feld"),
			Build: func(raw, folded string) Intent {
				return Intent{Kind: Navigate, Target: navigationTarget(raw, folded)}
			},
		},
	}
}

// Classify never fails, unmatched text is Input carrying the original message.
func (r *LocalIntentRecognizer) Classify(message string) Intent {
	folded := types.Fold(message)
	for _, rule := range r.Rules {
		if rule.Match(folded) {
			return rule.Build(message, folded)
		}
	}
	return Intent{Kind: Input, Value: message}
}

// ClassifyCheckbox recognizes the two-way answers for checkbox fields. ok is
// false when message is neither.
func (r *LocalIntentRecognizer) ClassifyCheckbox(message string) (checked bool, ok bool) {
	folded := types.Fold(message)
	if equalsAny(r.CheckedKeywords...)(folded) {
		return true, true
	}
	if equalsAny(r.UncheckedKeywords...)(folded) {
		return false, true
	}
	return false, false
}

var defaultRecognizer = NewLocalIntentRecognizer()

func Classify(message string) Intent {
	return defaultRecognizer.Classify(message)
}

func ClassifyCheckbox(message string) (checked bool, ok bool) {
	return defaultRecognizer.ClassifyCheckbox(message)
}

func kind(k Kind) func(raw, folded string) Intent {
	return func(string, string) Intent {
		return Intent{Kind: k}
	}
}

func equalsAny(keywords ...string) func(string) bool {
	return func(s string) bool {
		for _, kw := range keywords {
			if s == kw {
				return true
			}
		}
		return false
	}
}

func containsAny(keywords ...string) func(string) bool {
	return func(s string) bool {
		for _, kw := range keywords {
			if strings.Contains(s, kw) {
				return true
			}
		}
		return false
	}
}

// navigationTarget returns the text after the first "zu", keeping the
// original casing of the user's message where byte offsets allow it.
func navigationTarget(raw, folded string) string {
	i := strings.Index(folded, "zu")
	if i < 0 {
		return ""
	}
	src := folded
	if trimmed := strings.TrimSpace(raw); len(trimmed) == len(folded) {
		src = trimmed
	}
	return strings.TrimSpace(src[i+len("zu"):])
}
