// Package suggest turns raw model output into a guaranteed-valid set of reply
// suggestions. The upstream text nominally contains a JSON array but may be
// fenced, truncated, or garbage; every path out of Reconcile yields a
// non-empty slice of short strings.
package suggest

import (
	"encoding/json"
	"unicode/utf8"

	"github.com/zhouzirui/bubble/backend/internal/analysis/llmtext"
)

// maxRunes is the exclusive upper bound on suggestion length.
const maxRunes = 60

// Fallback is the suggestion triple substituted whenever the model output
// yields no usable suggestions.
func Fallback() []string {
	return []string{"Tell me more", "I'm not sure", "Let's talk later"}
}

// Reconcile parses raw model output into reply suggestions. Parse failures and
// wrong shapes are treated as an empty candidate list, never as errors; if no
// candidate survives filtering, the fallback triple is returned.
func Reconcile(raw string) []string {
	cleaned := llmtext.StripFences(raw)

	var candidates []any
	// A failed parse leaves candidates empty, which lands on the fallback.
	_ = json.Unmarshal([]byte(cleaned), &candidates)

	suggestions := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		s, ok := candidate.(string)
		if !ok {
			continue
		}
		if s == "" || utf8.RuneCountInString(s) >= maxRunes {
			continue
		}
		suggestions = append(suggestions, s)
	}

	if len(suggestions) == 0 {
		return Fallback()
	}
	return suggestions
}
