// Package mood turns raw model output into a validated mood classification.
package mood

import (
	"encoding/json"

	"github.com/zhouzirui/bubble/backend/internal/analysis/llmtext"
)

// Label is one of the twelve emotions the classifier may report.
type Label string

const (
	Joy       Label = "joy"
	Love      Label = "love"
	Grateful  Label = "grateful"
	Confident Label = "confident"
	Surprised Label = "surprised"
	Calm      Label = "calm"
	Neutral   Label = "neutral"
	Bored     Label = "bored"
	Confused  Label = "confused"
	Anxious   Label = "anxious"
	Sad       Label = "sad"
	Angry     Label = "angry"
)

// ParseLabel validates a raw emotion string against the closed label set.
func ParseLabel(raw string) (Label, bool) {
	switch Label(raw) {
	case Joy, Love, Grateful, Confident, Surprised, Calm,
		Neutral, Bored, Confused, Anxious, Sad, Angry:
		return Label(raw), true
	default:
		return "", false
	}
}

// Result is a mood classification with intensity in [0.0, 1.0].
type Result struct {
	Emotion   Label   `json:"emotion"`
	Intensity float64 `json:"intensity"`
}

// Default is the result substituted whenever classification cannot be trusted.
func Default() Result {
	return Result{Emotion: Neutral, Intensity: 0.5}
}

type payload struct {
	Emotion   string  `json:"emotion"`
	Intensity float64 `json:"intensity"`
}

// Reconcile parses raw model output into a mood result. Parse failures, a
// missing emotion field, or an emotion outside the label set all yield the
// neutral default; intensity is clamped into range. There is no error path.
func Reconcile(raw string) Result {
	cleaned := llmtext.StripFences(raw)

	var parsed payload
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return Default()
	}
	if parsed.Emotion == "" {
		return Default()
	}

	label, ok := ParseLabel(parsed.Emotion)
	if !ok {
		return Default()
	}

	return Result{Emotion: label, Intensity: clampIntensity(parsed.Intensity)}
}

func clampIntensity(val float64) float64 {
	if val < 0 {
		return 0
	}
	if val > 1 {
		return 1
	}
	return val
}
