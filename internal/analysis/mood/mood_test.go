package mood

import "testing"

func TestReconcileFencedObject(t *testing.T) {
	got := Reconcile("```json\n{\"emotion\":\"love\",\"intensity\":0.9}\n```")
	if got.Emotion != Love || got.Intensity != 0.9 {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestReconcileMalformedReturnsDefault(t *testing.T) {
	for _, raw := range []string{
		"",
		"not json",
		`{"emotion": "joy"`,
		`["joy", 0.5]`,
	} {
		if got := Reconcile(raw); got != Default() {
			t.Fatalf("input %q: expected default, got %+v", raw, got)
		}
	}
}

func TestReconcileMissingEmotionReturnsDefault(t *testing.T) {
	if got := Reconcile(`{"intensity": 0.8}`); got != Default() {
		t.Fatalf("expected default, got %+v", got)
	}
}

func TestReconcileUnknownEmotionReturnsDefault(t *testing.T) {
	if got := Reconcile(`{"emotion":"ecstatic","intensity":0.7}`); got != Default() {
		t.Fatalf("expected default for unknown label, got %+v", got)
	}
}

func TestReconcileClampsIntensity(t *testing.T) {
	if got := Reconcile(`{"emotion":"angry","intensity":3.2}`); got.Intensity != 1 {
		t.Fatalf("expected clamp to 1, got %+v", got)
	}
	if got := Reconcile(`{"emotion":"sad","intensity":-0.4}`); got.Intensity != 0 {
		t.Fatalf("expected clamp to 0, got %+v", got)
	}
}

func TestReconcileMissingIntensityStaysInRange(t *testing.T) {
	got := Reconcile(`{"emotion":"calm"}`)
	if got.Emotion != Calm || got.Intensity != 0 {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestParseLabelCoversSet(t *testing.T) {
	valid := []string{
		"joy", "love", "grateful", "confident", "surprised", "calm",
		"neutral", "bored", "confused", "anxious", "sad", "angry",
	}
	for _, raw := range valid {
		if _, ok := ParseLabel(raw); !ok {
			t.Fatalf("label %q should parse", raw)
		}
	}
	for _, raw := range []string{"", "JOY", "happy", "meh"} {
		if _, ok := ParseLabel(raw); ok {
			t.Fatalf("label %q should not parse", raw)
		}
	}
}

func TestDefaultValue(t *testing.T) {
	got := Default()
	if got.Emotion != Neutral || got.Intensity != 0.5 {
		t.Fatalf("unexpected default: %+v", got)
	}
}
