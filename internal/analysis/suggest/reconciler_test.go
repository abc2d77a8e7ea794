package suggest

import (
	"reflect"
	"strings"
	"testing"
)

func TestReconcileValidArrayPassesThrough(t *testing.T) {
	got := Reconcile(`["Sounds good", "See you then", "Can't wait!"]`)
	want := []string{"Sounds good", "See you then", "Can't wait!"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected suggestions: %v", got)
	}
}

func TestReconcileStripsFencedOutput(t *testing.T) {
	got := Reconcile("```json\n[\"Yes\", \"No\"]\n```")
	want := []string{"Yes", "No"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected suggestions: %v", got)
	}
}

func TestReconcileGarbageReturnsFallback(t *testing.T) {
	for _, raw := range []string{
		"I can't help with that.",
		`["truncated`,
		"```json\n```",
		"",
		`{"not": "an array"}`,
	} {
		got := Reconcile(raw)
		if !reflect.DeepEqual(got, Fallback()) {
			t.Fatalf("input %q: expected fallback, got %v", raw, got)
		}
	}
}

func TestReconcileFiltersInvalidElements(t *testing.T) {
	long := strings.Repeat("x", 60)
	got := Reconcile(`["Keep me", "` + long + `", 42, ""]`)
	want := []string{"Keep me"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected suggestions: %v", got)
	}
}

func TestReconcileLengthBoundary(t *testing.T) {
	boundary := strings.Repeat("y", 59)
	got := Reconcile(`["` + boundary + `"]`)
	if len(got) != 1 || got[0] != boundary {
		t.Fatalf("59-rune suggestion should survive, got %v", got)
	}
}

func TestReconcileAllInvalidReturnsFallback(t *testing.T) {
	got := Reconcile(`[1, 2, null, ""]`)
	if !reflect.DeepEqual(got, Fallback()) {
		t.Fatalf("expected fallback, got %v", got)
	}
}

func TestReconcilePreservesOrder(t *testing.T) {
	got := Reconcile(`["c", "a", "b"]`)
	want := []string{"c", "a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("order changed: %v", got)
	}
}

func TestFallbackIsCopied(t *testing.T) {
	first := Fallback()
	first[0] = "mutated"
	if second := Fallback(); second[0] != "Tell me more" {
		t.Fatalf("fallback shared state: %v", second)
	}
}
