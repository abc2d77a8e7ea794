package mood

import (
	"context"
	"errors"
	"sync"
	"testing"

	analysis "github.com/zhouzirui/bubble/backend/internal/analysis/mood"
	"github.com/zhouzirui/bubble/backend/internal/service/realtime"
)

type fakeAnalyzer struct {
	result analysis.Result
	err    error
}

func (f fakeAnalyzer) AnalyzeMood(context.Context, string, string) (analysis.Result, error) {
	return f.result, f.err
}

type recordingEmitter struct {
	mu     sync.Mutex
	events map[string][]Update
}

func newRecordingEmitter() *recordingEmitter {
	return &recordingEmitter{events: make(map[string][]Update)}
}

func (r *recordingEmitter) EmitToUser(userID, event string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if event == realtime.EventMoodUpdate {
		r.events[userID] = append(r.events[userID], data.(Update))
	}
}

func TestQueueEmitsToBothParticipants(t *testing.T) {
	emitter := newRecordingEmitter()
	b := NewBroadcaster(fakeAnalyzer{result: analysis.Result{Emotion: analysis.Joy, Intensity: 0.7}}, emitter)

	b.Queue("alice", "bob")
	b.Close()

	aliceEvents := emitter.events["alice"]
	bobEvents := emitter.events["bob"]
	if len(aliceEvents) != 1 || len(bobEvents) != 1 {
		t.Fatalf("expected one moodUpdate each, got alice=%d bob=%d", len(aliceEvents), len(bobEvents))
	}
	// Each side is tagged with the other party's id.
	if aliceEvents[0].UserID != "bob" {
		t.Fatalf("sender should receive partner id, got %q", aliceEvents[0].UserID)
	}
	if bobEvents[0].UserID != "alice" {
		t.Fatalf("receiver should receive sender id, got %q", bobEvents[0].UserID)
	}
	if aliceEvents[0].Emotion != analysis.Joy || aliceEvents[0].Intensity != 0.7 {
		t.Fatalf("unexpected payload: %+v", aliceEvents[0])
	}
}

func TestQueueDropsResultOnAnalyzerError(t *testing.T) {
	emitter := newRecordingEmitter()
	b := NewBroadcaster(fakeAnalyzer{err: errors.New("store down")}, emitter)

	b.Queue("alice", "bob")
	b.Close()

	if len(emitter.events) != 0 {
		t.Fatalf("no events expected on analyzer failure, got %v", emitter.events)
	}
}
