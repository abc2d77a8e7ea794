// Package mood runs mood classification as a detached background task after a
// message is delivered, and relays the result to both participants.
package mood

import (
	"context"
	"log"

	"github.com/sourcegraph/conc"

	analysis "github.com/zhouzirui/bubble/backend/internal/analysis/mood"
	"github.com/zhouzirui/bubble/backend/internal/service/realtime"
)

// Analyzer classifies the conversation between two users from selfID's
// perspective.
type Analyzer interface {
	AnalyzeMood(ctx context.Context, selfID, partnerID string) (analysis.Result, error)
}

// Emitter delivers targeted events to connected users.
type Emitter interface {
	EmitToUser(userID, event string, data any)
}

// Update is the moodUpdate payload. UserID names the conversation partner
// whose presence indicator should change on the receiving client.
type Update struct {
	Emotion   analysis.Label `json:"emotion"`
	Intensity float64        `json:"intensity"`
	UserID    string         `json:"userId"`
}

// Broadcaster owns the fire-and-forget mood tasks. Queueing never blocks the
// caller; task failures are logged and dropped, never rethrown into the
// message-send flow. Multiple in-flight tasks for the same pair may complete
// in any order (last broadcast wins on the client).
type Broadcaster struct {
	analyzer Analyzer
	emitter  Emitter
	wg       *conc.WaitGroup
}

// NewBroadcaster creates a broadcaster; Close must be called on shutdown to
// drain in-flight tasks.
func NewBroadcaster(analyzer Analyzer, emitter Emitter) *Broadcaster {
	return &Broadcaster{
		analyzer: analyzer,
		emitter:  emitter,
		wg:       conc.NewWaitGroup(),
	}
}

// Queue schedules mood analysis for the conversation senderID just wrote to.
// Both participants receive the result, each tagged with the other party's id.
func (b *Broadcaster) Queue(senderID, receiverID string) {
	b.wg.Go(func() {
		result, err := b.analyzer.AnalyzeMood(context.Background(), senderID, receiverID)
		if err != nil {
			log.Printf("[mood] background analysis failed: %v", err)
			return
		}

		b.emitter.EmitToUser(receiverID, realtime.EventMoodUpdate, Update{
			Emotion:   result.Emotion,
			Intensity: result.Intensity,
			UserID:    senderID,
		})
		b.emitter.EmitToUser(senderID, realtime.EventMoodUpdate, Update{
			Emotion:   result.Emotion,
			Intensity: result.Intensity,
			UserID:    receiverID,
		})
	})
}

// Close waits for in-flight tasks and absorbs any panic they raised.
func (b *Broadcaster) Close() {
	if recovered := b.wg.WaitAndRecover(); recovered != nil {
		log.Printf("[mood] background task panicked: %v", recovered.Value)
	}
}
