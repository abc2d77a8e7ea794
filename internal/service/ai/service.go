package ai

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/zhouzirui/bubble/backend/internal/analysis/mood"
	"github.com/zhouzirui/bubble/backend/internal/analysis/suggest"
	"github.com/zhouzirui/bubble/backend/internal/model/chat"
)

// imagePlaceholder stands in for text when a history message only carries an
// image; used by the mood path only.
const imagePlaceholder = "[Image sent]"

// Config controls the AI service behavior.
type Config struct {
	// HistoryLimit is the context-window size; defaults to 5.
	HistoryLimit int
	// Timeout bounds each upstream generation call; defaults to 15s.
	// Timeouts follow the same fallback path as any upstream failure.
	Timeout time.Duration
}

// Service runs the conversation-context + generation + reconciliation
// pipeline. Upstream failures never escape it: callers always receive a valid
// suggestion set or mood result. Only context-fetch errors propagate.
type Service struct {
	client       Client
	store        chat.Store
	historyLimit int
	timeout      time.Duration
}

// NewService creates the AI pipeline service. A nil client is allowed and
// behaves as a permanently failing upstream, so every feature degrades to its
// fallback instead of taking the process down.
func NewService(client Client, store chat.Store, cfg Config) *Service {
	historyLimit := cfg.HistoryLimit
	if historyLimit <= 0 {
		historyLimit = 5
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Service{
		client:       client,
		store:        store,
		historyLimit: historyLimit,
		timeout:      timeout,
	}
}

// SmartReplies suggests up to three short replies for selfID to send next in
// the conversation with partnerID. An empty history yields an empty slice;
// upstream or parse trouble yields the fallback triple. The returned error is
// non-nil only when the history itself cannot be read.
func (s *Service) SmartReplies(ctx context.Context, selfID, partnerID string) ([]string, error) {
	messages, err := s.store.RecentBetween(ctx, selfID, partnerID, s.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch conversation context: %w", err)
	}
	if len(messages) == 0 {
		return []string{}, nil
	}

	prompt := BuildReplyPrompt(turnsFor(messages, selfID, ""))
	raw, err := s.generate(ctx, prompt)
	if err != nil {
		log.Printf("[ai] reply generation failed, using fallback: %v", err)
		return suggest.Fallback(), nil
	}
	return suggest.Reconcile(raw), nil
}

// AnalyzeMood classifies the emotional tone of the conversation between
// selfID and partnerID from selfID's perspective. Upstream or parse trouble
// yields the neutral default; only a history read failure returns an error.
func (s *Service) AnalyzeMood(ctx context.Context, selfID, partnerID string) (mood.Result, error) {
	messages, err := s.store.RecentBetween(ctx, selfID, partnerID, s.historyLimit)
	if err != nil {
		return mood.Result{}, fmt.Errorf("failed to fetch conversation context: %w", err)
	}
	if len(messages) == 0 {
		return mood.Default(), nil
	}

	prompt := BuildMoodPrompt(turnsFor(messages, selfID, imagePlaceholder))
	raw, err := s.generate(ctx, prompt)
	if err != nil {
		log.Printf("[ai] mood generation failed, using default: %v", err)
		return mood.Default(), nil
	}
	return mood.Reconcile(raw), nil
}

func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	if s.client == nil {
		return "", ErrNoClient
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.Generate(ctx, prompt)
}

func turnsFor(messages []chat.Message, selfID, placeholder string) []chat.ConversationTurn {
	turns := make([]chat.ConversationTurn, 0, len(messages))
	for _, msg := range messages {
		turns = append(turns, msg.Turn(selfID, placeholder))
	}
	return turns
}
