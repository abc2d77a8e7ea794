package chat

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrMessageNotFound is returned when a message id has no stored record.
var ErrMessageNotFound = errors.New("message not found")

// Store is the persistence boundary for messages. Implementations must keep
// messages ordered by creation time within a conversation pair.
type Store interface {
	// Insert persists a new message.
	Insert(ctx context.Context, msg Message) error
	// RecentBetween returns the most recent limit messages exchanged between
	// a and b (both directions), ordered oldest to newest.
	RecentBetween(ctx context.Context, a, b string, limit int) ([]Message, error)
	// AllBetween returns every message exchanged between a and b, oldest first.
	AllBetween(ctx context.Context, a, b string) ([]Message, error)
	// LastBetween returns the most recent message between a and b, or
	// (Message{}, false, nil) when the pair has no history.
	LastBetween(ctx context.Context, a, b string) (Message, bool, error)
	// UnseenCount counts messages from sender to receiver not yet seen.
	UnseenCount(ctx context.Context, receiverID, senderID string) (int, error)
	// MarkConversationSeen marks every message from sender to receiver seen.
	MarkConversationSeen(ctx context.Context, receiverID, senderID string) error
	// MarkMessageSeen marks a single message seen by id.
	MarkMessageSeen(ctx context.Context, messageID string) error
}

// MemoryStore is an in-memory Store suitable for tests and local runs.
type MemoryStore struct {
	mu       sync.RWMutex
	byPair   map[string][]string
	messages map[string]*Message
}

// NewMemoryStore creates an empty in-memory message store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byPair:   make(map[string][]string),
		messages: make(map[string]*Message),
	}
}

func (s *MemoryStore) Insert(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := msg
	s.messages[msg.ID] = &stored

	key := PairKey(msg.SenderID, msg.ReceiverID)
	s.byPair[key] = append(s.byPair[key], msg.ID)
	sort.SliceStable(s.byPair[key], func(i, j int) bool {
		return s.messages[s.byPair[key][i]].CreatedAt.Before(s.messages[s.byPair[key][j]].CreatedAt)
	})
	return nil
}

func (s *MemoryStore) RecentBetween(_ context.Context, a, b string, limit int) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byPair[PairKey(a, b)]
	start := 0
	if limit > 0 && len(ids) > limit {
		start = len(ids) - limit
	}

	out := make([]Message, 0, len(ids)-start)
	for _, id := range ids[start:] {
		out = append(out, *s.messages[id])
	}
	return out, nil
}

func (s *MemoryStore) AllBetween(_ context.Context, a, b string) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byPair[PairKey(a, b)]
	out := make([]Message, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.messages[id])
	}
	return out, nil
}

func (s *MemoryStore) LastBetween(_ context.Context, a, b string) (Message, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byPair[PairKey(a, b)]
	if len(ids) == 0 {
		return Message{}, false, nil
	}
	return *s.messages[ids[len(ids)-1]], true, nil
}

func (s *MemoryStore) UnseenCount(_ context.Context, receiverID, senderID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, id := range s.byPair[PairKey(receiverID, senderID)] {
		msg := s.messages[id]
		if msg.SenderID == senderID && msg.ReceiverID == receiverID && !msg.Seen {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) MarkConversationSeen(_ context.Context, receiverID, senderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.byPair[PairKey(receiverID, senderID)] {
		msg := s.messages[id]
		if msg.SenderID == senderID && msg.ReceiverID == receiverID {
			msg.Seen = true
		}
	}
	return nil
}

func (s *MemoryStore) MarkMessageSeen(_ context.Context, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ok := s.messages[messageID]
	if !ok {
		return ErrMessageNotFound
	}
	msg.Seen = true
	return nil
}
