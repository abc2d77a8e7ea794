package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis key layout:
//
//	msg:{id}                 message JSON blob
//	conv:{lo}:{hi}           ZSET of message ids scored by creation time
//	unseen:{receiver}:{sender} SET of not-yet-seen message ids
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore creates a message store backed by the given redis client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func messageKey(id string) string {
	return "msg:" + id
}

func conversationKey(a, b string) string {
	return "conv:" + PairKey(a, b)
}

func unseenKey(receiverID, senderID string) string {
	return "unseen:" + receiverID + ":" + senderID
}

func (s *RedisStore) Insert(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message %s: %w", msg.ID, err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, messageKey(msg.ID), payload, 0)
	pipe.ZAdd(ctx, conversationKey(msg.SenderID, msg.ReceiverID), redis.Z{
		Score:  float64(msg.CreatedAt.UnixNano()),
		Member: msg.ID,
	})
	pipe.SAdd(ctx, unseenKey(msg.ReceiverID, msg.SenderID), msg.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store message %s: %w", msg.ID, err)
	}
	return nil
}

func (s *RedisStore) RecentBetween(ctx context.Context, a, b string, limit int) ([]Message, error) {
	if limit < 1 {
		limit = 1
	}
	ids, err := s.rdb.ZRevRange(ctx, conversationKey(a, b), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read conversation index: %w", err)
	}

	// ZRevRange yields newest first; reverse to the oldest-first contract.
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
	return s.loadMessages(ctx, ids)
}

func (s *RedisStore) AllBetween(ctx context.Context, a, b string) ([]Message, error) {
	ids, err := s.rdb.ZRange(ctx, conversationKey(a, b), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read conversation index: %w", err)
	}
	return s.loadMessages(ctx, ids)
}

func (s *RedisStore) LastBetween(ctx context.Context, a, b string) (Message, bool, error) {
	ids, err := s.rdb.ZRevRange(ctx, conversationKey(a, b), 0, 0).Result()
	if err != nil {
		return Message{}, false, fmt.Errorf("failed to read conversation index: %w", err)
	}
	if len(ids) == 0 {
		return Message{}, false, nil
	}

	msgs, err := s.loadMessages(ctx, ids)
	if err != nil {
		return Message{}, false, err
	}
	if len(msgs) == 0 {
		return Message{}, false, nil
	}
	return msgs[0], true, nil
}

func (s *RedisStore) UnseenCount(ctx context.Context, receiverID, senderID string) (int, error) {
	count, err := s.rdb.SCard(ctx, unseenKey(receiverID, senderID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count unseen messages: %w", err)
	}
	return int(count), nil
}

func (s *RedisStore) MarkConversationSeen(ctx context.Context, receiverID, senderID string) error {
	key := unseenKey(receiverID, senderID)
	ids, err := s.rdb.SMembers(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to read unseen set: %w", err)
	}

	for _, id := range ids {
		if err := s.setSeen(ctx, id); err != nil {
			return err
		}
	}
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to clear unseen set: %w", err)
	}
	return nil
}

func (s *RedisStore) MarkMessageSeen(ctx context.Context, messageID string) error {
	msg, err := s.getMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.Seen {
		return nil
	}
	if err := s.setSeen(ctx, messageID); err != nil {
		return err
	}
	return s.rdb.SRem(ctx, unseenKey(msg.ReceiverID, msg.SenderID), messageID).Err()
}

func (s *RedisStore) getMessage(ctx context.Context, id string) (Message, error) {
	raw, err := s.rdb.Get(ctx, messageKey(id)).Result()
	if err == redis.Nil {
		return Message{}, ErrMessageNotFound
	}
	if err != nil {
		return Message{}, fmt.Errorf("failed to load message %s: %w", id, err)
	}

	var msg Message
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		return Message{}, fmt.Errorf("failed to decode message %s: %w", id, err)
	}
	return msg, nil
}

func (s *RedisStore) setSeen(ctx context.Context, id string) error {
	msg, err := s.getMessage(ctx, id)
	if err != nil {
		return err
	}
	msg.Seen = true

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message %s: %w", id, err)
	}
	if err := s.rdb.Set(ctx, messageKey(id), payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to update message %s: %w", id, err)
	}
	return nil
}

func (s *RedisStore) loadMessages(ctx context.Context, ids []string) ([]Message, error) {
	if len(ids) == 0 {
		return []Message{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = messageKey(id)
	}
	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	out := make([]Message, 0, len(values))
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			// Index entry without a blob; skip rather than fail the read.
			continue
		}
		var msg Message
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			return nil, fmt.Errorf("failed to decode message %s: %w", ids[i], err)
		}
		out = append(out, msg)
	}
	return out, nil
}
