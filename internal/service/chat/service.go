package chat

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/zhouzirui/bubble/backend/internal/model/chat"
	"github.com/zhouzirui/bubble/backend/internal/model/user"
	"github.com/zhouzirui/bubble/backend/internal/service/realtime"
)

var ErrEmptyMessage = errors.New("message needs text or an image")

// Emitter delivers targeted events to connected users.
type Emitter interface {
	EmitToUser(userID, event string, data any)
}

// MoodQueue schedules background mood analysis for a conversation.
type MoodQueue interface {
	Queue(senderID, receiverID string)
}

// Uploader turns an inline image payload into a durable URL.
type Uploader interface {
	Upload(ctx context.Context, data string) (string, error)
}

// Service encapsulates the messaging operations: sending with real-time
// relay, conversation reads with read receipts, and the sidebar listing.
type Service struct {
	store    chat.Store
	users    user.Store
	uploader Uploader
	emitter  Emitter
	moods    MoodQueue
}

// NewService wires the messaging service.
func NewService(store chat.Store, users user.Store, uploader Uploader, emitter Emitter, moods MoodQueue) *Service {
	return &Service{
		store:    store,
		users:    users,
		uploader: uploader,
		emitter:  emitter,
		moods:    moods,
	}
}

// Send persists a message from sender to receiver, relays it to the receiver's
// connection, and queues background mood analysis. An image upload failure
// aborts the send; the mood task can never fail it.
func (s *Service) Send(ctx context.Context, senderID, receiverID, text, image string) (chat.Message, error) {
	if text == "" && image == "" {
		return chat.Message{}, ErrEmptyMessage
	}

	var imageURL string
	if image != "" {
		url, err := s.uploader.Upload(ctx, image)
		if err != nil {
			return chat.Message{}, fmt.Errorf("failed to upload image: %w", err)
		}
		imageURL = url
	}

	msg := chat.Message{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		Image:      imageURL,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.Insert(ctx, msg); err != nil {
		return chat.Message{}, fmt.Errorf("failed to store message: %w", err)
	}

	s.emitter.EmitToUser(receiverID, realtime.EventNewMessage, msg)
	s.moods.Queue(senderID, receiverID)
	return msg, nil
}

// Conversation returns the full history between selfID and partnerID and
// marks everything the partner sent as seen.
func (s *Service) Conversation(ctx context.Context, selfID, partnerID string) ([]chat.Message, error) {
	messages, err := s.store.AllBetween(ctx, selfID, partnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	if err := s.store.MarkConversationSeen(ctx, selfID, partnerID); err != nil {
		return nil, fmt.Errorf("failed to mark conversation seen: %w", err)
	}
	return messages, nil
}

// MarkSeen marks a single message seen.
func (s *Service) MarkSeen(ctx context.Context, messageID string) error {
	return s.store.MarkMessageSeen(ctx, messageID)
}

// SidebarEntry is one conversation partner with their latest-message preview.
type SidebarEntry struct {
	user.User
	LastMessage     string `json:"lastMessage"`
	LastMessageTime int64  `json:"lastMessageTime"`
}

// Sidebar lists every other user with last message and unseen counts.
type Sidebar struct {
	Users          []SidebarEntry `json:"users"`
	UnseenMessages map[string]int `json:"unseenMessages"`
}

type sidebarRow struct {
	entry  SidebarEntry
	unseen int
}

// Sidebar fans the per-user lookups out concurrently and joins on all of them;
// any single lookup failure fails the whole listing.
func (s *Service) Sidebar(ctx context.Context, selfID string) (Sidebar, error) {
	everyone, err := s.users.List(ctx)
	if err != nil {
		return Sidebar{}, fmt.Errorf("failed to list users: %w", err)
	}

	p := pool.NewWithResults[sidebarRow]().WithContext(ctx)
	for _, u := range everyone {
		if u.ID == selfID {
			continue
		}
		u := u
		p.Go(func(ctx context.Context) (sidebarRow, error) {
			last, ok, err := s.store.LastBetween(ctx, selfID, u.ID)
			if err != nil {
				return sidebarRow{}, fmt.Errorf("failed to load last message for %s: %w", u.ID, err)
			}
			unseen, err := s.store.UnseenCount(ctx, selfID, u.ID)
			if err != nil {
				return sidebarRow{}, fmt.Errorf("failed to count unseen for %s: %w", u.ID, err)
			}

			entry := SidebarEntry{User: u}
			if ok {
				entry.LastMessage = last.Preview()
				entry.LastMessageTime = last.CreatedAt.UnixMilli()
			}
			return sidebarRow{entry: entry, unseen: unseen}, nil
		})
	}

	rows, err := p.Wait()
	if err != nil {
		return Sidebar{}, err
	}

	sidebar := Sidebar{
		Users:          make([]SidebarEntry, 0, len(rows)),
		UnseenMessages: make(map[string]int),
	}
	for _, row := range rows {
		sidebar.Users = append(sidebar.Users, row.entry)
		if row.unseen > 0 {
			sidebar.UnseenMessages[row.entry.ID] = row.unseen
		}
	}
	// Pool results arrive in completion order; restore the listing order.
	sort.Slice(sidebar.Users, func(i, j int) bool {
		return sidebar.Users[i].Name < sidebar.Users[j].Name
	})
	return sidebar, nil
}
