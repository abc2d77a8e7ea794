package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/zhouzirui/bubble/backend/internal/model/chat"
	"github.com/zhouzirui/bubble/backend/internal/model/user"
	"github.com/zhouzirui/bubble/backend/internal/service/realtime"
)

type recordingEmitter struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	userID string
	event  string
	data   any
}

func (r *recordingEmitter) EmitToUser(userID, event string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{userID: userID, event: event, data: data})
}

func (r *recordingEmitter) forUser(userID, event string) []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []recordedEvent
	for _, e := range r.events {
		if e.userID == userID && e.event == event {
			out = append(out, e)
		}
	}
	return out
}

type recordingMoodQueue struct {
	mu    sync.Mutex
	pairs [][2]string
}

func (r *recordingMoodQueue) Queue(senderID, receiverID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pairs = append(r.pairs, [2]string{senderID, receiverID})
}

type stubUploader struct {
	url string
	err error
}

func (s stubUploader) Upload(context.Context, string) (string, error) {
	return s.url, s.err
}

func newTestService(t *testing.T) (*Service, *chat.MemoryStore, *user.MemoryStore, *recordingEmitter, *recordingMoodQueue) {
	t.Helper()
	store := chat.NewMemoryStore()
	users := user.NewMemoryStore()
	emitter := &recordingEmitter{}
	moods := &recordingMoodQueue{}
	svc := NewService(store, users, stubUploader{url: "/uploads/test.png"}, emitter, moods)
	return svc, store, users, emitter, moods
}

func TestSendRelaysToReceiverAndQueuesMood(t *testing.T) {
	svc, store, _, emitter, moods := newTestService(t)
	ctx := context.Background()

	msg, err := svc.Send(ctx, "alice", "bob", "hey there", "")
	if err != nil {
		t.Fatalf("Send err: %v", err)
	}
	if msg.ID == "" || msg.CreatedAt.IsZero() {
		t.Fatalf("message not fully populated: %+v", msg)
	}

	relayed := emitter.forUser("bob", realtime.EventNewMessage)
	if len(relayed) != 1 {
		t.Fatalf("expected exactly one newMessage to receiver, got %d", len(relayed))
	}
	if got := relayed[0].data.(chat.Message); got.Text != "hey there" {
		t.Fatalf("unexpected relayed payload: %+v", got)
	}
	if senderSide := emitter.forUser("alice", realtime.EventNewMessage); len(senderSide) != 0 {
		t.Fatalf("sender should not receive newMessage, got %d", len(senderSide))
	}

	if len(moods.pairs) != 1 || moods.pairs[0] != [2]string{"alice", "bob"} {
		t.Fatalf("mood queue not triggered correctly: %v", moods.pairs)
	}

	stored, err := store.AllBetween(ctx, "alice", "bob")
	if err != nil || len(stored) != 1 {
		t.Fatalf("message not persisted: %v %v", stored, err)
	}
}

func TestSendWithImageStoresUploadedURL(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	msg, err := svc.Send(context.Background(), "alice", "bob", "", "data:image/png;base64,AAAA")
	if err != nil {
		t.Fatalf("Send err: %v", err)
	}
	if msg.Image != "/uploads/test.png" {
		t.Fatalf("unexpected image url: %q", msg.Image)
	}
}

func TestSendUploadFailureAborts(t *testing.T) {
	store := chat.NewMemoryStore()
	emitter := &recordingEmitter{}
	moods := &recordingMoodQueue{}
	svc := NewService(store, user.NewMemoryStore(), stubUploader{err: errors.New("upload rejected")}, emitter, moods)

	if _, err := svc.Send(context.Background(), "alice", "bob", "", "payload"); err == nil {
		t.Fatal("upload failure must abort the send")
	}
	if stored, _ := store.AllBetween(context.Background(), "alice", "bob"); len(stored) != 0 {
		t.Fatalf("nothing should be persisted, got %v", stored)
	}
	if len(emitter.events) != 0 || len(moods.pairs) != 0 {
		t.Fatal("no side effects expected on aborted send")
	}
}

func TestSendRejectsEmptyMessage(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)
	if _, err := svc.Send(context.Background(), "alice", "bob", "", ""); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestConversationMarksPartnerMessagesSeen(t *testing.T) {
	svc, store, _, _, _ := newTestService(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Minute)
	for i, m := range []chat.Message{
		{ID: "m1", SenderID: "bob", ReceiverID: "alice", Text: "hi"},
		{ID: "m2", SenderID: "alice", ReceiverID: "bob", Text: "hello"},
		{ID: "m3", SenderID: "bob", ReceiverID: "alice", Text: "how are you?"},
	} {
		m.CreatedAt = base.Add(time.Duration(i) * time.Second)
		if err := store.Insert(ctx, m); err != nil {
			t.Fatalf("Insert err: %v", err)
		}
	}

	messages, err := svc.Conversation(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("Conversation err: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("expected full history, got %d", len(messages))
	}

	unseen, err := store.UnseenCount(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("UnseenCount err: %v", err)
	}
	if unseen != 0 {
		t.Fatalf("partner messages should be seen, %d remain", unseen)
	}
}

func TestMarkSeenIsMonotonic(t *testing.T) {
	svc, store, _, _, _ := newTestService(t)
	ctx := context.Background()

	msg := chat.Message{ID: "m1", SenderID: "bob", ReceiverID: "alice", Text: "hi", CreatedAt: time.Now()}
	if err := store.Insert(ctx, msg); err != nil {
		t.Fatalf("Insert err: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := svc.MarkSeen(ctx, "m1"); err != nil {
			t.Fatalf("MarkSeen err: %v", err)
		}
		stored, _, err := store.LastBetween(ctx, "alice", "bob")
		if err != nil {
			t.Fatalf("LastBetween err: %v", err)
		}
		if !stored.Seen {
			t.Fatal("seen flag should stay true")
		}
	}
}

func TestSidebarListsOthersWithPreviewAndUnseen(t *testing.T) {
	svc, store, users, _, _ := newTestService(t)
	ctx := context.Background()

	for _, u := range []user.User{
		{ID: "alice", Name: "Alice"},
		{ID: "bob", Name: "Bob"},
		{ID: "cara", Name: "Cara"},
	} {
		if err := users.Upsert(ctx, u, ""); err != nil {
			t.Fatalf("Upsert err: %v", err)
		}
	}

	now := time.Now()
	if err := store.Insert(ctx, chat.Message{ID: "m1", SenderID: "bob", ReceiverID: "alice", Text: "lunch?", CreatedAt: now}); err != nil {
		t.Fatalf("Insert err: %v", err)
	}
	if err := store.Insert(ctx, chat.Message{ID: "m2", SenderID: "cara", ReceiverID: "alice", Image: "/uploads/pic.png", CreatedAt: now.Add(time.Second)}); err != nil {
		t.Fatalf("Insert err: %v", err)
	}

	sidebar, err := svc.Sidebar(ctx, "alice")
	if err != nil {
		t.Fatalf("Sidebar err: %v", err)
	}

	if len(sidebar.Users) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(sidebar.Users))
	}
	if sidebar.Users[0].ID != "bob" || sidebar.Users[1].ID != "cara" {
		t.Fatalf("unexpected order: %v", sidebar.Users)
	}
	if sidebar.Users[0].LastMessage != "lunch?" {
		t.Fatalf("unexpected preview: %q", sidebar.Users[0].LastMessage)
	}
	if sidebar.Users[1].LastMessage != "Photo" {
		t.Fatalf("image-only message should preview as Photo, got %q", sidebar.Users[1].LastMessage)
	}
	if sidebar.UnseenMessages["bob"] != 1 || sidebar.UnseenMessages["cara"] != 1 {
		t.Fatalf("unexpected unseen counts: %v", sidebar.UnseenMessages)
	}
}

type failingLastStore struct {
	chat.Store
}

func (f failingLastStore) LastBetween(context.Context, string, string) (chat.Message, bool, error) {
	return chat.Message{}, false, errors.New("lookup failed")
}

func TestSidebarFailsWhollyOnLookupError(t *testing.T) {
	users := user.NewMemoryStore()
	ctx := context.Background()
	_ = users.Upsert(ctx, user.User{ID: "alice", Name: "Alice"}, "")
	_ = users.Upsert(ctx, user.User{ID: "bob", Name: "Bob"}, "")

	svc := NewService(failingLastStore{Store: chat.NewMemoryStore()}, users, stubUploader{}, &recordingEmitter{}, &recordingMoodQueue{})
	if _, err := svc.Sidebar(ctx, "alice"); err == nil {
		t.Fatal("one failing lookup must fail the whole sidebar")
	}
}
