package chat

import "time"

// Message is a single direct message between two users. Everything except the
// Seen flag is immutable once stored; Seen only ever transitions false -> true.
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Text       string    `json:"text,omitempty"`
	Image      string    `json:"image,omitempty"`
	Seen       bool      `json:"seen"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Preview returns the sidebar preview text for the message.
func (m Message) Preview() string {
	if m.Text != "" {
		return m.Text
	}
	if m.Image != "" {
		return "Photo"
	}
	return ""
}

// Perspective labels a conversation turn relative to some "self" user.
type Perspective string

const (
	PerspectiveMe      Perspective = "me"
	PerspectivePartner Perspective = "partner"
)

// ConversationTurn is a derived, request-scoped view of a message used to
// build generation prompts. It is never persisted.
type ConversationTurn struct {
	Perspective Perspective
	Text        string
}

// Turn derives the conversation turn for this message from selfID's point of
// view. When the message has no text but carries an image, imagePlaceholder is
// substituted (pass "" to keep the empty text).
func (m Message) Turn(selfID, imagePlaceholder string) ConversationTurn {
	perspective := PerspectivePartner
	if m.SenderID == selfID {
		perspective = PerspectiveMe
	}
	text := m.Text
	if text == "" && m.Image != "" {
		text = imagePlaceholder
	}
	return ConversationTurn{Perspective: perspective, Text: text}
}
