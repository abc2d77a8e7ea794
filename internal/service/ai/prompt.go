package ai

import (
	"strings"

	"github.com/zhouzirui/bubble/backend/internal/model/chat"
)

const replyPromptHeader = `You are a smart reply assistant.
Read the following chat history between "Me" and "Partner".
Generate 3 short, concise, and context-aware replies for "Me" to send next.

Chat History:
`

const replyPromptFooter = `

Output strict JSON format ONLY:
["Reply 1", "Reply 2", "Reply 3"]`

const moodPromptHeader = `Analyze the emotional tone of the following conversation.

Conversation:
`

const moodPromptFooter = `

Rules:
1. Return ONLY a valid JSON object. Do not add markdown blocks.
2. The "emotion" field must be exactly one of the following:
   "joy", "love", "grateful", "confident", "surprised", "calm",
   "neutral", "bored", "confused", "anxious", "sad", "angry".
3. The "intensity" field must be a number between 0.0 (low) and 1.0 (high).

Example Output:
{ "emotion": "love", "intensity": 0.9 }`

// BuildReplyPrompt renders the smart-reply instruction around the labeled
// history. Rendering is plain interpolation; the content is the users' own
// persisted chat text.
func BuildReplyPrompt(turns []chat.ConversationTurn) string {
	var b strings.Builder
	b.WriteString(replyPromptHeader)
	writeTurns(&b, turns, "Me", "Partner")
	b.WriteString(replyPromptFooter)
	return b.String()
}

// BuildMoodPrompt renders the mood-classification instruction around the
// labeled history.
func BuildMoodPrompt(turns []chat.ConversationTurn) string {
	var b strings.Builder
	b.WriteString(moodPromptHeader)
	writeTurns(&b, turns, "User", "Partner")
	b.WriteString(moodPromptFooter)
	return b.String()
}

func writeTurns(b *strings.Builder, turns []chat.ConversationTurn, selfLabel, partnerLabel string) {
	for i, turn := range turns {
		if i > 0 {
			b.WriteString("\n")
		}
		label := partnerLabel
		if turn.Perspective == chat.PerspectiveMe {
			label = selfLabel
		}
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(turn.Text)
	}
}
