package memory

import (
	"github.com/SaiNageswarS/booking-agent/booking"
	"github.com/SaiNageswarS/booking-agent/llm"
)

// Conversation is a turn history rendered as chat messages.
type Conversation struct {
	SessionID string
	Messages  []llm.Message
}

// FromTurns expands each turn into a user message and, when the bot
// answered, an assistant message.
func FromTurns(sessionID string, turns []booking.Turn) *Conversation {
	c := &Conversation{SessionID: sessionID, Messages: make([]llm.Message, 0, len(turns)*2)}
	for _, t := range turns {
		c.AddUserMessage(t.User)
		if t.Bot != "" {
			c.AddAssistantMessage(t.Bot)
		}
	}
	return c
}

func (m *Conversation) AddUserMessage(content string) {
	m.Messages = append(m.Messages, llm.Message{Role: "user", Content: content})
}

func (m *Conversation) AddAssistantMessage(content string) {
	m.Messages = append(m.Messages, llm.Message{Role: "assistant", Content: content})
}
