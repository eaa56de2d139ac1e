package memory

import (
	"github.com/SaiNageswarS/booking-agent/booking"
	"github.com/SaiNageswarS/booking-agent/llm"
)

// Window bounds how much of the turn history an LLM collaborator sees.
type Window struct {
	maxUserMsgs int
}

func NewWindow(maxUserMsgs int) *Window {
	return &Window{maxUserMsgs: maxUserMsgs}
}

// Messages returns the windowed history followed by the current utterance.
func (w *Window) Messages(sessionID string, history []booking.Turn, utterance string) []llm.Message {
	conv := FromTurns(sessionID, history)
	conv.Messages = w.trim(conv.Messages)
	conv.AddUserMessage(utterance)
	return conv.Messages
}

// trim keeps the last maxUserMsgs "user" messages and whatever assistant
// messages follow them. A nil Window keeps nothing.
func (w *Window) trim(msgs []llm.Message) []llm.Message {
	if w == nil || w.maxUserMsgs <= 0 || len(msgs) == 0 {
		return []llm.Message{}
	}

	usersSeen := 0
	start := 0
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == "user" {
			usersSeen++
			if usersSeen == w.maxUserMsgs {
				start = i
				break
			}
		}
	}

	return msgs[start:]
}

func (w *Window) MaxUserMessages() int {
	if w == nil {
		return 0
	}
	return w.maxUserMsgs
}
