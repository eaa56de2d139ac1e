// Package render turns reply intents into the text sent to the customer.
package render

import (
	"context"

	"github.com/SaiNageswarS/booking-agent/booking"
)

// Request is one reply to word, with the conversation it belongs to.
type Request struct {
	SessionID string
	Reply     booking.Reply
	History   []booking.Turn
}

// Renderer words a reply. emit receives the text as it is produced; the
// returned string is the full text.
type Renderer interface {
	Render(ctx context.Context, req Request, emit func(chunk string) error) (string, error)
}
