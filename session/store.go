package session

import (
	"context"

	"github.com/SaiNageswarS/booking-agent/booking"
)

// Store persists sessions by id.
//
// Load returns a fresh session for an unknown id. Save writes sess only if
// the stored version is sess.Version-1, so a store never loses a turn to a
// concurrent writer.
type Store interface {
	Load(ctx context.Context, id string) (booking.Session, error)
	Save(ctx context.Context, sess booking.Session) error
}
