package booking

import (
	"context"
	"errors"

	"github.com/SaiNageswarS/booking-agent/catalog"
)

// SessionContext is the read-only view of a session handed to collaborators.
type SessionContext struct {
	SessionID string
	FlowState FlowState
	Record    Record
	History   []Turn
}

// ModeRouter picks the conversation mode for an utterance made outside a booking.
type ModeRouter interface {
	ClassifyMode(ctx context.Context, utterance string, sc SessionContext) (Mode, error)
}

// Extractor pulls appointment fields out of free text. It must only report
// values stated in the utterance.
type Extractor interface {
	Extract(ctx context.Context, utterance string, cat *catalog.Catalog, sc SessionContext) (ExtractionResult, error)
}

type ConfirmationClassifier interface {
	ClassifyConfirmation(ctx context.Context, utterance string, record Record) (Verdict, error)
}

type DetourClassifier interface {
	ClassifyDetour(ctx context.Context, utterance string, sc SessionContext) (Detour, error)
}

// CommitSink persists a confirmed appointment. Implementations must treat
// key as an idempotency key and return the same booking id for a repeat.
type CommitSink interface {
	Commit(ctx context.Context, key string, record Record) (string, error)
}

// ErrCommitFailed wraps failures of a CommitSink.
var ErrCommitFailed = errors.New("reservation commit failed")
