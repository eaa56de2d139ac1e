package session

import "errors"

var (
	// ErrStoreUnavailable means the session could not be read or written.
	// The turn is aborted and the stored session is untouched.
	ErrStoreUnavailable = errors.New("session store unavailable")

	// ErrTurnInProgress is returned under the reject policy when another
	// turn for the same session has not finished.
	ErrTurnInProgress = errors.New("a turn for this session is already in progress")

	// ErrVersionConflict means the stored session changed since it was loaded.
	ErrVersionConflict = errors.New("session version conflict")

	// ErrHistoryRewritten means a turn returned fewer turns than it loaded.
	// Turn history is append-only, so nothing is saved.
	ErrHistoryRewritten = errors.New("turn history is append-only")
)
