package personalize

import "errors"

var (
	ErrUnknownEventKind = errors.New("unknown event kind")

	// ErrPersist marks a failed durable write. The in-memory profile has
	// already been updated and stays authoritative for the session.
	ErrPersist = errors.New("persist profile")
)
