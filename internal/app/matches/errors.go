package matches

import "errors"

var (
	// ErrNotFound is returned for ids that name no live match.
	ErrNotFound = errors.New("match not found")
	// ErrInvalidRequest wraps lineup and catalog validation failures.
	ErrInvalidRequest = errors.New("invalid match request")
	// ErrCourtBusy rejects a new match on a court that is unavailable or already in use.
	ErrCourtBusy = errors.New("court busy")
	// ErrAlreadyClosed is returned when a finished match has already been archived.
	ErrAlreadyClosed = errors.New("match already closed")
)
