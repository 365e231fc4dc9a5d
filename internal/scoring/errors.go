package scoring

import (
	"errors"
	"fmt"
)

var (
	// ErrMatchAlreadyFinished rejects any mutating event once the match is over.
	ErrMatchAlreadyFinished = errors.New("match already finished")
	// ErrNothingToUndo is returned by Undo when no action has been recorded.
	ErrNothingToUndo = errors.New("nothing to undo")
	// ErrInvalidEventForPhase rejects an event the current phase does not accept.
	ErrInvalidEventForPhase = errors.New("invalid event for phase")
	// ErrUnknownEvent rejects an event kind the engine does not know.
	ErrUnknownEvent = errors.New("unknown event")
	// ErrInvalidSide rejects an event that names neither side.
	ErrInvalidSide = errors.New("invalid side")
	// ErrInconsistentState signals a transition that broke a score invariant.
	ErrInconsistentState = errors.New("inconsistent score state")
)

func phaseError(kind EventKind, phase Phase) error {
	return fmt.Errorf("%w: %s during %s", ErrInvalidEventForPhase, kind, phase)
}
