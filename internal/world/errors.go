package world

import "errors"

// Move failure taxonomy. The first group are expected outcomes: the caller
// validates a crawler's request against the graph and reports the reason
// back. The second group are integrity failures: the graph data itself is
// broken and the failure is logged at error level.
var (
	// ErrNotPositioned means the crawler has no position ledger entry.
	// Callers self-heal via EnsurePosition.
	ErrNotPositioned = errors.New("crawler has no position")

	// ErrNoExit means the current room has no outgoing connection with the
	// requested direction.
	ErrNoExit = errors.New("no exit in that direction")

	// ErrLocked means the matching connection is locked.
	ErrLocked = errors.New("connection is locked")

	// ErrInvalidTransition means a staircase move was requested outside a
	// stairs room.
	ErrInvalidTransition = errors.New("not in a stairs room")

	// ErrNoDeeperFloor means no floor exists below the current one.
	ErrNoDeeperFloor = errors.New("no deeper floor")

	// ErrNoEntrance means the next floor exists but has no entrance room.
	// Floor generation is incomplete; the transition is not retryable.
	ErrNoEntrance = errors.New("floor has no entrance")

	// ErrDestinationMissing means a connection points at a room that does
	// not exist. Referential integrity violation.
	ErrDestinationMissing = errors.New("destination room missing")
)

// IsExpectedMoveFailure reports whether the error is a validation outcome
// rather than an integrity or infrastructure failure.
func IsExpectedMoveFailure(err error) bool {
	return errors.Is(err, ErrNotPositioned) ||
		errors.Is(err, ErrNoExit) ||
		errors.Is(err, ErrLocked) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrNoDeeperFloor)
}
