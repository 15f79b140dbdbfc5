package errors

import "errors"

var (
	ErrInvalidCoordinate = errors.New("coordinate is off the board")
	ErrNoPieceAtSource   = errors.New("no piece at source square")
	ErrWrongTurn         = errors.New("not this side's turn")
	ErrIllegalMove       = errors.New("illegal move")
	ErrNotFound          = errors.New("match not found")
	ErrMatchFull         = errors.New("match already has two players")
	ErrStoreFailure      = errors.New("match store failure")

	ErrMatchNotActive  = errors.New("match is not in progress")
	ErrNotParticipant  = errors.New("identity is not a player in this match")
	ErrInvalidIdentity = errors.New("player identity is empty")

	// store-level signals, handled inside the use case
	ErrCodeTaken      = errors.New("match code already in use")
	ErrConflict       = errors.New("match was modified concurrently")
	ErrCodeAllocation = errors.New("could not allocate a unique match code")
)

// Retryable reports whether the caller may safely repeat the operation.
func Retryable(err error) bool {
	return errors.Is(err, ErrStoreFailure)
}
