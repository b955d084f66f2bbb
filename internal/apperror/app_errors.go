package apperror

import (
	"errors"
	"fmt"
)

var (
	// ErrIllegalMove is the only gameplay error: placing on an occupied cell or after the game ended.
	ErrIllegalMove = errors.New("illegal move")

	ErrCellOccupied = fmt.Errorf("%w: cell is already occupied", ErrIllegalMove)
	ErrGameFinished = fmt.Errorf("%w: game is already finished", ErrIllegalMove)

	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidSession  = errors.New("invalid session token")
)
