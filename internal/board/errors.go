package board

import (
	"errors"
	"fmt"
)

var (
	// ErrIllegalMove matches every *IllegalMoveError.
	ErrIllegalMove = errors.New("illegal move")
	// ErrInvariant matches every *InvariantViolation.
	ErrInvariant = errors.New("position invariant violated")
)

// IllegalMoveError reports a move that is not in the legal-move set of the
// position it was played on. The caller can recover by choosing another
// move.
type IllegalMoveError struct {
	Move   string
	FEN    string
	Reason string
}

func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("illegal move %s in %q: %s", e.Move, e.FEN, e.Reason)
}

func (e *IllegalMoveError) Is(target error) bool { return target == ErrIllegalMove }

// InvariantViolation reports a position that cannot arise from legal play,
// such as a missing king. It indicates a bug upstream and is not
// recoverable.
type InvariantViolation struct {
	Reason string
}

func (e *InvariantViolation) Error() string {
	return "invariant violation: " + e.Reason
}

func (e *InvariantViolation) Is(target error) bool { return target == ErrInvariant }
