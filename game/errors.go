package game

import "errors"

// ErrInvalidMove rejects a move that targets another player's cell or
// arrives while the game is not accepting moves. The game state is left
// unchanged; the caller may retry with a different position.
var ErrInvalidMove = errors.New("invalid move")

// InvariantError signals a bug inside the engine itself (out-of-bounds
// access, nonpositive stored charge, runaway cascade). It is fatal: the
// affected game session must halt rather than continue on corrupt state.
type InvariantError struct {
	Reason string
}

func (e InvariantError) Error() string {
	return "invariant violation: " + e.Reason
}

// IsFatal reports whether err is an engine invariant violation as opposed
// to a recoverable move rejection.
func IsFatal(err error) bool {
	var ie InvariantError
	return errors.As(err, &ie)
}
