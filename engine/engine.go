package engine

import "chainreaction/game"

// Phase is the turn controller's state machine position.
type Phase int

const (
	// AwaitingMove accepts exactly one move from the current player.
	AwaitingMove Phase = iota
	// Resolving covers the span of one move's cascade; no input is
	// accepted until the board settles.
	Resolving
	// GameOver accepts nothing further.
	GameOver
)

func (p Phase) String() string {
	switch p {
	case AwaitingMove:
		return "awaiting_move"
	case Resolving:
		return "resolving"
	case GameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// Update carries one settled move to a consumer: the move that was played,
// the ordered wave sequence it triggered, and the resulting immutable
// state snapshot. Waves are a finite replayable sequence, not a stream;
// the consumer paces their display with its own timing.
type Update struct {
	Move  game.Position
	Waves []game.Wave
	State *game.GameState
	Hash  game.StateHash
}

// UpdateGetter polls for the next settled update. It returns nil when no
// update is pending or the game is over and fully drained.
type UpdateGetter func() *Update

// Engine is the turn controller: it validates and applies moves, one at a
// time, and hands settled states to a consumer.
type Engine interface {
	// Init returns the initial state snapshot and a getter for settled
	// updates.
	Init() (*game.GameState, UpdateGetter)
	// SubmitMove applies the current player's move at pos, resolving
	// the full cascade before returning. A rejected move leaves the
	// state unchanged and returns an error wrapping game.ErrInvalidMove.
	SubmitMove(pos game.Position) ([]game.Wave, error)
}
