package game

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
)

// StateHash is a 64-bit fingerprint of a game state, used to verify that
// two resolutions of the same move from the same state agree.
type StateHash uint64

// GameState represents the dynamic state of one game: the board plus turn
// bookkeeping. Operations that advance the game always work on a fresh
// copy, so every settled state observed by a consumer is an immutable
// snapshot.
type GameState struct {
	Board         Board
	NumPlayers    int      // Size of the fixed ordered player list
	CurrentPlayer PlayerID // Whose move is awaited
	HasMoved      []bool   // Per player: has made at least one move this game
	Won           PlayerID // Winning player, NoOwner while the game is live
}

// NewGameState returns the start-of-game state: an empty rows x cols board
// with player 0 to move and nobody having moved yet.
func NewGameState(rows, cols, numPlayers int) *GameState {
	return &GameState{
		Board:         NewBoard(rows, cols),
		NumPlayers:    numPlayers,
		CurrentPlayer: 0,
		HasMoved:      make([]bool, numPlayers),
		Won:           NoOwner,
	}
}

// Copy returns an independent deep copy of the state.
func (gs *GameState) Copy() *GameState {
	hasMovedCopy := make([]bool, len(gs.HasMoved))
	copy(hasMovedCopy, gs.HasMoved)
	return &GameState{
		Board:         gs.Board.Copy(),
		NumPlayers:    gs.NumPlayers,
		CurrentPlayer: gs.CurrentPlayer,
		HasMoved:      hasMovedCopy,
		Won:           gs.Won,
	}
}

// IsOver reports whether the game has ended; no further moves are accepted
// once true.
func (gs *GameState) IsOver() bool {
	return gs.Won != NoOwner
}

// Winner returns the winning player once the game is over.
func (gs *GameState) Winner() (PlayerID, bool) {
	if gs.Won == NoOwner {
		return NoOwner, false
	}
	return gs.Won, true
}

// AllMoved reports whether every player has made at least one move. The
// win condition is suppressed until then: a two-player game must not end
// on player 0's opening move even though only one owner is on the board.
func (gs *GameState) AllMoved() bool {
	for _, moved := range gs.HasMoved {
		if !moved {
			return false
		}
	}
	return true
}

// CheckWinner returns the winner if the win condition holds on the current
// board: every player has moved and exactly one distinct owner remains.
func (gs *GameState) CheckWinner() PlayerID {
	if !gs.AllMoved() {
		return NoOwner
	}
	counts := gs.Board.OwnerCounts()
	if len(counts) != 1 {
		return NoOwner
	}
	for owner := range counts {
		return owner
	}
	return NoOwner
}

// Alive reports whether the player holds at least one cell. Only
// meaningful once all players have moved.
func (gs *GameState) Alive(player PlayerID) bool {
	return gs.Board.OwnerCounts()[player] > 0
}

// NextPlayer returns the player after the current one in turn order.
func (gs *GameState) NextPlayer() PlayerID {
	return (gs.CurrentPlayer + 1) % PlayerID(gs.NumPlayers)
}

// Validate checks the stored-state invariants: every occupied cell has a
// positive charge and a known owner. A failure is a bug in the engine, not
// bad input.
func (gs *GameState) Validate() error {
	for r := 0; r < gs.Board.Rows; r++ {
		for c := 0; c < gs.Board.Cols; c++ {
			p := Position{Row: r, Col: c}
			cell, _ := gs.Board.At(p)
			if cell.Empty() {
				if cell.Charge != 0 {
					return InvariantError{Reason: fmt.Sprintf("empty cell %v stores charge %d", p, cell.Charge)}
				}
				continue
			}
			if cell.Charge < 1 {
				return InvariantError{Reason: fmt.Sprintf("cell %v owned by %d stores charge %d", p, cell.Owner, cell.Charge)}
			}
			if int(cell.Owner) < 0 || int(cell.Owner) >= gs.NumPlayers {
				return InvariantError{Reason: fmt.Sprintf("cell %v has unknown owner %d", p, cell.Owner)}
			}
		}
	}
	return nil
}

// Hash fingerprints the state with FNV-64a over the turn bookkeeping and
// every cell in row-major order.
func (gs *GameState) Hash() StateHash {
	hasher := fnv.New64a()

	binary.Write(hasher, binary.LittleEndian, int64(gs.CurrentPlayer))
	binary.Write(hasher, binary.LittleEndian, int64(gs.Won))
	for _, moved := range gs.HasMoved {
		v := int64(0)
		if moved {
			v = 1
		}
		binary.Write(hasher, binary.LittleEndian, v)
	}
	for _, cell := range gs.Board.cells {
		binary.Write(hasher, binary.LittleEndian, int64(cell.Owner))
		binary.Write(hasher, binary.LittleEndian, int64(cell.Charge))
	}
	return StateHash(hasher.Sum64())
}
