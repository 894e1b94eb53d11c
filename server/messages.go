package server

import (
	"chainreaction/config"
	"chainreaction/game"
)

// Conn is the minimal connection surface a session needs from a client.
// The websocket transport satisfies it; tests use an in-memory fake.
type Conn interface {
	Send(v any) error
	Close() error
}

// Message types pushed to presentation clients.
const (
	MsgState    = "state"
	MsgResolved = "resolved"
	MsgError    = "error"
)

// StateMessage is a full settled-state snapshot, sent on join and embedded
// in every resolution broadcast.
type StateMessage struct {
	Type          string          `json:"type"`
	Board         [][]game.Cell   `json:"board"`
	CurrentPlayer int             `json:"currentPlayer"`
	Players       []config.Player `json:"players"`
	HasMoved      []bool          `json:"hasMoved"`
	Alive         []bool          `json:"alive"` // only meaningful once all players have moved
	Over          bool            `json:"over"`
	Winner        int             `json:"winner"` // -1 while the game is live
}

// ResolvedMessage broadcasts one settled move: the ordered wave sequence
// for the client's own animation pacing plus the resulting snapshot.
type ResolvedMessage struct {
	Type   string        `json:"type"`
	Move   game.Position `json:"move"`
	Player int           `json:"player"`
	Waves  []game.Wave   `json:"waves"`
	State  StateMessage  `json:"state"`
}

// ErrorMessage reports a rejected move back to its sender only.
type ErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// MoveMessage is the single inbound message: the sender asks to place at a
// grid position.
type MoveMessage struct {
	Type string `json:"type"`
	Row  int    `json:"row"`
	Col  int    `json:"col"`
}

func stateMessage(gs *game.GameState, players []config.Player) StateMessage {
	alive := make([]bool, gs.NumPlayers)
	for p := range alive {
		alive[p] = gs.Alive(game.PlayerID(p))
	}
	return StateMessage{
		Type:          MsgState,
		Board:         gs.Board.Cells(),
		CurrentPlayer: int(gs.CurrentPlayer),
		Players:       players,
		HasMoved:      gs.HasMoved,
		Alive:         alive,
		Over:          gs.IsOver(),
		Winner:        int(gs.Won),
	}
}
