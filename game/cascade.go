package game

import "fmt"

// Transfer is one unit of charge leaving an exploding cell for an
// orthogonal neighbor on behalf of the player whose move triggered the
// cascade.
type Transfer struct {
	From   Position `json:"from"`
	To     Position `json:"to"`
	Player PlayerID `json:"player"`
}

// Wave is one batch of simultaneous explosions. Every transfer in a wave
// is computed against the same pre-wave board, so an explosion never sees
// the effect of another explosion in its own wave. Num counts waves from 0
// within a single resolution, giving replayable identifiers.
type Wave struct {
	Num       int        `json:"num"`
	Transfers []Transfer `json:"transfers"`
}

// MaxWaves caps a single resolution. Total board charge is finite and a
// cascade redistributes it outward, so convergence is expected long before
// this; hitting the cap means cyclic instability and is a fatal fault.
const MaxWaves = 10000

// ApplyWave advances the board by one wave: every distinct exploding cell
// is emptied, then each transfer adds one charge at its destination and
// claims it for the propagating player. Exposed so a presentation consumer
// can replay the same intermediate boards the resolution produced.
func (b *Board) ApplyWave(w Wave) error {
	cleared := make(map[Position]bool)
	for _, t := range w.Transfers {
		if cleared[t.From] {
			continue
		}
		if !b.InBounds(t.From) {
			return InvariantError{Reason: fmt.Sprintf("wave %d: source %v out of bounds", w.Num, t.From)}
		}
		b.clear(t.From)
		cleared[t.From] = true
	}
	for _, t := range w.Transfers {
		if err := b.addCharge(t.To, t.Player); err != nil {
			return err
		}
	}
	return nil
}

// destinations returns the distinct transfer targets in first-appearance
// order; they form the pending set of the next wave.
func (w Wave) destinations() []Position {
	seen := make(map[Position]bool)
	out := make([]Position, 0, len(w.Transfers))
	for _, t := range w.Transfers {
		if seen[t.To] {
			continue
		}
		seen[t.To] = true
		out = append(out, t.To)
	}
	return out
}

// Resolve runs the full chain reaction triggered by the cell at trigger,
// which has just received player's placement. It works on its own copy of
// board and returns the settled board together with the ordered wave
// sequence.
//
// Each iteration checks every pending position against the current board,
// collects one wave of transfers from all cells found unstable, applies
// the wave, and carries the wave's destinations forward as the next
// pending set. An empty wave means the board is stable.
func Resolve(board Board, trigger Position, player PlayerID) (Board, []Wave, error) {
	b := board.Copy()
	if !b.InBounds(trigger) {
		return Board{}, nil, InvariantError{Reason: fmt.Sprintf("trigger %v out of bounds", trigger)}
	}

	pending := []Position{trigger}
	var waves []Wave
	for len(pending) > 0 {
		if len(waves) >= MaxWaves {
			return Board{}, nil, InvariantError{Reason: fmt.Sprintf("cascade from %v exceeded %d waves", trigger, MaxWaves)}
		}

		var transfers []Transfer
		for _, p := range pending {
			if !b.Unstable(p) {
				continue
			}
			for _, q := range b.Neighbors(p) {
				transfers = append(transfers, Transfer{From: p, To: q, Player: player})
			}
		}
		if len(transfers) == 0 {
			break
		}

		wave := Wave{Num: len(waves), Transfers: transfers}
		if err := b.ApplyWave(wave); err != nil {
			return Board{}, nil, err
		}
		waves = append(waves, wave)
		pending = wave.destinations()
	}
	return b, waves, nil
}
