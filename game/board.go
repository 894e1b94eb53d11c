package game

import (
	"fmt"
	"strings"
)

// PlayerID indexes into the ordered player list fixed at game creation.
type PlayerID int

// NoOwner marks an empty cell (-1 indicates unowned).
const NoOwner PlayerID = -1

// Position identifies a cell by grid coordinates.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Cell holds the owner and accumulated charge of one grid cell. An empty
// cell is {NoOwner, 0}; an occupied cell always has Charge >= 1.
type Cell struct {
	Owner  PlayerID `json:"owner"`
	Charge int      `json:"charge"`
}

// Empty reports whether the cell holds no charge.
func (c Cell) Empty() bool {
	return c.Owner == NoOwner
}

// directions are the four orthogonal neighbor offsets, in fixed order so
// that transfer emission is deterministic.
var directions = [4]Position{
	{Row: -1, Col: 0},
	{Row: 1, Col: 0},
	{Row: 0, Col: -1},
	{Row: 0, Col: 1},
}

// Board is a fixed-size rectangular grid of cells. The zero value is not
// usable; construct with NewBoard.
type Board struct {
	Rows  int
	Cols  int
	cells []Cell // row-major, Rows*Cols entries
}

// NewBoard returns an empty board with the given dimensions.
func NewBoard(rows, cols int) Board {
	cells := make([]Cell, rows*cols)
	for i := range cells {
		cells[i] = Cell{Owner: NoOwner}
	}
	return Board{Rows: rows, Cols: cols, cells: cells}
}

// Copy returns an independent deep copy so a resolution can mutate its
// working board without aliasing the caller's state.
func (b Board) Copy() Board {
	cellsCopy := make([]Cell, len(b.cells))
	copy(cellsCopy, b.cells)
	return Board{Rows: b.Rows, Cols: b.Cols, cells: cellsCopy}
}

// InBounds reports whether the position lies on the board.
func (b Board) InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < b.Rows && p.Col >= 0 && p.Col < b.Cols
}

func (b Board) index(p Position) int {
	return p.Row*b.Cols + p.Col
}

// At returns the cell at p. The second return is false when p is out of
// bounds; in-engine callers treat that as an invariant violation, not a
// user error.
func (b Board) At(p Position) (Cell, bool) {
	if !b.InBounds(p) {
		return Cell{Owner: NoOwner}, false
	}
	return b.cells[b.index(p)], true
}

// Capacity returns the critical mass of a position: the count of its
// in-bounds orthogonal neighbors (2 for corners, 3 for edges, 4 interior).
func (b Board) Capacity(p Position) int {
	n := 0
	for _, d := range directions {
		if b.InBounds(Position{Row: p.Row + d.Row, Col: p.Col + d.Col}) {
			n++
		}
	}
	return n
}

// Neighbors returns the in-bounds orthogonal neighbors of p in a fixed
// deterministic order.
func (b Board) Neighbors(p Position) []Position {
	out := make([]Position, 0, 4)
	for _, d := range directions {
		q := Position{Row: p.Row + d.Row, Col: p.Col + d.Col}
		if b.InBounds(q) {
			out = append(out, q)
		}
	}
	return out
}

// Unstable reports whether the cell at p is occupied and at or above its
// critical mass.
func (b Board) Unstable(p Position) bool {
	cell, ok := b.At(p)
	if !ok || cell.Empty() {
		return false
	}
	return cell.Charge >= b.Capacity(p)
}

// PlaceOrIncrement applies one move's placement at p for player: an empty
// cell becomes {player, 1}, the player's own cell gains one charge. A cell
// held by another player is rejected with ErrInvalidMove and the board is
// left unchanged.
func (b *Board) PlaceOrIncrement(p Position, player PlayerID) error {
	if !b.InBounds(p) {
		return fmt.Errorf("place at %v: %w", p, ErrInvalidMove)
	}
	cell := b.cells[b.index(p)]
	if !cell.Empty() && cell.Owner != player {
		return fmt.Errorf("cell %v is held by player %d: %w", p, cell.Owner, ErrInvalidMove)
	}
	// Owner is reassigned on both branches; the enemy case is excluded
	// by the check above, so this only ever keeps or claims the cell.
	b.cells[b.index(p)] = Cell{Owner: player, Charge: cell.Charge + 1}
	return nil
}

// addCharge adds one unit of charge at p on behalf of player, claiming the
// cell. Destinations are always in bounds by construction of transfers.
func (b *Board) addCharge(p Position, player PlayerID) error {
	if !b.InBounds(p) {
		return InvariantError{Reason: fmt.Sprintf("transfer destination %v out of bounds", p)}
	}
	cell := b.cells[b.index(p)]
	b.cells[b.index(p)] = Cell{Owner: player, Charge: cell.Charge + 1}
	return nil
}

// clear empties the cell at p.
func (b *Board) clear(p Position) {
	b.cells[b.index(p)] = Cell{Owner: NoOwner}
}

// OwnerCounts tallies how many cells each player holds.
func (b Board) OwnerCounts() map[PlayerID]int {
	counts := make(map[PlayerID]int)
	for _, cell := range b.cells {
		if !cell.Empty() {
			counts[cell.Owner]++
		}
	}
	return counts
}

// TotalCharge sums the charge across the whole board.
func (b Board) TotalCharge() int {
	total := 0
	for _, cell := range b.cells {
		total += cell.Charge
	}
	return total
}

// Cells returns a row-major copy of the grid for encoding at the
// presentation boundary.
func (b Board) Cells() [][]Cell {
	rows := make([][]Cell, b.Rows)
	for r := 0; r < b.Rows; r++ {
		rows[r] = make([]Cell, b.Cols)
		copy(rows[r], b.cells[r*b.Cols:(r+1)*b.Cols])
	}
	return rows
}

// String renders the board for logs: one cell as "owner:charge", empty as
// dots.
func (b Board) String() string {
	var sb strings.Builder
	for r := 0; r < b.Rows; r++ {
		for c := 0; c < b.Cols; c++ {
			cell := b.cells[r*b.Cols+c]
			if c > 0 {
				sb.WriteByte(' ')
			}
			if cell.Empty() {
				sb.WriteString("..")
			} else {
				fmt.Fprintf(&sb, "%d:%d", cell.Owner, cell.Charge)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
