package engine

import "strings"

type Direction string

const (
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// ParseDirection accepts the arrow and WASD names sent by clients.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "w", "arrowup":
		return DirectionUp, true
	case "down", "s", "arrowdown":
		return DirectionDown, true
	case "left", "a", "arrowleft":
		return DirectionLeft, true
	case "right", "d", "arrowright":
		return DirectionRight, true
	}
	return "", false
}

// Board is the road grid. A true cell is walkable.
type Board struct {
	Width  int
	Height int
	cells  [][]bool
}

var defaultLayout = []string{
	"0001111111111000",
	"0011111111111100",
	"0111111111111110",
	"1111111111111111",
	"1111111111111111",
	"1111111111111111",
	"1111111111111111",
	"1111111111111111",
	"0111111111111110",
	"0011111111111100",
	"0001111111111000",
	"0000111111110000",
}

func DefaultBoard() *Board {
	return NewBoard(defaultLayout)
}

// NewBoard parses rows of '0'/'1' characters. Rows shorter than the first are padded as blocked.
func NewBoard(rows []string) *Board {
	b := &Board{Height: len(rows)}
	if len(rows) > 0 {
		b.Width = len(rows[0])
	}
	b.cells = make([][]bool, len(rows))
	for y, row := range rows {
		b.cells[y] = make([]bool, b.Width)
		for x := 0; x < b.Width && x < len(row); x++ {
			b.cells[y][x] = row[x] == '1'
		}
	}
	return b
}

func (b *Board) Walkable(pos Position) bool {
	if pos.X < 0 || pos.Y < 0 || pos.X >= b.Width || pos.Y >= b.Height {
		return false
	}
	return b.cells[pos.Y][pos.X]
}

// Step moves one tile in dir, clamped to the grid. Blocked tiles leave pos unchanged.
func (b *Board) Step(pos Position, dir Direction) Position {
	next := pos
	switch dir {
	case DirectionUp:
		next.Y = max(0, pos.Y-1)
	case DirectionDown:
		next.Y = min(b.Height-1, pos.Y+1)
	case DirectionLeft:
		next.X = max(0, pos.X-1)
	case DirectionRight:
		next.X = min(b.Width-1, pos.X+1)
	}
	if !b.Walkable(next) {
		return pos
	}
	return next
}

// CheckpointAt returns the checkpoint placed on pos, if any.
func (b *Board) CheckpointAt(state State, pos Position) (Checkpoint, bool) {
	for _, cp := range state.Checkpoints {
		if cp.X == pos.X && cp.Y == pos.Y {
			return cp, true
		}
	}
	return Checkpoint{}, false
}
