package grid

import "fmt"

// Dimension limits applied by Reset and by the generate action.
const (
	MinRows     = 5
	MaxRows     = 60
	MinCols     = 5
	MaxCols     = 80
	DefaultRows = 20
	DefaultCols = 25
)

// Coord is a (row, col) cell address.
type Coord struct {
	Row, Col int
}

// C is shorthand for Coord{Row: r, Col: c}.
func C(r, c int) Coord { return Coord{Row: r, Col: c} }

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Pair returns the wire form [row, col].
func (c Coord) Pair() [2]int { return [2]int{c.Row, c.Col} }

// Cell is the static content of a grid cell.
type Cell uint8

const (
	Free Cell = iota
	Wall
)

// Kind is what a cell renders as: its Cell, unless it is the start or goal.
type Kind uint8

const (
	KindFree Kind = iota
	KindWall
	KindStart
	KindGoal
)

func (k Kind) String() string {
	switch k {
	case KindWall:
		return "wall"
	case KindStart:
		return "start"
	case KindGoal:
		return "goal"
	default:
		return "free"
	}
}
