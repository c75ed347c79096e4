package domain

// Cell is one grid slot: either empty or holding a token.
type Cell struct {
	token    Token
	occupied bool
}

// EmptyCell is the zero Cell.
var EmptyCell = Cell{}

func Occupied(t Token) Cell {
	return Cell{token: t, occupied: true}
}

func (c Cell) IsEmpty() bool {
	return !c.occupied
}

// Token returns the occupant and whether there is one.
func (c Cell) Token() (Token, bool) {
	return c.token, c.occupied
}

func (c Cell) String() string {
	if !c.occupied {
		return ""
	}
	return c.token.String()
}

// Position is a (row, col) grid coordinate, row 0 at the bottom.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// grid is a row-major rows*cols buffer.
type grid struct {
	rows  int
	cols  int
	cells []Cell
}

func newGrid(rows, cols int) grid {
	return grid{rows: rows, cols: cols, cells: make([]Cell, rows*cols)}
}

func (g *grid) inBounds(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.cols
}

func (g *grid) at(row, col int) Cell {
	return g.cells[row*g.cols+col]
}

func (g *grid) set(row, col int, c Cell) {
	g.cells[row*g.cols+col] = c
}

// lowestEmptyRow returns the row a dropped token settles in, or -1 if the column is full.
func (g *grid) lowestEmptyRow(col int) int {
	for row := 0; row < g.rows; row++ {
		if g.at(row, col).IsEmpty() {
			return row
		}
	}
	return -1
}

func (g *grid) full() bool {
	for _, c := range g.cells {
		if c.IsEmpty() {
			return false
		}
	}
	return true
}

// sameRun reports whether the ToWin cells starting at (row, col) and stepping by
// (dRow, dCol) all hold the same token. The caller keeps the run inside the grid.
func (g *grid) sameRun(row, col, dRow, dCol int) bool {
	first := g.at(row, col)
	if first.IsEmpty() {
		return false
	}
	for i := 1; i < ToWin; i++ {
		if g.at(row+i*dRow, col+i*dCol) != first {
			return false
		}
	}
	return true
}
