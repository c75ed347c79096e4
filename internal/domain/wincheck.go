package domain

// direction is a scan step. Every scan walks the whole grid, not just the
// lines through the last drop.
type direction struct {
	dRow, dCol int
}

var (
	horizontal     = direction{0, 1}
	vertical       = direction{1, 0}
	risingDiagonal = direction{1, 1}
	// falling: moving right goes one row down
	fallingDiagonal = direction{-1, 1}
)

// scanOrder is the order the four directional scans run in.
var scanOrder = []direction{horizontal, vertical, risingDiagonal, fallingDiagonal}

// findRun returns the start of the first four-in-a-row along d, scanning rows
// bottom-up and columns left to right.
func (g *grid) findRun(d direction) (Position, bool) {
	rowFrom, rowTo := 0, g.rows
	if d.dRow > 0 {
		rowTo = g.rows - (ToWin - 1)
	} else if d.dRow < 0 {
		rowFrom = ToWin - 1
	}
	colTo := g.cols - (ToWin-1)*d.dCol

	for row := rowFrom; row < rowTo; row++ {
		for col := 0; col < colTo; col++ {
			if g.sameRun(row, col, d.dRow, d.dCol) {
				return Position{Row: row, Col: col}, true
			}
		}
	}
	return Position{}, false
}

func (g *grid) hasRun(d direction) bool {
	_, ok := g.findRun(d)
	return ok
}

// HasHorizontalFour reports a row-wise connect four anywhere in the grid.
func (c4 *ConnectFour) HasHorizontalFour() bool {
	return c4.grid.hasRun(horizontal)
}

// HasVerticalFour reports a column-wise connect four anywhere in the grid.
func (c4 *ConnectFour) HasVerticalFour() bool {
	return c4.grid.hasRun(vertical)
}

// HasDiagonalFour reports a connect four along either diagonal.
func (c4 *ConnectFour) HasDiagonalFour() bool {
	return c4.grid.hasRun(risingDiagonal) || c4.grid.hasRun(fallingDiagonal)
}

// WinningLine returns the four cells of the first connect four found, or nil.
func (c4 *ConnectFour) WinningLine() []Position {
	for _, d := range scanOrder {
		start, ok := c4.grid.findRun(d)
		if !ok {
			continue
		}
		line := make([]Position, ToWin)
		for i := range line {
			line[i] = Position{Row: start.Row + i*d.dRow, Col: start.Col + i*d.dCol}
		}
		return line
	}
	return nil
}

// IsLastDropConnectFour reports whether the grid holds four equal tokens in a
// row and moves the game to PhaseOver when it does or when the grid is full.
// Call it once after every DropToken. Phase is the only state it touches.
func (c4 *ConnectFour) IsLastDropConnectFour() bool {
	if c4.grid.full() {
		c4.phase = PhaseOver
	}

	if c4.HasHorizontalFour() || c4.HasVerticalFour() || c4.HasDiagonalFour() {
		c4.phase = PhaseOver
		return true
	}
	return false
}
