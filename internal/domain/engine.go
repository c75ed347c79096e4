package domain

import "fmt"

// ConnectFour holds the state of one game: the grid, both player tokens, the
// drop counter, the last drop and the phase. It is not safe for concurrent
// use; callers that share a game must serialize access themselves.
type ConnectFour struct {
	grid        grid
	players     [2]Token
	numDropped  int
	lastDropRow int
	lastDropCol int
	phase       GamePhase
}

// NewConnectFour builds an empty game. Supported sizes are
// MinRows <= rows <= MaxRows and MinCols <= cols <= MaxCols.
func NewConnectFour(rows, cols int) (*ConnectFour, error) {
	if rows < MinRows || rows > MaxRows {
		return nil, fmt.Errorf("%w: rows must be between %d and %d, got %d",
			ErrInvalidDimensions, MinRows, MaxRows, rows)
	}
	if cols < MinCols || cols > MaxCols {
		return nil, fmt.Errorf("%w: cols must be between %d and %d, got %d",
			ErrInvalidDimensions, MinCols, MaxCols, cols)
	}

	return &ConnectFour{
		grid:        newGrid(rows, cols),
		lastDropRow: -1,
		lastDropCol: -1,
		phase:       PhaseNew,
	}, nil
}

func (c4 *ConnectFour) Rows() int {
	return c4.grid.rows
}

func (c4 *ConnectFour) Cols() int {
	return c4.grid.cols
}

func (c4 *ConnectFour) IsInBounds(row, col int) bool {
	return c4.grid.inBounds(row, col)
}

// TokenAt returns the cell at (row, col).
func (c4 *ConnectFour) TokenAt(row, col int) (Cell, error) {
	if !c4.grid.inBounds(row, col) {
		return EmptyCell, fmt.Errorf("%w: (%d, %d) is outside a %dx%d grid",
			ErrOutOfBounds, row, col, c4.grid.rows, c4.grid.cols)
	}
	return c4.grid.at(row, col), nil
}

// SetPlayerTokens assigns both tokens at once. Allowed until the first drop;
// moves a new game to PhaseReady.
func (c4 *ConnectFour) SetPlayerTokens(token0, token1 Token) error {
	if c4.phase == PhasePlayable || c4.phase == PhaseOver {
		return fmt.Errorf("%w: cannot set player tokens in phase %s", ErrWrongPhase, c4.phase)
	}
	if !token0.Valid() || !token1.Valid() {
		return fmt.Errorf("%w: both players need a token", ErrInvalidTokens)
	}
	if token0 == token1 {
		return fmt.Errorf("%w: players cannot share %s", ErrInvalidTokens, token0)
	}

	c4.players = [2]Token{token0, token1}
	c4.phase = PhaseReady
	return nil
}

func (c4 *ConnectFour) PlayerToken(player int) (Token, error) {
	if !validPlayer(player) {
		return NoToken, fmt.Errorf("%w: %d", ErrInvalidPlayer, player)
	}
	if c4.phase == PhaseNew {
		return NoToken, fmt.Errorf("%w: player tokens are not set", ErrWrongPhase)
	}
	return c4.players[player], nil
}

func (c4 *ConnectFour) NumDropped() (int, error) {
	if err := c4.requireDrops(); err != nil {
		return 0, err
	}
	return c4.numDropped, nil
}

func (c4 *ConnectFour) LastDropRow() (int, error) {
	if err := c4.requireDrops(); err != nil {
		return -1, err
	}
	return c4.lastDropRow, nil
}

func (c4 *ConnectFour) LastDropCol() (int, error) {
	if err := c4.requireDrops(); err != nil {
		return -1, err
	}
	return c4.lastDropCol, nil
}

func (c4 *ConnectFour) Phase() GamePhase {
	return c4.phase
}

// DropToken drops player's token into col. Turn order is not enforced.
func (c4 *ConnectFour) DropToken(player, col int) error {
	if col < 0 || col >= c4.grid.cols {
		return fmt.Errorf("%w: %d is outside [0, %d)", ErrInvalidColumn, col, c4.grid.cols)
	}
	if !validPlayer(player) {
		return fmt.Errorf("%w: %d", ErrInvalidPlayer, player)
	}
	if c4.phase != PhaseReady && c4.phase != PhasePlayable {
		return fmt.Errorf("%w: cannot drop in phase %s", ErrWrongPhase, c4.phase)
	}

	row := c4.grid.lowestEmptyRow(col)
	if row < 0 {
		return fmt.Errorf("%w: column %d", ErrColumnFull, col)
	}

	c4.grid.set(row, col, Occupied(c4.players[player]))
	c4.lastDropRow = row
	c4.lastDropCol = col
	c4.numDropped++
	c4.phase = PhasePlayable
	return nil
}

// IsGridFull reports whether every cell is occupied.
func (c4 *ConnectFour) IsGridFull() bool {
	return c4.grid.full()
}

// OverrideLastDrop stores row and col verbatim as the last-drop position. The
// values are not checked against the grid, not even for bounds; description
// loaders use it after replaying a grid. Nothing in the engine reads the
// position back except the LastDrop accessors.
func (c4 *ConnectFour) OverrideLastDrop(row, col int) {
	c4.lastDropRow = row
	c4.lastDropCol = col
}

func (c4 *ConnectFour) requireDrops() error {
	if c4.phase == PhaseNew || c4.phase == PhaseReady {
		return fmt.Errorf("%w: no tokens have been dropped yet", ErrWrongPhase)
	}
	return nil
}

func validPlayer(player int) bool {
	return player == Player0 || player == Player1
}
