// Package description reads and writes the plain-text game description format:
//
//	6 7 RED BLUE
//	3 3 3 3 3 3 3
//	3 3 3 3 3 3 3
//	3 3 0 3 3 3 3
//	3 3 0 3 3 3 3
//	1 3 0 3 3 3 3
//	0 1 0 1 1 3 3
//	3 2
//
// The header gives rows, cols and the two token names. The optional body lists
// rows*cols codes from the top row down (0 or 1 for a player, 3 for empty)
// followed by the row and column of the last drop, row 0 being the bottom.
package description

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/iamasit07/connectfour/internal/domain"
)

// EmptyCode marks an empty cell in the grid body.
const EmptyCode = 3

var ErrMalformed = errors.New("malformed game description")

type Description struct {
	Rows   int
	Cols   int
	Tokens [2]domain.Token
	// Grid holds the body codes, Grid[0] being the top row. Nil for a header-only description.
	Grid        [][]int
	LastDropRow int
	LastDropCol int
}

// HasGrid reports whether the description carries a grid body.
func (d *Description) HasGrid() bool {
	return d.Grid != nil
}

// Parse reads one description from r.
func Parse(r io.Reader) (*Description, error) {
	sc := newScanner(r)

	rows, err := sc.int("rows")
	if err != nil {
		return nil, err
	}
	cols, err := sc.int("cols")
	if err != nil {
		return nil, err
	}
	if rows < domain.MinRows || rows > domain.MaxRows || cols < domain.MinCols || cols > domain.MaxCols {
		return nil, fmt.Errorf("%w: %dx%d", domain.ErrInvalidDimensions, rows, cols)
	}

	d := &Description{Rows: rows, Cols: cols, LastDropRow: -1, LastDropCol: -1}
	for i := range d.Tokens {
		name, err := sc.word(fmt.Sprintf("token %d", i))
		if err != nil {
			return nil, err
		}
		tok, err := domain.ParseToken(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		d.Tokens[i] = tok
	}

	if !sc.more() {
		return d, sc.err()
	}

	d.Grid = make([][]int, rows)
	for row := 0; row < rows; row++ {
		d.Grid[row] = make([]int, cols)
		for col := 0; col < cols; col++ {
			code, err := sc.int(fmt.Sprintf("cell %d,%d", row, col))
			if err != nil {
				return nil, err
			}
			if code != domain.Player0 && code != domain.Player1 && code != EmptyCode {
				return nil, fmt.Errorf("%w: cell %d,%d has code %d", ErrMalformed, row, col, code)
			}
			d.Grid[row][col] = code
		}
	}

	if d.LastDropRow, err = sc.int("last drop row"); err != nil {
		return nil, err
	}
	if d.LastDropCol, err = sc.int("last drop col"); err != nil {
		return nil, err
	}
	if sc.more() {
		return nil, fmt.Errorf("%w: trailing data after last drop", ErrMalformed)
	}
	return d, sc.err()
}

// ParseString is Parse over a string.
func ParseString(s string) (*Description, error) {
	return Parse(strings.NewReader(s))
}

// LoadFile parses the file at path and loads the game it describes.
func LoadFile(path string) (*domain.ConnectFour, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open description: %w", err)
	}
	defer f.Close()

	d, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return d.Load()
}

// Load builds the described game. Every occupied cell is replayed as a drop,
// bottom row first, then the declared last drop replaces the replayed one and
// win detection runs once. The description is trusted: a grid with floating
// tokens or a last drop that does not match the grid loads without error.
func (d *Description) Load() (*domain.ConnectFour, error) {
	g, err := domain.NewConnectFour(d.Rows, d.Cols)
	if err != nil {
		return nil, err
	}
	if err := g.SetPlayerTokens(d.Tokens[0], d.Tokens[1]); err != nil {
		return nil, err
	}
	if !d.HasGrid() {
		return g, nil
	}

	for row := d.Rows - 1; row >= 0; row-- {
		for col := 0; col < d.Cols; col++ {
			code := d.Grid[row][col]
			if code == EmptyCode {
				continue
			}
			if err := g.DropToken(code, col); err != nil {
				return nil, fmt.Errorf("replay cell %d,%d: %w", row, col, err)
			}
		}
	}

	g.OverrideLastDrop(d.LastDropRow, d.LastDropCol)
	g.IsLastDropConnectFour()
	return g, nil
}

// Describe captures g as a description. Games still in PhaseNew have no
// tokens and cannot be described.
func Describe(g *domain.ConnectFour) (*Description, error) {
	t0, err := g.PlayerToken(domain.Player0)
	if err != nil {
		return nil, fmt.Errorf("describe game: %w", err)
	}
	t1, _ := g.PlayerToken(domain.Player1)

	d := &Description{
		Rows:        g.Rows(),
		Cols:        g.Cols(),
		Tokens:      [2]domain.Token{t0, t1},
		LastDropRow: -1,
		LastDropCol: -1,
	}
	if g.Phase() == domain.PhaseReady {
		return d, nil
	}

	d.Grid = make([][]int, d.Rows)
	for i := range d.Grid {
		d.Grid[i] = make([]int, d.Cols)
		row := d.Rows - 1 - i
		for col := 0; col < d.Cols; col++ {
			cell, _ := g.TokenAt(row, col)
			tok, ok := cell.Token()
			switch {
			case !ok:
				d.Grid[i][col] = EmptyCode
			case tok == t0:
				d.Grid[i][col] = domain.Player0
			default:
				d.Grid[i][col] = domain.Player1
			}
		}
	}
	d.LastDropRow, _ = g.LastDropRow()
	d.LastDropCol, _ = g.LastDropCol()
	return d, nil
}

// WriteTo writes d in the text format Parse reads.
func (d *Description) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d %d %s %s\n", d.Rows, d.Cols, d.Tokens[0], d.Tokens[1])
	if d.HasGrid() {
		for _, row := range d.Grid {
			for col, code := range row {
				if col > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(strconv.Itoa(code))
			}
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%d %d\n", d.LastDropRow, d.LastDropCol)
	}
	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

func (d *Description) String() string {
	var sb strings.Builder
	d.WriteTo(&sb)
	return sb.String()
}

// scanner splits the input on whitespace.
type scanner struct {
	s       *bufio.Scanner
	pending string
	has     bool
}

func newScanner(r io.Reader) *scanner {
	s := bufio.NewScanner(r)
	s.Split(bufio.ScanWords)
	return &scanner{s: s}
}

func (sc *scanner) more() bool {
	if sc.has {
		return true
	}
	if sc.s.Scan() {
		sc.pending, sc.has = sc.s.Text(), true
	}
	return sc.has
}

func (sc *scanner) word(what string) (string, error) {
	if !sc.more() {
		if err := sc.err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("%w: missing %s", ErrMalformed, what)
	}
	sc.has = false
	return sc.pending, nil
}

func (sc *scanner) int(what string) (int, error) {
	w, err := sc.word(what)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(w)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", ErrMalformed, what, w)
	}
	return n, nil
}

func (sc *scanner) err() error {
	if err := sc.s.Err(); err != nil {
		return fmt.Errorf("read description: %w", err)
	}
	return nil
}
