// Package render draws a game grid as text.
package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/iamasit07/connectfour/internal/domain"
)

type Options struct {
	// HighlightWin draws the winning line in upper case and every other token in lower case.
	HighlightWin bool
	// Legend appends the player token assignment below the grid.
	Legend bool
}

// Grid writes g top row first, framed, with column indices underneath:
//
//	|. . . . . . .|
//	|R B . . . . .|
//	+-------------+
//	 0 1 2 3 4 5 6
func Grid(w io.Writer, g *domain.ConnectFour, opts Options) error {
	bw := bufio.NewWriter(w)

	highlight := map[domain.Position]bool{}
	if opts.HighlightWin {
		for _, p := range g.WinningLine() {
			highlight[p] = true
		}
	}

	for row := g.Rows() - 1; row >= 0; row-- {
		bw.WriteByte('|')
		for col := 0; col < g.Cols(); col++ {
			if col > 0 {
				bw.WriteByte(' ')
			}
			cell, err := g.TokenAt(row, col)
			if err != nil {
				return err
			}
			bw.WriteRune(symbol(cell, opts.HighlightWin, highlight[domain.Position{Row: row, Col: col}]))
		}
		bw.WriteString("|\n")
	}

	bw.WriteString("+" + strings.Repeat("-", 2*g.Cols()-1) + "+\n")
	for col := 0; col < g.Cols(); col++ {
		fmt.Fprintf(bw, " %d", col)
	}
	bw.WriteByte('\n')

	if opts.Legend {
		for player := domain.Player0; player <= domain.Player1; player++ {
			tok, err := g.PlayerToken(player)
			if err != nil {
				break
			}
			fmt.Fprintf(bw, "player %d: %c %s\n", player, tok.Symbol(), tok)
		}
	}

	return bw.Flush()
}

// String renders g with default options.
func String(g *domain.ConnectFour) string {
	var sb strings.Builder
	Grid(&sb, g, Options{})
	return sb.String()
}

func symbol(cell domain.Cell, highlighting, winning bool) rune {
	tok, ok := cell.Token()
	if !ok {
		return '.'
	}
	s := tok.Symbol()
	if highlighting && !winning {
		return unicode.ToLower(s)
	}
	return s
}
