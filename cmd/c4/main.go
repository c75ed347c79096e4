// Command c4 plays and inspects Connect-Four games in the terminal.
//
//	c4 show FILE
//	c4 play [-rows N] [-cols M] [-tokens RED,BLUE]
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/iamasit07/connectfour/internal/description"
	"github.com/iamasit07/connectfour/internal/domain"
	"github.com/iamasit07/connectfour/internal/render"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}

	var err error
	switch args[0] {
	case "show":
		err = show(args[1:], stdout)
	case "play":
		err = play(args[1:], stdin, stdout, stderr)
	case "-h", "--help", "help":
		usage(stdout)
		return 0
	default:
		usage(stderr)
		return 2
	}
	if err != nil {
		fmt.Fprintf(stderr, "c4: %v\n", err)
		return 1
	}
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage:")
	fmt.Fprintln(w, "  c4 show FILE")
	fmt.Fprintln(w, "  c4 play [-rows N] [-cols M] [-tokens RED,BLUE]")
}

func show(args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("show takes exactly one file")
	}
	g, err := description.LoadFile(args[0])
	if err != nil {
		return err
	}
	if err := render.Grid(stdout, g, render.Options{HighlightWin: true, Legend: true}); err != nil {
		return err
	}
	fmt.Fprintln(stdout, status(g))
	return nil
}

func play(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	fs.SetOutput(stderr)
	rows := fs.Int("rows", domain.MinRows, "number of rows")
	cols := fs.Int("cols", domain.MinCols, "number of columns")
	tokens := fs.String("tokens", "RED,YELLOW", "player tokens, comma separated")
	if err := fs.Parse(args); err != nil {
		return err
	}

	g, err := domain.NewConnectFour(*rows, *cols)
	if err != nil {
		return err
	}
	t0, t1, err := parseTokens(*tokens)
	if err != nil {
		return err
	}
	if err := g.SetPlayerTokens(t0, t1); err != nil {
		return err
	}

	in := bufio.NewScanner(stdin)
	player := domain.Player0
	for g.Phase() != domain.PhaseOver {
		render.Grid(stdout, g, render.Options{})
		tok, _ := g.PlayerToken(player)
		fmt.Fprintf(stdout, "player %d (%s), column? ", player, tok)

		if !in.Scan() {
			fmt.Fprintln(stdout)
			return in.Err()
		}
		line := strings.TrimSpace(in.Text())
		if line == "q" || line == "quit" {
			return nil
		}
		col, err := strconv.Atoi(line)
		if err != nil {
			fmt.Fprintf(stdout, "not a column: %q\n", line)
			continue
		}
		if err := g.DropToken(player, col); err != nil {
			fmt.Fprintf(stdout, "%v\n", err)
			continue
		}
		g.IsLastDropConnectFour()
		player = 1 - player
	}

	render.Grid(stdout, g, render.Options{HighlightWin: true, Legend: true})
	fmt.Fprintln(stdout, status(g))
	return nil
}

func parseTokens(s string) (domain.Token, domain.Token, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return domain.NoToken, domain.NoToken, fmt.Errorf("%w: want two tokens, got %q", domain.ErrInvalidTokens, s)
	}
	t0, err := domain.ParseToken(strings.TrimSpace(parts[0]))
	if err != nil {
		return domain.NoToken, domain.NoToken, err
	}
	t1, err := domain.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return domain.NoToken, domain.NoToken, err
	}
	return t0, t1, nil
}

// status describes the phase and, once over, the result.
func status(g *domain.ConnectFour) string {
	if g.Phase() != domain.PhaseOver {
		n, _ := g.NumDropped()
		return fmt.Sprintf("%s, %d dropped", g.Phase(), n)
	}

	line := g.WinningLine()
	if len(line) == 0 {
		return "OVER: grid full, no connect four"
	}
	cell, _ := g.TokenAt(line[0].Row, line[0].Col)
	tok, _ := cell.Token()
	player := domain.Player0
	if t1, _ := g.PlayerToken(domain.Player1); t1 == tok {
		player = domain.Player1
	}
	return fmt.Sprintf("OVER: player %d (%s) connects four", player, tok)
}
