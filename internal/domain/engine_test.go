package domain

import (
	"errors"
	"fmt"
	"testing"
)

// newReadyGame returns a game with RED for player 0 and BLUE for player 1.
func newReadyGame(t *testing.T, rows, cols int) *ConnectFour {
	t.Helper()
	g, err := NewConnectFour(rows, cols)
	if err != nil {
		t.Fatalf("NewConnectFour(%d, %d) failed: %v", rows, cols, err)
	}
	if err := g.SetPlayerTokens(Red, Blue); err != nil {
		t.Fatalf("SetPlayerTokens failed: %v", err)
	}
	return g
}

// dropAll applies a sequence of {player, col} drops.
func dropAll(t *testing.T, g *ConnectFour, drops [][2]int) {
	t.Helper()
	for i, d := range drops {
		if err := g.DropToken(d[0], d[1]); err != nil {
			t.Fatalf("drop %d (%v) failed: %v", i, d, err)
		}
	}
}

func TestNewConnectFourValidDimensions(t *testing.T) {
	for rows := MinRows; rows <= MaxRows; rows++ {
		for cols := MinCols; cols <= MaxCols; cols++ {
			t.Run(fmt.Sprintf("%dx%d", rows, cols), func(t *testing.T) {
				g, err := NewConnectFour(rows, cols)
				if err != nil {
					t.Fatalf("expected success, got %v", err)
				}
				if g.Rows() != rows || g.Cols() != cols {
					t.Fatalf("expected %dx%d, got %dx%d", rows, cols, g.Rows(), g.Cols())
				}
				if g.Phase() != PhaseNew {
					t.Fatalf("expected phase NEW, got %s", g.Phase())
				}
				for r := 0; r < rows; r++ {
					for c := 0; c < cols; c++ {
						cell, err := g.TokenAt(r, c)
						if err != nil {
							t.Fatalf("TokenAt(%d, %d) failed: %v", r, c, err)
						}
						if !cell.IsEmpty() {
							t.Fatalf("expected empty cell at (%d, %d), got %s", r, c, cell)
						}
					}
				}
			})
		}
	}
}

func TestNewConnectFourInvalidDimensions(t *testing.T) {
	cases := []struct {
		rows, cols int
	}{
		{5, 7},
		{10, 7},
		{6, 6},
		{6, 10},
		{0, 0},
		{-1, 8},
		{9, 100},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%dx%d", tc.rows, tc.cols), func(t *testing.T) {
			g, err := NewConnectFour(tc.rows, tc.cols)
			if !errors.Is(err, ErrInvalidDimensions) {
				t.Fatalf("expected ErrInvalidDimensions, got %v", err)
			}
			if g != nil {
				t.Fatalf("expected no game on failure")
			}
		})
	}
}

func TestSetPlayerTokens(t *testing.T) {
	g, _ := NewConnectFour(6, 7)

	if err := g.SetPlayerTokens(Red, Red); !errors.Is(err, ErrInvalidTokens) {
		t.Fatalf("expected ErrInvalidTokens for equal tokens, got %v", err)
	}
	if g.Phase() != PhaseNew {
		t.Fatalf("phase changed after rejected assignment: %s", g.Phase())
	}
	if err := g.SetPlayerTokens(NoToken, Blue); !errors.Is(err, ErrInvalidTokens) {
		t.Fatalf("expected ErrInvalidTokens for missing token, got %v", err)
	}

	if err := g.SetPlayerTokens(Red, Blue); err != nil {
		t.Fatalf("SetPlayerTokens failed: %v", err)
	}
	if g.Phase() != PhaseReady {
		t.Fatalf("expected READY, got %s", g.Phase())
	}

	// reassignment is allowed until the first drop
	if err := g.SetPlayerTokens(Green, Yellow); err != nil {
		t.Fatalf("reassignment failed: %v", err)
	}
	if g.Phase() != PhaseReady {
		t.Fatalf("expected READY after reassignment, got %s", g.Phase())
	}

	if err := g.SetPlayerTokens(Green, Green); !errors.Is(err, ErrInvalidTokens) {
		t.Fatalf("expected ErrInvalidTokens, got %v", err)
	}
	if tok, _ := g.PlayerToken(0); tok != Green {
		t.Fatalf("player 0 token changed by rejected call: %s", tok)
	}
	if tok, _ := g.PlayerToken(1); tok != Yellow {
		t.Fatalf("player 1 token changed by rejected call: %s", tok)
	}

	dropAll(t, g, [][2]int{{0, 0}})
	if err := g.SetPlayerTokens(Red, Blue); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("expected ErrWrongPhase once playable, got %v", err)
	}
}

func TestPlayerToken(t *testing.T) {
	g, _ := NewConnectFour(6, 7)

	if _, err := g.PlayerToken(2); !errors.Is(err, ErrInvalidPlayer) {
		t.Fatalf("expected ErrInvalidPlayer, got %v", err)
	}
	if _, err := g.PlayerToken(0); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("expected ErrWrongPhase while NEW, got %v", err)
	}

	g.SetPlayerTokens(Red, Blue)
	for player, want := range []Token{Red, Blue} {
		got, err := g.PlayerToken(player)
		if err != nil {
			t.Fatalf("PlayerToken(%d) failed: %v", player, err)
		}
		if got != want {
			t.Fatalf("PlayerToken(%d) = %s, want %s", player, got, want)
		}
	}
	if _, err := g.PlayerToken(-1); !errors.Is(err, ErrInvalidPlayer) {
		t.Fatalf("expected ErrInvalidPlayer, got %v", err)
	}
}

func TestDropCountersRequireDrop(t *testing.T) {
	g, _ := NewConnectFour(6, 7)

	check := func(label string) {
		if _, err := g.NumDropped(); !errors.Is(err, ErrWrongPhase) {
			t.Fatalf("%s: NumDropped expected ErrWrongPhase, got %v", label, err)
		}
		if _, err := g.LastDropRow(); !errors.Is(err, ErrWrongPhase) {
			t.Fatalf("%s: LastDropRow expected ErrWrongPhase, got %v", label, err)
		}
		if _, err := g.LastDropCol(); !errors.Is(err, ErrWrongPhase) {
			t.Fatalf("%s: LastDropCol expected ErrWrongPhase, got %v", label, err)
		}
	}
	check("new")
	g.SetPlayerTokens(Red, Blue)
	check("ready")

	dropAll(t, g, [][2]int{{1, 5}})
	if n, err := g.NumDropped(); err != nil || n != 1 {
		t.Fatalf("NumDropped = %d, %v; want 1", n, err)
	}
	if r, _ := g.LastDropRow(); r != 0 {
		t.Fatalf("LastDropRow = %d, want 0", r)
	}
	if c, _ := g.LastDropCol(); c != 5 {
		t.Fatalf("LastDropCol = %d, want 5", c)
	}
}

func TestDropTokenGravity(t *testing.T) {
	g := newReadyGame(t, 6, 7)

	for h := 0; h < 6; h++ {
		player := h % 2
		if err := g.DropToken(player, 4); err != nil {
			t.Fatalf("drop %d failed: %v", h, err)
		}
		if r, _ := g.LastDropRow(); r != h {
			t.Fatalf("expected token at row %d, landed at %d", h, r)
		}
		cell, _ := g.TokenAt(h, 4)
		want, _ := g.PlayerToken(player)
		if got, ok := cell.Token(); !ok || got != want {
			t.Fatalf("cell (%d, 4) = %v, want %s", h, cell, want)
		}
	}
	if g.Phase() != PhasePlayable {
		t.Fatalf("expected PLAYABLE, got %s", g.Phase())
	}
}

func TestDropTokenColumnFull(t *testing.T) {
	g := newReadyGame(t, 6, 7)
	for i := 0; i < 6; i++ {
		dropAll(t, g, [][2]int{{i % 2, 0}})
	}

	before := snapshotCells(g)
	err := g.DropToken(0, 0)
	if !errors.Is(err, ErrColumnFull) {
		t.Fatalf("expected ErrColumnFull, got %v", err)
	}
	if n, _ := g.NumDropped(); n != 6 {
		t.Fatalf("drop counter changed to %d", n)
	}
	if r, _ := g.LastDropRow(); r != 5 {
		t.Fatalf("last drop row changed to %d", r)
	}
	after := snapshotCells(g)
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("grid changed at index %d", i)
		}
	}
}

func TestDropTokenErrors(t *testing.T) {
	g, _ := NewConnectFour(6, 7)

	if err := g.DropToken(0, 0); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("expected ErrWrongPhase before tokens, got %v", err)
	}
	// column is checked before player
	if err := g.DropToken(5, 99); !errors.Is(err, ErrInvalidColumn) {
		t.Fatalf("expected ErrInvalidColumn, got %v", err)
	}

	g.SetPlayerTokens(Red, Blue)
	cases := []struct {
		name   string
		player int
		col    int
		want   error
	}{
		{"negative column", 0, -1, ErrInvalidColumn},
		{"column past edge", 0, 7, ErrInvalidColumn},
		{"player two", 2, 3, ErrInvalidPlayer},
		{"negative player", -1, 3, ErrInvalidPlayer},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := g.DropToken(tc.player, tc.col); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if g.Phase() != PhaseReady {
				t.Fatalf("rejected drop changed phase to %s", g.Phase())
			}
		})
	}
}

func TestDropTokenDoesNotAlternateTurns(t *testing.T) {
	g := newReadyGame(t, 6, 7)
	dropAll(t, g, [][2]int{{0, 1}, {0, 1}})

	for row := 0; row < 2; row++ {
		cell, _ := g.TokenAt(row, 1)
		if tok, _ := cell.Token(); tok != Red {
			t.Fatalf("expected RED at (%d, 1), got %s", row, cell)
		}
	}
}

func TestDropAfterGameOver(t *testing.T) {
	g := newReadyGame(t, 6, 7)
	dropAll(t, g, [][2]int{{0, 0}, {0, 0}, {0, 0}, {0, 0}})
	if !g.IsLastDropConnectFour() {
		t.Fatalf("expected connect four")
	}
	if err := g.DropToken(1, 3); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("expected ErrWrongPhase after OVER, got %v", err)
	}
	if n, _ := g.NumDropped(); n != 4 {
		t.Fatalf("drop counter changed to %d", n)
	}
}

func TestTokenAtOutOfBounds(t *testing.T) {
	g, _ := NewConnectFour(7, 8)
	cases := [][2]int{{-1, 0}, {0, -1}, {7, 0}, {0, 8}, {100, 100}}
	for _, pos := range cases {
		if _, err := g.TokenAt(pos[0], pos[1]); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("TokenAt(%d, %d) expected ErrOutOfBounds, got %v", pos[0], pos[1], err)
		}
		if g.IsInBounds(pos[0], pos[1]) {
			t.Fatalf("IsInBounds(%d, %d) = true", pos[0], pos[1])
		}
	}
	if !g.IsInBounds(6, 7) || !g.IsInBounds(0, 0) {
		t.Fatalf("corners should be in bounds")
	}
}

func TestOverrideLastDrop(t *testing.T) {
	g := newReadyGame(t, 6, 7)
	dropAll(t, g, [][2]int{{0, 0}, {1, 6}})

	g.OverrideLastDrop(0, 0)
	if r, _ := g.LastDropRow(); r != 0 {
		t.Fatalf("LastDropRow = %d, want 0", r)
	}
	if c, _ := g.LastDropCol(); c != 0 {
		t.Fatalf("LastDropCol = %d, want 0", c)
	}

	// outside the grid is stored as given
	g.OverrideLastDrop(6, -1)
	if r, _ := g.LastDropRow(); r != 6 {
		t.Fatalf("LastDropRow = %d, want 6", r)
	}
	if c, _ := g.LastDropCol(); c != -1 {
		t.Fatalf("LastDropCol = %d, want -1", c)
	}
	if g.IsLastDropConnectFour() {
		t.Fatalf("unexpected connect four")
	}
	if _, err := g.TokenAt(6, -1); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds from TokenAt, got %v", err)
	}
}

func TestParseToken(t *testing.T) {
	for _, tok := range Tokens() {
		got, err := ParseToken(tok.String())
		if err != nil || got != tok {
			t.Fatalf("ParseToken(%q) = %s, %v", tok.String(), got, err)
		}
	}
	if got, err := ParseToken(" red "); err != nil || got != Red {
		t.Fatalf("ParseToken is not case-insensitive: %s, %v", got, err)
	}
	if _, err := ParseToken("MAUVE"); !errors.Is(err, ErrInvalidTokens) {
		t.Fatalf("expected ErrInvalidTokens, got %v", err)
	}
}

func TestGamePhaseText(t *testing.T) {
	for p := PhaseNew; p <= PhaseOver; p++ {
		text, _ := p.MarshalText()
		var got GamePhase
		if err := got.UnmarshalText(text); err != nil || got != p {
			t.Fatalf("UnmarshalText(%q) = %s, %v", text, got, err)
		}
	}
	var p GamePhase
	if err := p.UnmarshalText([]byte("DONE")); err == nil {
		t.Fatalf("expected an error for an unknown phase")
	}
}

func snapshotCells(g *ConnectFour) []Cell {
	out := make([]Cell, len(g.grid.cells))
	copy(out, g.grid.cells)
	return out
}
