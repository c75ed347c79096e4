package game

import (
	"sync"
	"time"

	"github.com/iamasit07/connectfour/internal/description"
	"github.com/iamasit07/connectfour/internal/domain"
	"github.com/iamasit07/connectfour/internal/repository/postgres"
)

// HostedGame is one engine owned by the service. Every engine call goes
// through mu.
type HostedGame struct {
	ID        string
	CreatedAt time.Time

	mu          sync.Mutex
	engine      *domain.ConnectFour
	updatedAt   time.Time
	finishedAt  time.Time
	connectFour bool
	archived    bool
	version     uint64

	// sendMu guards sent. Changes are sent out after mu is released, one at a
	// time and in version order.
	sendMu   sync.Mutex
	sendDone *sync.Cond
	sent     uint64
}

func newHostedGame(id string, engine *domain.ConnectFour, now time.Time) *HostedGame {
	hg := &HostedGame{
		ID:        id,
		CreatedAt: now,
		engine:    engine,
		updatedAt: now,
	}
	hg.sendDone = sync.NewCond(&hg.sendMu)
	return hg
}

// inOrder waits until every change before version has been sent, then runs
// send. It must be called exactly once per version, without holding mu.
func (hg *HostedGame) inOrder(version uint64, send func()) {
	hg.sendMu.Lock()
	for hg.sent+1 != version {
		hg.sendDone.Wait()
	}
	hg.sendMu.Unlock()

	send()

	hg.sendMu.Lock()
	hg.sent = version
	hg.sendDone.Broadcast()
	hg.sendMu.Unlock()
}

// Snapshot is the JSON view of a hosted game.
type Snapshot struct {
	ID          string            `json:"id"`
	Version     uint64            `json:"version"`
	Rows        int               `json:"rows"`
	Cols        int               `json:"cols"`
	Tokens      [2]domain.Token   `json:"tokens"`
	Phase       domain.GamePhase  `json:"phase"`
	NumDropped  int               `json:"numDropped"`
	LastDrop    *domain.Position  `json:"lastDrop,omitempty"`
	Cells       [][]string        `json:"cells"`
	ConnectFour bool              `json:"connectFour"`
	WinningLine []domain.Position `json:"winningLine,omitempty"`
	Winner      *int              `json:"winner,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
	FinishedAt  *time.Time        `json:"finishedAt,omitempty"`
}

// Summary is the short listing entry for a live game.
type Summary struct {
	ID         string           `json:"id"`
	Rows       int              `json:"rows"`
	Cols       int              `json:"cols"`
	Phase      domain.GamePhase `json:"phase"`
	NumDropped int              `json:"numDropped"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// snapshotLocked builds the view; caller holds hg.mu.
func (hg *HostedGame) snapshotLocked() Snapshot {
	g := hg.engine
	snap := Snapshot{
		ID:          hg.ID,
		Version:     hg.version,
		Rows:        g.Rows(),
		Cols:        g.Cols(),
		Phase:       g.Phase(),
		ConnectFour: hg.connectFour,
		CreatedAt:   hg.CreatedAt,
		UpdatedAt:   hg.updatedAt,
	}

	if t0, err := g.PlayerToken(domain.Player0); err == nil {
		t1, _ := g.PlayerToken(domain.Player1)
		snap.Tokens = [2]domain.Token{t0, t1}
	}
	if n, err := g.NumDropped(); err == nil {
		snap.NumDropped = n
		row, _ := g.LastDropRow()
		col, _ := g.LastDropCol()
		snap.LastDrop = &domain.Position{Row: row, Col: col}
	}

	snap.Cells = make([][]string, g.Rows())
	for i := range snap.Cells {
		row := g.Rows() - 1 - i
		snap.Cells[i] = make([]string, g.Cols())
		for col := range snap.Cells[i] {
			cell, _ := g.TokenAt(row, col)
			snap.Cells[i][col] = cell.String()
		}
	}

	if hg.connectFour {
		snap.WinningLine = g.WinningLine()
		if len(snap.WinningLine) > 0 {
			first := snap.WinningLine[0]
			cell, _ := g.TokenAt(first.Row, first.Col)
			tok, _ := cell.Token()
			winner := domain.Player0
			if tok == snap.Tokens[domain.Player1] {
				winner = domain.Player1
			}
			snap.Winner = &winner
		}
	}

	if !hg.finishedAt.IsZero() {
		finished := hg.finishedAt
		snap.FinishedAt = &finished
	}
	return snap
}

func (hg *HostedGame) summaryLocked() Summary {
	n, _ := hg.engine.NumDropped()
	return Summary{
		ID:         hg.ID,
		Rows:       hg.engine.Rows(),
		Cols:       hg.engine.Cols(),
		Phase:      hg.engine.Phase(),
		NumDropped: n,
		UpdatedAt:  hg.updatedAt,
	}
}

// markFinishedLocked records the end of the game the first time it is seen
// and returns the archive record, or nil if the game was already archived.
func (hg *HostedGame) markFinishedLocked(now time.Time) *postgres.FinishedGame {
	if hg.engine.Phase() != domain.PhaseOver || hg.archived {
		return nil
	}
	hg.archived = true
	hg.finishedAt = now

	snap := hg.snapshotLocked()
	record := &postgres.FinishedGame{
		GameID:     hg.ID,
		Rows:       snap.Rows,
		Cols:       snap.Cols,
		Token0:     snap.Tokens[0].String(),
		Token1:     snap.Tokens[1].String(),
		Outcome:    postgres.OutcomeFullGrid,
		NumDropped: snap.NumDropped,
		CreatedAt:  hg.CreatedAt,
		FinishedAt: now,
	}
	if snap.Winner != nil {
		record.Outcome = postgres.OutcomeConnectFour
		record.WinnerToken = snap.Tokens[*snap.Winner].String()
	}
	if d, err := description.Describe(hg.engine); err == nil {
		record.Description = d.String()
	}
	return record
}
