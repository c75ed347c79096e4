package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Outcomes recorded for a finished game.
const (
	OutcomeConnectFour = "connect_four"
	OutcomeFullGrid    = "full_grid"
)

// FinishedGame is one archived game. Description holds the final grid in the
// text description format.
type FinishedGame struct {
	GameID      string    `json:"gameId"`
	Rows        int       `json:"rows"`
	Cols        int       `json:"cols"`
	Token0      string    `json:"token0"`
	Token1      string    `json:"token1"`
	WinnerToken string    `json:"winnerToken,omitempty"`
	Outcome     string    `json:"outcome"`
	NumDropped  int       `json:"numDropped"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	FinishedAt  time.Time `json:"finishedAt"`
}

type GameRepo struct {
	DB *sql.DB
}

func NewGameRepo(db *sql.DB) *GameRepo {
	return &GameRepo{DB: db}
}

// SaveGame upserts a finished game.
func (r *GameRepo) SaveGame(ctx context.Context, g FinishedGame) error {
	var winner sql.NullString
	if g.WinnerToken != "" {
		winner = sql.NullString{String: g.WinnerToken, Valid: true}
	}

	query := `
	INSERT INTO finished_game (game_id, grid_rows, grid_cols, token0, token1, winner_token, outcome, num_dropped, description, created_at, finished_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (game_id) DO UPDATE SET
		winner_token = EXCLUDED.winner_token,
		outcome = EXCLUDED.outcome,
		num_dropped = EXCLUDED.num_dropped,
		description = EXCLUDED.description,
		finished_at = EXCLUDED.finished_at;
	`

	_, err := r.DB.ExecContext(ctx, query, g.GameID, g.Rows, g.Cols, g.Token0, g.Token1, winner,
		g.Outcome, g.NumDropped, g.Description, g.CreatedAt, g.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert game %s: %w", g.GameID, err)
	}
	return nil
}

const selectColumns = `game_id, grid_rows, grid_cols, token0, token1, winner_token, outcome, num_dropped, description, created_at, finished_at`

// GetGame returns nil, nil when no game has the id.
func (r *GameRepo) GetGame(ctx context.Context, gameID string) (*FinishedGame, error) {
	query := `SELECT ` + selectColumns + ` FROM finished_game WHERE game_id = $1;`

	g, err := scanGame(r.DB.QueryRowContext(ctx, query, gameID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game by ID: %w", err)
	}
	return g, nil
}

// ListRecent returns the most recently finished games first.
func (r *GameRepo) ListRecent(ctx context.Context, limit int) ([]FinishedGame, error) {
	query := `SELECT ` + selectColumns + ` FROM finished_game ORDER BY finished_at DESC LIMIT $1;`

	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query game history: %w", err)
	}
	defer rows.Close()

	games := []FinishedGame{}
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game row: %w", err)
		}
		games = append(games, *g)
	}
	return games, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (*FinishedGame, error) {
	var g FinishedGame
	var winner sql.NullString
	err := row.Scan(
		&g.GameID,
		&g.Rows,
		&g.Cols,
		&g.Token0,
		&g.Token1,
		&winner,
		&g.Outcome,
		&g.NumDropped,
		&g.Description,
		&g.CreatedAt,
		&g.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	if winner.Valid {
		g.WinnerToken = winner.String
	}
	return &g, nil
}
