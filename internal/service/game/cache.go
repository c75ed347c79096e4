package game

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/iamasit07/connectfour/internal/description"
	"github.com/iamasit07/connectfour/internal/domain"
	rediscache "github.com/iamasit07/connectfour/internal/repository/redis"
)

// cachedGame is what goes into the snapshot cache. Games still in the New
// phase have no description and are rebuilt from their dimensions.
type cachedGame struct {
	Rows        int       `json:"rows"`
	Cols        int       `json:"cols"`
	Description string    `json:"description,omitempty"`
	ConnectFour bool      `json:"connectFour"`
	Archived    bool      `json:"archived"`
	Version     uint64    `json:"version"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	FinishedAt  time.Time `json:"finishedAt,omitzero"`
}

// cacheEntryLocked encodes hg for the snapshot cache; caller holds hg.mu.
func cacheEntryLocked(hg *HostedGame) (string, error) {
	entry := cachedGame{
		Rows:        hg.engine.Rows(),
		Cols:        hg.engine.Cols(),
		ConnectFour: hg.connectFour,
		Archived:    hg.archived,
		Version:     hg.version,
		CreatedAt:   hg.CreatedAt,
		UpdatedAt:   hg.updatedAt,
		FinishedAt:  hg.finishedAt,
	}
	if d, err := description.Describe(hg.engine); err == nil {
		entry.Description = d.String()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *Service) restore(ctx context.Context, id string) (*HostedGame, error) {
	raw, err := s.cache.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, rediscache.ErrCacheMiss) {
			s.logger.Warn("snapshot cache read failed", zap.String("game_id", id), zap.Error(err))
		}
		return nil, ErrGameNotFound
	}

	var entry cachedGame
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		s.logger.Warn("discarding corrupt snapshot", zap.String("game_id", id), zap.Error(err))
		return nil, ErrGameNotFound
	}

	var engine *domain.ConnectFour
	if entry.Description == "" {
		engine, err = domain.NewConnectFour(entry.Rows, entry.Cols)
	} else {
		var d *description.Description
		if d, err = description.ParseString(entry.Description); err == nil {
			engine, err = d.Load()
		}
	}
	if err != nil {
		s.logger.Warn("discarding unloadable snapshot", zap.String("game_id", id), zap.Error(err))
		return nil, ErrGameNotFound
	}

	hg := newHostedGame(id, engine, entry.CreatedAt)
	hg.updatedAt = entry.UpdatedAt
	hg.finishedAt = entry.FinishedAt
	hg.connectFour = entry.ConnectFour
	hg.archived = entry.Archived
	hg.version = entry.Version
	hg.sent = entry.Version
	return hg, nil
}
