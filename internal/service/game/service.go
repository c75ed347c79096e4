package game

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iamasit07/connectfour/internal/description"
	"github.com/iamasit07/connectfour/internal/domain"
	"github.com/iamasit07/connectfour/internal/events"
	"github.com/iamasit07/connectfour/internal/repository/postgres"
	"github.com/iamasit07/connectfour/pkg/auth"
	"github.com/iamasit07/connectfour/pkg/uid"
)

var ErrGameNotFound = errors.New("game not found")

// GameRepository archives finished games.
type GameRepository interface {
	SaveGame(ctx context.Context, g postgres.FinishedGame) error
}

// CacheRepository stores game snapshots so they survive a restart.
type CacheRepository interface {
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event, gameID string, payload map[string]any)
}

// Notifier pushes every state change to spectators.
type Notifier interface {
	Notify(gameID string, snapshot Snapshot)
}

type Options struct {
	Repo        GameRepository
	Cache       CacheRepository
	Events      EventPublisher
	Notifier    Notifier
	Tokens      *auth.TokenIssuer
	Logger      *zap.Logger
	DefaultRows int
	DefaultCols int
	SnapshotTTL time.Duration
}

// Service hosts many games in memory, each driven by whoever holds its
// control token.
type Service struct {
	mu    sync.RWMutex
	games map[string]*HostedGame

	repo        GameRepository
	cache       CacheRepository
	events      EventPublisher
	notifier    Notifier
	tokens      *auth.TokenIssuer
	logger      *zap.Logger
	defaultRows int
	defaultCols int
	snapshotTTL time.Duration
	now         func() time.Time

	saves sync.WaitGroup
}

func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		games:       make(map[string]*HostedGame),
		repo:        opts.Repo,
		cache:       opts.Cache,
		events:      opts.Events,
		notifier:    opts.Notifier,
		tokens:      opts.Tokens,
		logger:      logger.Named("session"),
		defaultRows: opts.DefaultRows,
		defaultCols: opts.DefaultCols,
		snapshotTTL: opts.SnapshotTTL,
		now:         time.Now,
	}
	if s.defaultRows == 0 {
		s.defaultRows = domain.MinRows
	}
	if s.defaultCols == 0 {
		s.defaultCols = domain.MinCols
	}
	return s
}

// Created is returned for new and imported games.
type Created struct {
	Game         Snapshot `json:"game"`
	ControlToken string   `json:"controlToken"`
}

// DropResult describes one accepted drop.
type DropResult struct {
	Row         int      `json:"row"`
	Col         int      `json:"col"`
	ConnectFour bool     `json:"connectFour"`
	Game        Snapshot `json:"game"`
}

// Create hosts a new game. Zero rows or cols fall back to the configured defaults.
func (s *Service) Create(ctx context.Context, rows, cols int) (*Created, error) {
	if rows == 0 {
		rows = s.defaultRows
	}
	if cols == 0 {
		cols = s.defaultCols
	}
	engine, err := domain.NewConnectFour(rows, cols)
	if err != nil {
		return nil, err
	}

	hg, token, err := s.host(engine)
	if err != nil {
		return nil, err
	}

	hg.mu.Lock()
	c := s.captureLocked(hg)
	hg.mu.Unlock()

	hg.inOrder(c.version, func() {
		s.send(ctx, hg.ID, c)
		s.publish(ctx, events.GameCreated, hg.ID, map[string]any{"rows": rows, "cols": cols})
	})
	return &Created{Game: c.snap, ControlToken: token}, nil
}

// Import hosts the game a description describes.
func (s *Service) Import(ctx context.Context, d *description.Description) (*Created, error) {
	engine, err := d.Load()
	if err != nil {
		return nil, err
	}
	hg, token, err := s.host(engine)
	if err != nil {
		return nil, err
	}

	hg.mu.Lock()
	record := hg.markFinishedLocked(s.now())
	c := s.captureLocked(hg)
	hg.mu.Unlock()

	hg.inOrder(c.version, func() {
		s.send(ctx, hg.ID, c)
		s.publish(ctx, events.GameCreated, hg.ID, map[string]any{
			"rows": d.Rows, "cols": d.Cols, "imported": true,
		})
		if record != nil {
			s.finish(ctx, *record, c.snap)
		}
	})
	return &Created{Game: c.snap, ControlToken: token}, nil
}

func (s *Service) host(engine *domain.ConnectFour) (*HostedGame, string, error) {
	id := uid.GenerateGameID()
	var token string
	if s.tokens != nil {
		var err error
		if token, err = s.tokens.GenerateControlToken(id); err != nil {
			return nil, "", err
		}
	}

	hg := newHostedGame(id, engine, s.now())
	hg.connectFour = engine.Phase() == domain.PhaseOver && engine.WinningLine() != nil

	s.mu.Lock()
	s.games[id] = hg
	s.mu.Unlock()

	s.logger.Info("created game", zap.String("game_id", id), zap.Int("rows", engine.Rows()), zap.Int("cols", engine.Cols()))
	return hg, token, nil
}

// Authorize checks that token controls game id.
func (s *Service) Authorize(token, id string) error {
	if s.tokens == nil {
		return nil
	}
	_, err := s.tokens.ValidateControlToken(token, id)
	return err
}

func (s *Service) SetPlayerTokens(ctx context.Context, id string, token0, token1 domain.Token) (Snapshot, error) {
	hg, err := s.load(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}

	hg.mu.Lock()
	if err := hg.engine.SetPlayerTokens(token0, token1); err != nil {
		hg.mu.Unlock()
		return Snapshot{}, err
	}
	hg.updatedAt = s.now()
	c := s.captureLocked(hg)
	hg.mu.Unlock()

	hg.inOrder(c.version, func() {
		s.send(ctx, id, c)
		s.publish(ctx, events.TokensSet, id, map[string]any{"token0": token0.String(), "token1": token1.String()})
	})
	return c.snap, nil
}

// Drop drops player's token into col and runs win detection once.
func (s *Service) Drop(ctx context.Context, id string, player, col int) (DropResult, error) {
	hg, err := s.load(ctx, id)
	if err != nil {
		return DropResult{}, err
	}

	hg.mu.Lock()
	if err := hg.engine.DropToken(player, col); err != nil {
		hg.mu.Unlock()
		return DropResult{}, err
	}
	hg.connectFour = hg.engine.IsLastDropConnectFour()
	now := s.now()
	hg.updatedAt = now
	record := hg.markFinishedLocked(now)
	c := s.captureLocked(hg)
	hg.mu.Unlock()

	result := DropResult{
		Row:         c.snap.LastDrop.Row,
		Col:         c.snap.LastDrop.Col,
		ConnectFour: c.snap.ConnectFour,
		Game:        c.snap,
	}

	hg.inOrder(c.version, func() {
		s.send(ctx, id, c)
		s.publish(ctx, events.TokenDropped, id, map[string]any{
			"player": player, "row": result.Row, "column": result.Col, "connectFour": result.ConnectFour,
		})
		if record != nil {
			s.finish(ctx, *record, c.snap)
		}
	})
	return result, nil
}

func (s *Service) Get(ctx context.Context, id string) (Snapshot, error) {
	hg, err := s.load(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	hg.mu.Lock()
	defer hg.mu.Unlock()
	return hg.snapshotLocked(), nil
}

// WithGame runs fn against the engine while holding the game lock. fn must
// only read.
func (s *Service) WithGame(ctx context.Context, id string, fn func(g *domain.ConnectFour) error) error {
	hg, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	hg.mu.Lock()
	defer hg.mu.Unlock()
	return fn(hg.engine)
}

// ListActive returns every hosted game that is not over, most recently updated first.
func (s *Service) ListActive() []Summary {
	s.mu.RLock()
	hosted := make([]*HostedGame, 0, len(s.games))
	for _, hg := range s.games {
		hosted = append(hosted, hg)
	}
	s.mu.RUnlock()

	out := make([]Summary, 0, len(hosted))
	for _, hg := range hosted {
		hg.mu.Lock()
		sum := hg.summaryLocked()
		hg.mu.Unlock()
		if sum.Phase != domain.PhaseOver {
			out = append(out, sum)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out
}

// Remove stops hosting id and drops its cached snapshot.
func (s *Service) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	_, ok := s.games[id]
	delete(s.games, id)
	s.mu.Unlock()

	if s.cache != nil {
		if err := s.cache.Del(ctx, id); err != nil {
			s.logger.Warn("failed to drop cached snapshot", zap.String("game_id", id), zap.Error(err))
		}
	}
	if !ok {
		return ErrGameNotFound
	}
	s.logger.Info("removed game", zap.String("game_id", id))
	return nil
}

// CleanupIdle forgets in-memory games untouched for longer than idle. Cached
// snapshots expire on their own.
func (s *Service) CleanupIdle(idle time.Duration) int {
	cutoff := s.now().Add(-idle)

	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for id, hg := range s.games {
		hg.mu.Lock()
		stale := hg.updatedAt.Before(cutoff)
		hg.mu.Unlock()
		if stale {
			delete(s.games, id)
			count++
		}
	}
	if count > 0 {
		s.logger.Info("memory cleanup: removed idle games", zap.Int("count", count))
	}
	return count
}

// Wait blocks until pending archive writes finish.
func (s *Service) Wait() {
	s.saves.Wait()
}

func (s *Service) lookup(id string) (*HostedGame, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hg, ok := s.games[id]
	return hg, ok
}

// load finds id in memory or rehydrates it from the snapshot cache.
func (s *Service) load(ctx context.Context, id string) (*HostedGame, error) {
	if hg, ok := s.lookup(id); ok {
		return hg, nil
	}
	if s.cache == nil {
		return nil, ErrGameNotFound
	}

	hg, err := s.restore(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.games[id]; ok {
		return existing, nil
	}
	s.games[id] = hg
	s.logger.Info("restored game from cache", zap.String("game_id", id))
	return hg, nil
}

// change is one accepted state change, captured under the game lock and sent
// out after it is released.
type change struct {
	version uint64
	snap    Snapshot
	cached  string
}

// captureLocked numbers the change just made to hg; caller holds hg.mu.
func (s *Service) captureLocked(hg *HostedGame) change {
	hg.version++
	c := change{version: hg.version, snap: hg.snapshotLocked()}
	if s.cache != nil {
		entry, err := cacheEntryLocked(hg)
		if err != nil {
			s.logger.Warn("failed to encode snapshot", zap.String("game_id", hg.ID), zap.Error(err))
		} else {
			c.cached = entry
		}
	}
	return c
}

// send caches the change and pushes it to spectators.
func (s *Service) send(ctx context.Context, id string, c change) {
	if s.cache != nil && c.cached != "" {
		if err := s.cache.Set(ctx, id, c.cached, s.snapshotTTL); err != nil {
			s.logger.Warn("failed to cache snapshot", zap.String("game_id", id), zap.Error(err))
		}
	}
	if s.notifier != nil {
		s.notifier.Notify(id, c.snap)
	}
}

// finish archives the game in the background and announces the result.
func (s *Service) finish(ctx context.Context, record postgres.FinishedGame, snap Snapshot) {
	payload := map[string]any{
		"outcome":    record.Outcome,
		"numDropped": record.NumDropped,
	}
	if record.WinnerToken != "" {
		payload["winnerToken"] = record.WinnerToken
		payload["winner"] = *snap.Winner
	}
	s.publish(ctx, events.GameOver, record.GameID, payload)
	s.logger.Info("game over", zap.String("game_id", record.GameID), zap.String("outcome", record.Outcome))

	if s.repo == nil {
		return
	}
	s.saves.Add(1)
	go func() {
		defer s.saves.Done()
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := s.repo.SaveGame(saveCtx, record); err != nil {
			s.logger.Error("error saving game", zap.String("game_id", record.GameID), zap.Error(err))
			return
		}
		s.logger.Debug("game saved", zap.String("game_id", record.GameID))
	}()
}

func (s *Service) publish(ctx context.Context, event, id string, payload map[string]any) {
	if s.events != nil {
		s.events.Publish(ctx, event, id, payload)
	}
}

// ErrorKind names the domain error class of err for logs and responses.
func ErrorKind(err error) string {
	var de domain.Error
	if errors.As(err, &de) {
		return string(de)
	}
	if errors.Is(err, ErrGameNotFound) {
		return ErrGameNotFound.Error()
	}
	return fmt.Sprintf("%T", err)
}
