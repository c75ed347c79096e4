package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/iamasit07/connectfour/internal/service/game"
)

// SnapshotSource looks up the current state of a hosted game.
type SnapshotSource interface {
	Get(ctx context.Context, id string) (game.Snapshot, error)
}

type Handler struct {
	ConnManager *ConnectionManager
	Games       SnapshotSource
	Upgrader    websocket.Upgrader
	logger      *zap.Logger
}

func NewHandler(cm *ConnectionManager, games SnapshotSource, allowedOrigins []string, logger *zap.Logger) *Handler {
	return &Handler{
		ConnManager: cm,
		Games:       games,
		Upgrader: websocket.Upgrader{
			CheckOrigin:     originChecker(allowedOrigins),
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger.Named("ws"),
	}
}

// originChecker allows requests without an Origin header and those from an
// allowed origin.
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

// HandleSpectator upgrades GET /ws/games/:id into a read-only feed of
// snapshots for that game.
func (h *Handler) HandleSpectator(c *gin.Context) {
	gameID := c.Param("id")
	snap, err := h.Games.Get(c.Request.Context(), gameID)
	if err != nil {
		if errors.Is(err, game.ErrGameNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	conn, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", zap.String("game_id", gameID), zap.Error(err))
		return
	}

	s := &spectator{gameID: gameID, conn: conn, send: make(chan []byte, sendBuffer)}
	initial, err := json.Marshal(Message{Type: "snapshot", Game: snap})
	if err == nil {
		s.send <- initial
	}
	h.ConnManager.add(s)
	h.logger.Debug("spectator joined", zap.String("game_id", gameID))

	go h.writePump(s)
	h.readPump(s)
}

func (h *Handler) writePump(s *spectator) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-s.send:
			if !ok {
				return
			}
			if err := s.write(websocket.TextMessage, data); err != nil {
				h.ConnManager.remove(s)
				return
			}
		case <-ticker.C:
			if err := s.write(websocket.PingMessage, nil); err != nil {
				h.ConnManager.remove(s)
				return
			}
		}
	}
}

// readPump keeps the read deadline moving and discards anything the client
// sends; the feed never accepts moves.
func (h *Handler) readPump(s *spectator) {
	defer func() {
		h.ConnManager.remove(s)
		h.logger.Debug("spectator left", zap.String("game_id", s.gameID))
	}()

	s.conn.SetReadLimit(512)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("spectator disconnected unexpectedly", zap.String("game_id", s.gameID), zap.Error(err))
			}
			return
		}
	}
}
