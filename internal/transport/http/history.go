package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/connectfour/internal/repository/postgres"
)

// ArchiveReader reads finished games.
type ArchiveReader interface {
	GetGame(ctx context.Context, gameID string) (*postgres.FinishedGame, error)
	ListRecent(ctx context.Context, limit int) ([]postgres.FinishedGame, error)
}

type HistoryHandler struct {
	GameRepo ArchiveReader
}

// NewHistoryHandler accepts a nil repo; every request then answers 503.
func NewHistoryHandler(gameRepo ArchiveReader) *HistoryHandler {
	return &HistoryHandler{GameRepo: gameRepo}
}

func (h *HistoryHandler) GetHistory(c *gin.Context) {
	if h.GameRepo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history is not available"})
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
			return
		}
		limit = n
	}

	games, err := h.GameRepo.ListRecent(c.Request.Context(), limit)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
		return
	}
	if games == nil {
		games = []postgres.FinishedGame{}
	}
	c.JSON(http.StatusOK, games)
}

func (h *HistoryHandler) GetGameDetails(c *gin.Context) {
	if h.GameRepo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history is not available"})
		return
	}

	g, err := h.GameRepo.GetGame(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch game"})
		return
	}
	if g == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}
	c.JSON(http.StatusOK, g)
}
