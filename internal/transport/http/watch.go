package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/connectfour/internal/service/game"
)

type SpectatorCounter interface {
	SpectatorCount(gameID string) int
}

type WatchHandler struct {
	Games      *game.Service
	Spectators SpectatorCounter
}

func NewWatchHandler(games *game.Service, spectators SpectatorCounter) *WatchHandler {
	return &WatchHandler{Games: games, Spectators: spectators}
}

type liveGameResponse struct {
	game.Summary
	SpectatorCount int `json:"spectatorCount"`
}

// GetLiveGames lists every hosted game that is not over.
func (h *WatchHandler) GetLiveGames(c *gin.Context) {
	active := h.Games.ListActive()

	response := make([]liveGameResponse, 0, len(active))
	for _, g := range active {
		item := liveGameResponse{Summary: g}
		if h.Spectators != nil {
			item.SpectatorCount = h.Spectators.SpectatorCount(g.ID)
		}
		response = append(response, item)
	}

	c.JSON(http.StatusOK, response)
}
