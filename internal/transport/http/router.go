package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/iamasit07/connectfour/internal/service/game"
	"github.com/iamasit07/connectfour/internal/transport/http/middleware"
	"github.com/iamasit07/connectfour/internal/transport/websocket"
)

type RouterDeps struct {
	Games          *game.Service
	Archive        ArchiveReader
	Spectators     *websocket.ConnectionManager
	AllowedOrigins []string
	Logger         *zap.Logger
}

// NewRouter registers every route on a fresh gin engine.
func NewRouter(deps RouterDeps) *gin.Engine {
	gameHandler := NewGameHandler(deps.Games, deps.Spectators)
	historyHandler := NewHistoryHandler(deps.Archive)
	watchHandler := NewWatchHandler(deps.Games, deps.Spectators)
	wsHandler := websocket.NewHandler(deps.Spectators, deps.Games, deps.AllowedOrigins, deps.Logger)

	router := gin.New()
	router.Use(middleware.RequestLogger(deps.Logger), gin.Recovery())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(deps.AllowedOrigins, deps.Logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "activeGames": len(deps.Games.ListActive())})
	})

	api := router.Group("/api")
	{
		api.POST("/games", gameHandler.Create)
		api.POST("/games/import", gameHandler.Import)
		api.GET("/games", watchHandler.GetLiveGames)
		api.GET("/games/:id", gameHandler.Get)
		api.GET("/games/:id/cells/:row/:col", gameHandler.Cell)
		api.GET("/games/:id/description", gameHandler.Description)
		api.GET("/games/:id/render", gameHandler.Render)

		api.GET("/history", historyHandler.GetHistory)
		api.GET("/history/:id", historyHandler.GetGameDetails)
	}

	// Control routes need the token issued when the game was created
	control := api.Group("/games/:id")
	control.Use(middleware.ControlTokenMiddleware(deps.Games))
	{
		control.PUT("/tokens", gameHandler.SetTokens)
		control.POST("/drops", gameHandler.Drop)
		control.DELETE("", gameHandler.Delete)
	}

	router.GET("/ws/games/:id", wsHandler.HandleSpectator)

	return router
}
