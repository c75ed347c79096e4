package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/connectfour/internal/description"
	"github.com/iamasit07/connectfour/internal/domain"
	"github.com/iamasit07/connectfour/internal/render"
	"github.com/iamasit07/connectfour/internal/service/game"
	"github.com/iamasit07/connectfour/pkg/fingerprint"
)

const maxDescriptionBytes = 64 << 10

// GameCloser disconnects spectators of a removed game.
type GameCloser interface {
	CloseGame(gameID string)
}

type GameHandler struct {
	Games      *game.Service
	Spectators GameCloser
}

func NewGameHandler(games *game.Service, spectators GameCloser) *GameHandler {
	return &GameHandler{Games: games, Spectators: spectators}
}

func (h *GameHandler) Create(c *gin.Context) {
	var req struct {
		Rows int `json:"rows"`
		Cols int `json:"cols"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
			return
		}
	}

	created, err := h.Games.Create(c.Request.Context(), req.Rows, req.Cols)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Import hosts a game from a plain-text description in the request body.
func (h *GameHandler) Import(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxDescriptionBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if len(body) > maxDescriptionBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Description too large"})
		return
	}

	d, err := description.Parse(bytes.NewReader(body))
	if err != nil {
		writeError(c, err)
		return
	}
	created, err := h.Games.Import(c.Request.Context(), d)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Get returns the snapshot with an ETag so pollers can ask for changes only.
func (h *GameHandler) Get(c *gin.Context) {
	snap, err := h.Games.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		writeError(c, err)
		return
	}

	etag := fingerprint.ETag(data)
	c.Header("ETag", etag)
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

func (h *GameHandler) Cell(c *gin.Context) {
	row, errRow := strconv.Atoi(c.Param("row"))
	col, errCol := strconv.Atoi(c.Param("col"))
	if errRow != nil || errCol != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "row and col must be integers"})
		return
	}

	var cell domain.Cell
	err := h.Games.WithGame(c.Request.Context(), c.Param("id"), func(g *domain.ConnectFour) error {
		var err error
		cell, err = g.TokenAt(row, col)
		return err
	})
	if err != nil {
		writeError(c, err)
		return
	}

	resp := gin.H{"row": row, "col": col, "token": nil}
	if tok, ok := cell.Token(); ok {
		resp["token"] = tok.String()
	}
	c.JSON(http.StatusOK, resp)
}

func (h *GameHandler) Description(c *gin.Context) {
	var text string
	err := h.Games.WithGame(c.Request.Context(), c.Param("id"), func(g *domain.ConnectFour) error {
		d, err := description.Describe(g)
		if err != nil {
			return err
		}
		text = d.String()
		return nil
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.String(http.StatusOK, text)
}

// Render draws the grid as text. ?highlight=true marks the winning line and
// ?legend=true lists the player tokens.
func (h *GameHandler) Render(c *gin.Context) {
	opts := render.Options{
		HighlightWin: c.Query("highlight") == "true",
		Legend:       c.Query("legend") == "true",
	}
	var buf bytes.Buffer
	err := h.Games.WithGame(c.Request.Context(), c.Param("id"), func(g *domain.ConnectFour) error {
		return render.Grid(&buf, g, opts)
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
}

func (h *GameHandler) SetTokens(c *gin.Context) {
	var req struct {
		Token0 string `json:"token0" binding:"required"`
		Token1 string `json:"token1" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token0 and token1 are required"})
		return
	}

	t0, err := domain.ParseToken(req.Token0)
	if err != nil {
		writeError(c, err)
		return
	}
	t1, err := domain.ParseToken(req.Token1)
	if err != nil {
		writeError(c, err)
		return
	}

	snap, err := h.Games.SetPlayerTokens(c.Request.Context(), c.Param("id"), t0, t1)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *GameHandler) Drop(c *gin.Context) {
	var req struct {
		Player *int `json:"player"`
		Column *int `json:"column"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Player == nil || req.Column == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "player and column are required"})
		return
	}

	result, err := h.Games.Drop(c.Request.Context(), c.Param("id"), *req.Player, *req.Column)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *GameHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.Games.Remove(c.Request.Context(), id); err != nil && !errors.Is(err, game.ErrGameNotFound) {
		writeError(c, err)
		return
	}
	if h.Spectators != nil {
		h.Spectators.CloseGame(id)
	}
	c.Status(http.StatusNoContent)
}
