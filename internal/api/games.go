package api

import (
	"net/http"

	"marketplace-api/internal/catalog"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listGames(c *gin.Context) {
	games, err := h.games.ListGames(c.Request.Context(), catalog.Filter{
		Platform: c.Query("platform"),
		Category: c.Query("category"),
		SortBy:   c.Query("sortBy"),
		Tag:      c.Query("tag"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"games": games,
		"count": len(games),
	})
}

func (h *Handler) getGame(c *gin.Context) {
	game, err := h.games.GetGame(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"game": game})
}
