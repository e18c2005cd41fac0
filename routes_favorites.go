package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"paper-archive/catalog"
	"paper-archive/services"
)

func setupFavoriteRoutes(router *gin.Engine, cat *catalog.Catalog, favs *services.FavoritesStore, log *zap.Logger) {
	rg := router.Group("/favorites")

	rg.GET("", func(c *gin.Context) {
		ids := favs.Favorites()
		c.JSON(http.StatusOK, gin.H{
			"favorites": ids,
			"count":     len(ids),
			"loaded":    favs.IsLoaded(),
		})
	})

	rg.POST("/:id/toggle", func(c *gin.Context) {
		id := c.Param("id")
		if !cat.Has(id) {
			c.JSON(http.StatusNotFound, gin.H{"error": "paper not found"})
			return
		}

		on, err := favs.Toggle(c.Request.Context(), id)
		action := "removed"
		if on {
			action = "added"
		}
		favoriteTogglesCounter.WithLabelValues(action).Inc()
		if err != nil {
			log.Error("Favorite toggle not persisted", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":    "favorites could not be saved",
				"id":       id,
				"favorite": on,
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id, "favorite": on})
	})
}
