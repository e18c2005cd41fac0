package main

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"paper-archive/catalog"
	"paper-archive/models"
	"paper-archive/services"
)

const maxRenderSize = 4096

func setupGraphRoutes(router *gin.Engine, cat *catalog.Catalog, graph models.Graph, log *zap.Logger) {
	legend := services.Legend(graph)

	router.GET("/graph", func(c *gin.Context) {
		graphRendersCounter.WithLabelValues("json").Inc()
		c.JSON(http.StatusOK, gin.H{
			"nodes":      graph.Nodes,
			"links":      graph.Links,
			"legend":     legend,
			"background": services.BackgroundColor,
		})
	})

	// Infopanel: eine Auswahl hat Vorrang vor dem Hover
	router.GET("/graph/panel", func(c *gin.Context) {
		view := services.NewGraphView(graph)
		view.Hover(c.Query("hovered"))
		if sel := c.Query("selected"); sel != "" {
			view.Click(sel)
		}
		node, ok := view.Panel()
		if !ok {
			c.Status(http.StatusNoContent)
			return
		}
		paper, err := cat.ByID(node.ID)
		if err != nil {
			log.Error("Graph node without paper", zap.String("id", node.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "inconsistent graph"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"node":  node,
			"paper": paper,
			"color": services.OrgColor(node.Organization),
			"href":  services.PaperPath(node.ID),
		})
	})

	router.GET("/graph/nodes/:id/open", func(c *gin.Context) {
		view := services.NewGraphView(graph)
		target, ok := view.Click(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "paper not found"})
			return
		}
		c.Redirect(http.StatusFound, target)
	})

	router.GET("/graph.png", func(c *gin.Context) {
		width, err := sizeParam(c, "width")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		height, err := sizeParam(c, "height")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var buf bytes.Buffer
		err = services.RenderGraphPNG(&buf, graph, services.RenderOptions{
			Width:    width,
			Height:   height,
			Hovered:  c.Query("hovered"),
			Selected: c.Query("selected"),
			Labels:   c.Query("labels") == "true",
		})
		if err != nil {
			log.Error("Graph rendering failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "rendering failed"})
			return
		}
		graphRendersCounter.WithLabelValues("png").Inc()
		c.Data(http.StatusOK, "image/png", buf.Bytes())
	})
}

// sizeParam liest eine optionale Bildgröße; 0 bedeutet Standardgröße.
func sizeParam(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > maxRenderSize {
		return 0, fmt.Errorf("%s must be between 1 and %d", name, maxRenderSize)
	}
	return n, nil
}
