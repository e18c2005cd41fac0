package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"paper-archive/catalog"
	"paper-archive/models"
	"paper-archive/services"
)

const (
	homeRecentLimit    = 6
	homeFavoritesLimit = 4
)

func setupHomeRoutes(router *gin.Engine, cat *catalog.Catalog, favs *services.FavoritesStore) {
	router.GET("/", func(c *gin.Context) {
		papers := cat.All()

		// Solange die Favoriten nicht geladen sind, ist die Anzahl unbekannt
		var favoriteCount *int
		if favs.IsLoaded() {
			n := services.CountFavorites(papers, favs)
			favoriteCount = &n
		}

		c.JSON(http.StatusOK, gin.H{
			"stats": gin.H{
				"papers":        len(papers),
				"favorites":     favoriteCount,
				"organizations": len(cat.OrganizationCounts()),
				"domains":       len(cat.Domains()),
			},
			"organizations": orgCountsWithColor(cat),
			"domains":       cat.Domains(),
			"recent":        services.RecentPapers(papers, homeRecentLimit),
			"favorites":     services.FavoritePapers(papers, favs, homeFavoritesLimit),
		})
	})

	router.GET("/timeline", func(c *gin.Context) {
		groups := services.GroupByMonth(cat.All())
		if groups == nil {
			groups = []services.MonthGroup{}
		}
		c.JSON(http.StatusOK, gin.H{"months": groups, "count": len(groups)})
	})

	router.GET("/organizations", func(c *gin.Context) {
		c.JSON(http.StatusOK, orgCountsWithColor(cat))
	})

	router.GET("/domains", func(c *gin.Context) {
		c.JSON(http.StatusOK, cat.Domains())
	})
}

type orgCountView struct {
	catalog.OrgCount
	Color string `json:"color"`
}

func orgCountsWithColor(cat *catalog.Catalog) []orgCountView {
	counts := cat.OrganizationCounts()
	out := make([]orgCountView, 0, len(counts))
	for _, oc := range counts {
		out = append(out, orgCountView{OrgCount: oc, Color: services.OrgColor(oc.Organization)})
	}
	return out
}

func setupPaperRoutes(router *gin.Engine, cat *catalog.Catalog, favs *services.FavoritesStore, log *zap.Logger) {
	rg := router.Group("/papers")

	rg.GET("", func(c *gin.Context) {
		filter, err := parsePaperFilter(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		papers := services.FilterPapers(cat.All(), filter, favs)
		papersListedCounter.Inc()

		resp := gin.H{
			"papers":        papers,
			"count":         len(papers),
			"active_filter": filter,
		}
		if len(papers) == 0 {
			resp["empty_message"] = services.EmptyMessage(filter)
		}
		c.JSON(http.StatusOK, resp)
	})

	rg.GET("/:id", func(c *gin.Context) {
		id := c.Param("id")
		paper, err := cat.ByID(id)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "paper not found"})
				return
			}
			log.Error("Paper lookup failed", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
			return
		}

		bibliography, warnings := services.BuildBibliography(paper, func(ref string) (models.Paper, bool) {
			p, err := cat.ByID(ref)
			return p, err == nil
		})
		if len(warnings) > 0 {
			log.Debug("Paper references unknown ids", zap.String("id", id), zap.Strings("warnings", warnings))
		}
		if bibliography == nil {
			bibliography = []services.ReferenceItem{}
		}

		c.JSON(http.StatusOK, gin.H{
			"paper":        paper,
			"color":        services.OrgColor(paper.Organization),
			"is_favorite":  favs.IsFavorite(paper.ID),
			"built_upon":   cat.Resolve(paper.BuildUpon),
			"related":      cat.Resolve(paper.RelatedPapers),
			"reference":    services.FormatReference(paper),
			"bibliography": bibliography,
		})
	})
}

// parsePaperFilter liest org, domain, tag und favorites aus der Query.
func parsePaperFilter(c *gin.Context) (services.PaperFilter, error) {
	var f services.PaperFilter
	if org := c.Query("org"); org != "" {
		f.Organization = models.Organization(org)
		if !f.Organization.Valid() {
			return f, errors.New("unknown organization")
		}
	}
	if domain := c.Query("domain"); domain != "" {
		f.Domain = models.Domain(domain)
		if !f.Domain.Valid() {
			return f, errors.New("unknown domain")
		}
	}
	f.Tag = c.Query("tag")
	if raw := c.Query("favorites"); raw != "" {
		on, err := strconv.ParseBool(raw)
		if err != nil {
			return f, errors.New("favorites must be a boolean")
		}
		f.FavoritesOnly = on
	}
	return f, nil
}
