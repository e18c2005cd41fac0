package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"paper-archive/catalog"
	"paper-archive/config"
	"paper-archive/models"
	"paper-archive/observability"
	"paper-archive/providers/arxiv"
	"paper-archive/services"
	"paper-archive/storage"
)

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

// requestLogger schreibt pro Anfrage eine strukturierte Zeile.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func newLogger(mode string) (*zap.Logger, error) {
	if mode == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// newRouter verdrahtet alle Routen auf einem frischen Engine.
func newRouter(cfg *config.Config, cat *catalog.Catalog, graph models.Graph, favs *services.FavoritesStore, logging *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logging.With(zap.String("component", "http"))))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Origins(),
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "X-API-KEY"},
		AllowCredentials: true,
	}))
	if cfg.TracingEnabled {
		router.Use(otelgin.Middleware(observability.ServiceName))
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":           "ok",
			"papers":           cat.Len(),
			"favorites_loaded": favs.IsLoaded(),
		})
	})

	router.Use(apiKeyAuthMiddleware(cfg))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	setupHomeRoutes(router, cat, favs)
	setupPaperRoutes(router, cat, favs, logging)
	setupGraphRoutes(router, cat, graph, logging)
	setupFavoriteRoutes(router, cat, favs, logging)
	return router
}

func exportToNeo4j(ctx context.Context, cfg *config.Config, cat *catalog.Catalog, graph models.Graph, logging *zap.Logger) {
	exporter, err := storage.NewNeo4jExporter(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, cfg.Neo4jDatabase, logging)
	if err != nil {
		logging.Error("Neo4j not reachable, skipping graph export", zap.Error(err))
		return
	}
	defer exporter.Close(ctx)
	if err := exporter.ExportGraph(ctx, cat.All(), graph); err != nil {
		logging.Error("Neo4j graph export failed", zap.Error(err))
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config load error: %v", err)
	}

	logging, err := newLogger(cfg.LogMode)
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	shutdownTracing, err := observability.InitTracing(cfg.TracingEnabled, os.Stdout, logging)
	if err != nil {
		logging.Fatal("Tracing setup failed", zap.Error(err))
	}
	defer shutdownTracing(context.Background())

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logging.Fatal("Failed to load paper catalog", zap.Error(err))
	}
	for _, ref := range cat.DanglingReferences() {
		logging.Debug("Dangling paper reference", zap.String("paper", ref.PaperID),
			zap.String("field", ref.Field), zap.String("target", ref.Target))
	}
	graph := services.BuildGraph(cat.All())
	logging.Info("Paper catalog loaded", zap.Int("papers", cat.Len()), zap.Int("links", len(graph.Links)))

	ctx := context.Background()
	kv, closeKV, err := storage.OpenKV(ctx, cfg)
	if err != nil {
		logging.Fatal("Favorites backend setup failed", zap.String("backend", cfg.FavoritesBackend), zap.Error(err))
	}
	defer closeKV()
	if cfg.FavoritesBackend == config.BackendMemory {
		logging.Warn("Favorites are kept in memory only and are lost on restart")
	}
	logging.Info("Favorites backend ready", zap.String("backend", cfg.FavoritesBackend))

	favs := services.NewFavoritesStore(kv, logging)
	loadCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	favs.Load(loadCtx)
	cancel()

	if cfg.Neo4jURI != "" {
		go exportToNeo4j(ctx, cfg, cat, graph, logging)
	}

	// Setup Cron
	if cfg.ImportEnabled {
		importService := services.NewImportService(cfg, cat, arxiv.NewFetcher(cfg.ArxivBaseURL, logging), logging)
		cronScheduler := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
		_, err := cronScheduler.AddFunc(cfg.ImportCron, func() {
			logging.Info("Running scheduled arXiv import...")
			res, err := importService.Run(context.Background())
			if err != nil {
				logging.Error("Cron job failed", zap.Error(err))
				return
			}
			logging.Info("Cron job completed", zap.Int("fetched", res.Fetched), zap.Int("new_papers", len(res.Added)))
			importCandidatesCounter.Add(float64(len(res.Added)))
		})
		if err != nil {
			logging.Fatal("Invalid IMPORT_CRON", zap.String("cron", cfg.ImportCron), zap.Error(err))
		}
		cronScheduler.Start()
		defer cronScheduler.Stop()
	}

	gin.SetMode(cfg.GinMode)
	router := newRouter(cfg, cat, graph, favs, logging)

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}
