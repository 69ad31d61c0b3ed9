package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"CampusFeed/internal/metrics"
)

// Deps wires use cases into the HTTP boundary.
type Deps struct {
	Feed     FeedService
	Accounts AccountService
	Catalog  CatalogService
	Metrics  *metrics.Collector
	Logger   *slog.Logger
}

type handlers struct {
	feed     FeedService
	accounts AccountService
	catalog  CatalogService
	logger   *slog.Logger
}

// NewRouter builds the gin engine with every route mounted.
func NewRouter(deps Deps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	router := gin.New()
	router.Use(requestID(logger), accessLog(logger, deps.Metrics), gin.Recovery())

	h := &handlers{
		feed:     deps.Feed,
		accounts: deps.Accounts,
		catalog:  deps.Catalog,
		logger:   logger,
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	api := router.Group("/api")
	api.GET("/news", h.listNews)
	api.POST("/news", h.addNews)
	api.POST("/inscriptions", h.register)
	api.GET("/inscriptions/:userId", h.registrations)
	api.POST("/interests", h.addInterest)
	api.GET("/suggestions/:userId", h.suggestions)

	return router
}
