// Package api wires the Gin router, handlers and middleware.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/kuchikomi-lab/kuchikomi/api/handler"
	"github.com/kuchikomi-lab/kuchikomi/api/middleware"
	"github.com/kuchikomi-lab/kuchikomi/config"
	"github.com/kuchikomi-lab/kuchikomi/scraper"
	"github.com/kuchikomi-lab/kuchikomi/store"
	"github.com/kuchikomi-lab/kuchikomi/task"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(sc *scraper.Scraper, reg *task.Registry, pool *task.Pool, st *store.Store, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(Version))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Scrape
	protected.POST("/scrape/url", handler.ScrapeURL(sc, reg, pool, st))
	protected.POST("/scrape/search", handler.ScrapeSearch(sc, reg, pool, st))
	protected.POST("/scrape/batch", handler.ScrapeBatch(sc, reg, pool, st, cfg.Tasks.BatchRowDelay))

	// Tasks
	protected.GET("/tasks/:id", handler.TaskStatus(reg))
	protected.GET("/tasks/:id/download", handler.Download(reg))

	return r
}
