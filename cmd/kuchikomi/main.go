package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kuchikomi-lab/kuchikomi/api"
	"github.com/kuchikomi-lab/kuchikomi/config"
	"github.com/kuchikomi-lab/kuchikomi/scraper"
	"github.com/kuchikomi-lab/kuchikomi/store"
	"github.com/kuchikomi-lab/kuchikomi/task"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("kuchikomi starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"maxWorkers", cfg.Tasks.MaxWorkers,
	)

	// ── 3. Load selector catalog ────────────────────────────────────
	catalog, err := scraper.LoadCatalog(cfg.Scraper.SelectorsPath)
	if err != nil {
		slog.Error("failed to load selector catalog", "error", err)
		os.Exit(1)
	}

	// ── 4. Open review store (optional) ─────────────────────────────
	var st *store.Store
	if cfg.Store.DBPath != "" {
		st, err = store.Open(cfg.Store.DBPath)
		if err != nil {
			slog.Error("failed to open review store", "error", err, "path", cfg.Store.DBPath)
			os.Exit(1)
		}
		defer st.Close()
		slog.Info("review store opened", "path", cfg.Store.DBPath)
	}

	// ── 5. Initialise scraper, task registry and worker pool ────────
	sc := scraper.New(cfg.Browser, cfg.Scraper, catalog)
	reg := task.NewRegistry(cfg.Tasks.TTL)
	pool := task.NewPool(cfg.Tasks.MaxWorkers, 0)

	// ── 6. Setup router ─────────────────────────────────────────────
	router := api.NewRouter(sc, reg, pool, st, cfg)

	// ── 7. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 8. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete. Running scrape
	// tasks are abandoned; clients re-poll after restart.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("kuchikomi stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
