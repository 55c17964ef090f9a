package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kuchikomi-lab/kuchikomi/models"
	"github.com/kuchikomi-lab/kuchikomi/scraper"
	"github.com/kuchikomi-lab/kuchikomi/store"
	"github.com/kuchikomi-lab/kuchikomi/task"
)

// ScrapeURL returns a handler for POST /api/v1/scrape/url. It registers a
// task and hands the scrape to the worker pool; clients poll the task.
func ScrapeURL(sc *scraper.Scraper, reg *task.Registry, pool *task.Pool, st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.URLScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, err)
			return
		}
		req.Defaults()

		t := reg.Create()
		pool.Submit(func() {
			runTask(t, st, func(sink scraper.ProgressFunc) (*models.ScrapeResult, error) {
				return sc.Run(context.Background(), req.URL, req.Count, sink)
			})
		})

		c.JSON(http.StatusOK, models.TaskResponse{TaskID: t.ID, Status: task.StatusProcessing})
	}
}

// ScrapeSearch returns a handler for POST /api/v1/scrape/search.
func ScrapeSearch(sc *scraper.Scraper, reg *task.Registry, pool *task.Pool, st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SearchScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, err)
			return
		}
		req.Defaults()

		t := reg.Create()
		pool.Submit(func() {
			runTask(t, st, func(sink scraper.ProgressFunc) (*models.ScrapeResult, error) {
				return sc.RunSearch(context.Background(), req.Query, req.Count, sink)
			})
		})

		c.JSON(http.StatusOK, models.TaskResponse{TaskID: t.ID, Status: task.StatusProcessing})
	}
}

// runTask executes one scrape invocation against a registered task,
// wiring the task itself in as the progress sink.
func runTask(t *task.Task, st *store.Store, run func(scraper.ProgressFunc) (*models.ScrapeResult, error)) {
	result, err := run(t.SetProgress)
	if err != nil {
		var scrapeErr *models.ScrapeError
		if !errors.As(err, &scrapeErr) {
			scrapeErr = models.NewScrapeError(models.ErrCodeInternal, err.Error(), err)
		}
		t.Fail(scrapeErr.ToDetail())
		slog.Error("scrape task failed", "task", t.ID, "error", err)
		return
	}

	t.Complete(result, fmt.Sprintf("完了: %d件の口コミを取得しました", len(result.Reviews)))
	slog.Info("scrape task completed", "task", t.ID, "reviews", len(result.Reviews))

	if st != nil {
		if saved, err := st.SaveResult(context.Background(), result); err != nil {
			slog.Warn("result persistence failed", "task", t.ID, "error", err)
		} else {
			slog.Debug("result persisted", "task", t.ID, "rows", saved)
		}
	}
}

func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": models.ErrorDetail{
			Code:    models.ErrCodeInvalidInput,
			Message: err.Error(),
		},
	})
}
