package handler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kuchikomi-lab/kuchikomi/export"
	"github.com/kuchikomi-lab/kuchikomi/models"
	"github.com/kuchikomi-lab/kuchikomi/scraper"
	"github.com/kuchikomi-lab/kuchikomi/store"
	"github.com/kuchikomi-lab/kuchikomi/task"
)

// maxBatchRows bounds one uploaded CSV. Each row is a full browser
// session, so a misjudged upload must not queue hours of work.
const maxBatchRows = 100

// ScrapeBatch returns a handler for POST /api/v1/scrape/batch. The
// request is multipart: a "file" CSV of places plus an optional "count"
// field. One task covers the whole batch; rows run sequentially with
// rowDelay between them so the target host never sees a burst.
func ScrapeBatch(sc *scraper.Scraper, reg *task.Registry, pool *task.Pool, st *store.Store, rowDelay time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			respondBadRequest(c, err)
			return
		}

		count := models.DefaultReviewCount
		if v := c.PostForm("count"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= models.MaxReviewCount {
				count = n
			}
		}

		file, err := fileHeader.Open()
		if err != nil {
			respondBadRequest(c, err)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			respondBadRequest(c, err)
			return
		}

		rows, err := export.DecodeRows(data)
		if err != nil {
			respondBadRequest(c, err)
			return
		}
		if len(rows) == 0 {
			respondBadRequest(c, fmt.Errorf("CSV file has no data rows"))
			return
		}
		if len(rows) > maxBatchRows {
			respondBadRequest(c, fmt.Errorf("maximum %d rows per batch", maxBatchRows))
			return
		}

		t := reg.Create()
		t.SetProgress(fmt.Sprintf("処理を開始: %d店舗", len(rows)), 0)
		pool.Submit(func() {
			runBatch(sc, st, t, rows, count, rowDelay)
		})

		c.JSON(http.StatusOK, models.TaskResponse{TaskID: t.ID, Status: task.StatusProcessing})
	}
}

// runBatch scrapes every row of an uploaded CSV under one task. Rows that
// fail or carry neither a link nor a name are skipped; the batch itself
// only fails if nothing at all could be scraped.
func runBatch(sc *scraper.Scraper, st *store.Store, t *task.Task, rows []export.Row, count int, rowDelay time.Duration) {
	var all []models.Review
	total := len(rows)

	for idx, row := range rows {
		base := idx * 100 / total
		t.SetProgress(fmt.Sprintf("処理中: %d/%d 店舗", idx+1, total), base)

		// Scale this row's pipeline progress into its slice of the
		// batch percentage, pinned below 100 until the batch ends.
		rowSink := func(_ string, percent int) {
			scaled := base + percent/total
			if scaled > 99 {
				scaled = 99
			}
			t.SetProgress(fmt.Sprintf("処理中: %d/%d 店舗", idx+1, total), scaled)
		}

		var result *models.ScrapeResult
		var err error
		if target := export.TargetURL(row); target != "" {
			result, err = sc.Run(context.Background(), target, count, rowSink)
		} else if query := export.SearchQuery(row); query != "" {
			result, err = sc.RunSearch(context.Background(), query, count, rowSink)
		} else {
			slog.Warn("batch row has no target", "task", t.ID, "row", idx)
			continue
		}
		if err != nil {
			slog.Warn("batch row failed", "task", t.ID, "row", idx, "error", err)
			continue
		}

		for _, r := range result.Reviews {
			r.PlaceName = result.Place.Name
			all = append(all, r)
		}

		if st != nil {
			if _, err := st.SaveResult(context.Background(), result); err != nil {
				slog.Warn("batch row persistence failed", "task", t.ID, "row", idx, "error", err)
			}
		}

		if idx < total-1 && rowDelay > 0 {
			time.Sleep(rowDelay)
		}
	}

	t.Complete(
		&models.ScrapeResult{Reviews: all, Place: models.UnknownPlace()},
		fmt.Sprintf("完了: %d件の口コミを取得しました（%d店舗）", len(all), total),
	)
	slog.Info("batch task completed", "task", t.ID, "rows", total, "reviews", len(all))
}
