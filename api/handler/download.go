package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kuchikomi-lab/kuchikomi/export"
	"github.com/kuchikomi-lab/kuchikomi/models"
	"github.com/kuchikomi-lab/kuchikomi/task"
)

// Download returns a handler for GET /api/v1/tasks/:id/download, serving
// the completed task's reviews as a BOM-prefixed CSV attachment.
func Download(reg *task.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, ok := reg.Get(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeTaskNotFound,
					Message: "task not found",
				},
			})
			return
		}

		reviews, place, done := t.Result()
		if !done {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "task not completed yet",
				},
			})
			return
		}
		if len(reviews) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeEmptyResult,
					Message: "no data available",
				},
			})
			return
		}

		placeName := ""
		if place != nil {
			placeName = place.Name
		}

		var buf bytes.Buffer
		if err := export.WriteCSV(&buf, reviews, placeName); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInternal,
					Message: "csv serialization failed",
				},
			})
			return
		}

		filename := export.Filename(time.Now())
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
		c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
	}
}
