package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kuchikomi-lab/kuchikomi/models"
	"github.com/kuchikomi-lab/kuchikomi/task"
)

// TaskStatus returns a handler for GET /api/v1/tasks/:id.
func TaskStatus(reg *task.Registry) gin.HandlerFunc {
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
		c.JSON(http.StatusOK, t.Snapshot())
	}
}
