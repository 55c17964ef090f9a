package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

// Health reports liveness. Not behind auth so load balancers can probe it.
func Health(version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": version,
			"uptime":  time.Since(startTime).Round(time.Second).String(),
		})
	}
}
