package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheckHandler provides a simple health check endpoint
func (api *API) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "vibe-rank",
		"cache":     api.cache != nil,
		"timestamp": fmt.Sprintf("%d", time.Now().Unix()),
	})
}
