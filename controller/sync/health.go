package sync

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fastboard/dto"
)

func HealthController(router *gin.Engine) {
	router.GET("/api/health", func(c *gin.Context) {
		Health(c)
	})
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{
		Success:   true,
		Status:    "running",
		Timestamp: time.Now().UTC(),
	})
}
