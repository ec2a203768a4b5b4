package sync

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"fastboard/dto"
	"fastboard/services"
)

func SyncController(router *gin.Engine, store services.SyncStore) {
	router.GET("/api/sync", func(c *gin.Context) {
		GetSync(c, store)
	})
	router.POST("/api/sync", func(c *gin.Context) {
		PushSync(c, store)
	})
}

func GetSync(c *gin.Context, store services.SyncStore) {
	data, err := store.Load(c.Request.Context())
	if err != nil {
		log.Printf("Error reading sync data: %v", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Success: false,
			Error:   "Failed to read data",
		})
		return
	}

	c.JSON(http.StatusOK, dto.GetSyncResponse{
		Success: true,
		Data:    *data,
		Storage: store.Name(),
	})
}

func PushSync(c *gin.Context, store services.SyncStore) {
	var req dto.PushSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Success: false,
			Error:   "Missing projects or tasks",
		})
		return
	}

	lastSync, err := store.Save(c.Request.Context(), req.Projects, req.Tasks)
	if err != nil {
		log.Printf("Error saving sync data: %v", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Success: false,
			Error:   "Failed to save data",
		})
		return
	}

	log.Printf("Synced: %d projects, %d tasks", len(req.Projects), len(req.Tasks))

	c.JSON(http.StatusOK, dto.PushSyncResponse{
		Success:  true,
		Message:  "Data synced successfully",
		LastSync: lastSync,
	})
}
