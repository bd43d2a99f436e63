package api

import (
	"errors"
	"net/http"

	"github.com/cerebrone-ai/video-content-creation-agent/service"

	"github.com/gin-gonic/gin"
)

// 重新生成单个镜头：POST /api/v1/regenerate-shot/:task_id
func RegenerateShot(c *gin.Context) {
	taskID := c.Param("task_id")

	var req service.RegenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	components, err := service.BeginShotRegeneration(taskID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTaskNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		case errors.Is(err, service.ErrInvalidShotOrder), errors.Is(err, service.ErrNoComponents):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"task_id":      taskID,
		"shot_order":   req.ShotOrder,
		"regenerating": components,
		"message":      "Shot regeneration started",
	})
}
