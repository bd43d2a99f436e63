package api

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/cerebrone-ai/video-content-creation-agent/models"
	"github.com/cerebrone-ai/video-content-creation-agent/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ExportRequest 时间轴合成导出请求
type ExportRequest struct {
	VideoID string           `json:"video_id"`
	Tracks  models.TrackList `json:"tracks" binding:"required,min=1"`
}

// 导出视频：POST /api/v1/export-video
func ExportVideo(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	export := models.VideoExport{
		ID:      uuid.NewString(),
		VideoID: req.VideoID,
		Status:  models.ExportStatusExporting,
		Tracks:  req.Tracks,
	}

	if err := models.CreateVideoExport(&export); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "创建导出任务失败: " + err.Error()})
		return
	}

	if err := service.EnqueueExport(export.ID); err != nil {
		errStr := "failed to enqueue export task: " + err.Error()
		_ = models.UpdateVideoExportStatus(export.ID, models.ExportStatusFailed, nil, nil, &errStr)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errStr})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"export_id": export.ID,
		"status":    export.Status,
	})
}

// 导出状态查询：GET /api/v1/export-status/:export_id
func GetExportStatus(c *gin.Context) {
	exportID := c.Param("export_id")
	export, err := models.GetVideoExportByID(exportID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Export not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"export": export})
}
