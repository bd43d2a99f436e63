package routers

import (
	"github.com/cerebrone-ai/video-content-creation-agent/routers/api"

	"github.com/gin-gonic/gin"
)

func InitRouter() *gin.Engine {
	r := gin.Default()
	v1 := r.Group("/api/v1")
	{
		v1.POST("/generate-video", api.GenerateVideo)
		v1.GET("/video-status/:task_id", api.GetVideoStatus)
		v1.GET("/video-tasks", api.ListVideoTasks)
		v1.POST("/video-tasks/bulk-status", api.BulkStatus)
		v1.DELETE("/video-tasks/:task_id", api.DeleteVideoTask)
		v1.POST("/regenerate-shot/:task_id", api.RegenerateShot)
		v1.POST("/generate-single-video", api.GenerateSingleVideo)
		v1.POST("/generate-single-audio", api.GenerateSingleAudio)
		v1.GET("/single-generation-status/:task_id", api.GetSingleGenerationStatus)
		v1.POST("/generate-image", api.GenerateImage)
		v1.POST("/export-video", api.ExportVideo)
		v1.GET("/export-status/:export_id", api.GetExportStatus)
	}
	r.GET("/health", api.HealthCheck)
	r.GET("/tasks/:task_id/ws", api.TaskProgressWebSocket)
	return r
}
