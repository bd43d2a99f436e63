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

// SingleVideoRequest 单次视频生成请求
type SingleVideoRequest struct {
	Prompt   string `json:"prompt" binding:"required"`
	Language string `json:"language"`
	Duration int    `json:"duration"`
	Style    string `json:"style"`
}

// SingleAudioRequest 单次音频生成请求。is_voiceover=true 时走 TTS（需 text），
// 否则按 prompt 生成背景音乐
type SingleAudioRequest struct {
	Prompt      string `json:"prompt"`
	Language    string `json:"language"`
	IsVoiceover bool   `json:"is_voiceover"`
	Text        string `json:"text"`
}

// 单次视频生成：POST /api/v1/generate-single-video
func GenerateSingleVideo(c *gin.Context) {
	var req SingleVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task := models.SingleGenerationTask{
		ID:     uuid.NewString(),
		Type:   models.SingleTypeVideo,
		Status: models.SingleStatusGenerating,
		RequestData: models.SingleRequest{
			Prompt:   req.Prompt,
			Language: req.Language,
			Duration: req.Duration,
			Style:    req.Style,
		},
	}
	createAndEnqueueSingle(c, task)
}

// 单次音频生成：POST /api/v1/generate-single-audio
func GenerateSingleAudio(c *gin.Context) {
	var req SingleAudioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.IsVoiceover && req.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required when is_voiceover is true"})
		return
	}
	if !req.IsVoiceover && req.Prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required for music generation"})
		return
	}

	task := models.SingleGenerationTask{
		ID:     uuid.NewString(),
		Type:   models.SingleTypeAudio,
		Status: models.SingleStatusGenerating,
		RequestData: models.SingleRequest{
			Prompt:      req.Prompt,
			Language:    req.Language,
			IsVoiceover: req.IsVoiceover,
			Text:        req.Text,
		},
	}
	createAndEnqueueSingle(c, task)
}

func createAndEnqueueSingle(c *gin.Context, task models.SingleGenerationTask) {
	if err := models.CreateSingleTask(&task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "创建任务失败: " + err.Error()})
		return
	}

	if err := service.EnqueueSingleGeneration(task.ID); err != nil {
		errStr := "failed to enqueue generation task: " + err.Error()
		_ = models.UpdateSingleTaskStatus(task.ID, models.SingleStatusFailed, nil, &errStr)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errStr})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"task_id": task.ID,
		"type":    task.Type,
		"status":  task.Status,
	})
}

// 单次任务状态查询：GET /api/v1/single-generation-status/:task_id
func GetSingleGenerationStatus(c *gin.Context) {
	taskID := c.Param("task_id")
	task, err := models.GetSingleTaskByID(taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

// ImageRequest 同步生图请求
type ImageRequest struct {
	Prompt string `json:"prompt" binding:"required"`
	Style  string `json:"style"`
}

// 同步生图：POST /api/v1/generate-image
// 生图较快，直接在请求线程内完成，不走任务队列
func GenerateImage(c *gin.Context) {
	var req ImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	url, err := service.MediaClient.GenerateImage(c.Request.Context(), req.Prompt, req.Style)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"image_url": url})
}
