package api

import (
	"database/sql"
	"errors"
	"log"
	"net/http"

	"github.com/cerebrone-ai/video-content-creation-agent/models"
	"github.com/cerebrone-ai/video-content-creation-agent/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// getVideoTask 任务读取入口，测试时可替换
var getVideoTask = models.GetVideoTaskByID

// GenerateVideoRequest 创建主视频任务请求
type GenerateVideoRequest struct {
	ProjectTitle       string `json:"project_title" binding:"required"`
	ProjectDescription string `json:"project_description" binding:"required"`
	TargetAudience     string `json:"target_audience"`
	Duration           int    `json:"duration" binding:"required,gte=5,lte=600"`
	Category           string `json:"category"`
	Language           string `json:"language" binding:"required"`
	Style              string `json:"style" binding:"required,oneof=realistic cartoonish anime doodle watercolor pixel_art oil_painting comic_book"`
}

// 创建视频生成任务：POST /api/v1/generate-video
// 描述提炼在请求线程内同步完成（失败静默回退原始描述），之后入队后台生成
func GenerateVideo(c *gin.Context) {
	var req GenerateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	brief := models.ProjectData{
		ProjectTitle:       req.ProjectTitle,
		ProjectDescription: req.ProjectDescription,
		TargetAudience:     req.TargetAudience,
		Duration:           req.Duration,
		Category:           req.Category,
		Language:           req.Language,
		Style:              req.Style,
	}

	if service.LLMClient != nil {
		refined := service.RefineDescription(c.Request.Context(), service.LLMClient, req.ProjectDescription)
		if refined != req.ProjectDescription {
			brief.RefinedDescription = refined
		}
	}

	task := models.VideoTask{
		ID:          uuid.NewString(),
		Status:      models.TaskStatusQueued,
		Progress:    models.ProgressQueued,
		ProjectData: brief,
		Shots:       models.ShotList{},
	}

	if err := models.CreateVideoTask(&task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "创建任务失败: " + err.Error()})
		return
	}

	if err := service.EnqueueGenerateVideo(task.ID); err != nil {
		log.Printf("[%s] 入队失败: %v", task.ID, err)
		errStr := "failed to enqueue generation task: " + err.Error()
		_ = models.UpdateVideoTaskStatus(task.ID, models.TaskStatusFailed, nil, nil, nil, &errStr)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errStr})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"task_id": task.ID,
		"status":  task.Status,
		"message": "Video generation task created",
	})
}

// 查询任务状态：GET /api/v1/video-status/:task_id
func GetVideoStatus(c *gin.Context) {
	taskID := c.Param("task_id")
	task, err := getVideoTask(taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// worker 存活状态仅作诊断参考，权威状态以 task.Status 为准
	workerStatus := "COMPLETED"
	if service.Jobs.Running(taskID) {
		workerStatus = "RUNNING"
	}

	c.JSON(http.StatusOK, gin.H{
		"task":          task,
		"worker_status": workerStatus,
	})
}

// 任务列表：GET /api/v1/video-tasks
func ListVideoTasks(c *gin.Context) {
	tasks, err := models.ListVideoTasks()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if tasks == nil {
		tasks = []models.VideoTask{}
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks, "count": len(tasks)})
}

// BulkStatusRequest 批量状态查询请求
type BulkStatusRequest struct {
	TaskIDs []string `json:"task_ids" binding:"required,min=1"`
}

// 批量状态查询：POST /api/v1/video-tasks/bulk-status
// 先查 Redis 缓存，未命中回源数据库并回填；单条缺失不影响其余条目
func BulkStatus(c *gin.Context) {
	var req BulkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	statuses := make(map[string]interface{}, len(req.TaskIDs))

	for _, id := range req.TaskIDs {
		if summary, ok := service.Cache.Get(ctx, id); ok {
			statuses[id] = summary
			continue
		}

		task, err := getVideoTask(id)
		if err != nil {
			// 缺记录和数据库故障要区分上报
			if errors.Is(err, sql.ErrNoRows) {
				statuses[id] = gin.H{"error": "Task not found"}
			} else {
				statuses[id] = gin.H{"error": err.Error()}
			}
			continue
		}
		summary := task.Summary()
		service.Cache.Put(ctx, summary)
		statuses[id] = summary
	}

	c.JSON(http.StatusOK, gin.H{"statuses": statuses})
}

// 删除任务：DELETE /api/v1/video-tasks/:task_id
func DeleteVideoTask(c *gin.Context) {
	taskID := c.Param("task_id")
	if err := models.DeleteVideoTaskByID(taskID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	service.Cache.Delete(c.Request.Context(), taskID)
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted", "task_id": taskID})
}
