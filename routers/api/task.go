package api

import (
	"net/http"
	"time"

	"github.com/cerebrone-ai/video-content-creation-agent/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// 任务进度 WebSocket 推送。以数据库为唯一来源：先推送当前状态，
// 然后每秒轮询一次，状态或进度变化时推送，任务到达终态后关闭连接。
func TaskProgressWebSocket(c *gin.Context) {
	taskID := c.Param("task_id")
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "WebSocket升级失败"})
		return
	}
	defer conn.Close()

	t, err := models.GetVideoTaskByID(taskID)
	if err != nil {
		_ = conn.WriteJSON(map[string]interface{}{"error": "task not found: " + err.Error()})
		return
	}
	_ = conn.WriteJSON(t)

	if t.Status == models.TaskStatusCompleted || t.Status == models.TaskStatusFailed {
		return
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	prevStatus := t.Status
	prevProgress := t.Progress

	for range ticker.C {
		cur, err := models.GetVideoTaskByID(taskID)
		if err != nil {
			// 查询失败继续重试
			continue
		}

		if cur.Status != prevStatus || cur.Progress != prevProgress {
			if err := conn.WriteJSON(cur); err != nil {
				break
			}
			prevStatus = cur.Status
			prevProgress = cur.Progress
		}

		if cur.Status == models.TaskStatusCompleted || cur.Status == models.TaskStatusFailed {
			_ = conn.WriteJSON(cur)
			break
		}
	}
}

// 健康检查：GET /health
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
