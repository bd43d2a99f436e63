package service

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/cerebrone-ai/video-content-creation-agent/config"

	"github.com/hibiken/asynq"
)

const (
	TypeGenerateVideo  = "video:generate"
	TypeSingleGenerate = "media:single"
	TypeExportVideo    = "video:export"
	TypeRegenerateShot = "shot:regenerate"
)

type TaskPayload struct {
	TaskID string `json:"task_id"`
}

// RegenerationPayload 重新生成任务的入队参数
type RegenerationPayload struct {
	TaskID           string `json:"task_id"`
	ShotOrder        int    `json:"shot_order"`
	RegenerateVideo  bool   `json:"regenerate_video"`
	RegenerateAudio  bool   `json:"regenerate_audio"`
	Language         string `json:"language"`
	StartingImageURL string `json:"starting_image_url,omitempty"`
}

var QueueClient *asynq.Client

// InitQueue 初始化
func InitQueue() {
	QueueClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.Redis.Addr,
		Password: config.AppConfig.Redis.Password,
	})
}

// EnqueueGenerateVideo 主视频生成任务入队
func EnqueueGenerateVideo(taskID string) error {
	return enqueue(TypeGenerateVideo, TaskPayload{TaskID: taskID})
}

// EnqueueSingleGeneration 单次生成任务入队
func EnqueueSingleGeneration(taskID string) error {
	return enqueue(TypeSingleGenerate, TaskPayload{TaskID: taskID})
}

// EnqueueExport 导出任务入队
func EnqueueExport(taskID string) error {
	return enqueue(TypeExportVideo, TaskPayload{TaskID: taskID})
}

// EnqueueRegeneration 镜头重生任务入队
func EnqueueRegeneration(p RegenerationPayload) error {
	return enqueue(TypeRegenerateShot, p)
}

func enqueue(taskType string, payload interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload failed: %w", err)
	}

	// 上游失败即终态，不做自动重试；一次失败只能由客户端新建任务
	task := asynq.NewTask(taskType, b,
		asynq.MaxRetry(0),
		asynq.Timeout(30*time.Minute), // 媒体生成较慢，设置较长超时
		asynq.Retention(24*time.Hour), // 任务结果在 Redis 保留时间
	)

	info, err := QueueClient.Enqueue(task)
	if err != nil {
		return fmt.Errorf("enqueue failed: %w", err)
	}

	log.Printf("[Queue] Task Enqueued: Type=%s, ID=%s", taskType, info.ID)
	return nil
}
