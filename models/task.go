package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// 视频生成任务状态（整个生命周期在系统中统一使用这些状态）
const (
	// QUEUED: 任务已入库，等待后台 worker 取走
	TaskStatusQueued = "QUEUED"
	// GENERATING_SCRIPT: 阶段流水线执行中（脚本 -> 分镜 -> 镜头计划）
	TaskStatusGeneratingScript = "GENERATING_SCRIPT"
	// GENERATING_MEDIA: 镜头并发生成中（图片/视频/配音）+ 背景音乐
	TaskStatusGeneratingMedia = "GENERATING_MEDIA"
	TaskStatusCompleted       = "COMPLETED"
	TaskStatusFailed          = "FAILED"
)

// 进度检查点。进度是硬编码的里程碑值而非实时完成率。
const (
	ProgressQueued   = 0
	ProgressScript   = 10
	ProgressMedia    = 30
	ProgressShotDone = 90
	ProgressDone     = 100
)

// VideoTask 一条完整的视频生成任务记录
type VideoTask struct {
	ID                 string      `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Status             string      `json:"status"`
	Progress           int         `json:"progress"`
	ProjectData        ProjectData `gorm:"type:json" json:"project_data"`
	Shots              ShotList    `gorm:"type:json" json:"shots"`
	BackgroundMusicURL string      `json:"background_music_url"`
	Error              string      `json:"error"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// ProjectData 创建请求的原始项目信息，入库后不再修改
type ProjectData struct {
	ProjectTitle       string `json:"project_title"`
	ProjectDescription string `json:"project_description"`
	TargetAudience     string `json:"target_audience"`
	Duration           int    `json:"duration"`
	Category           string `json:"category"`
	Language           string `json:"language"`
	Style              string `json:"style"`
	RefinedDescription string `json:"refined_description,omitempty"`
}

// 实现 driver.Valuer 接口: Go Struct -> JSON String (存入数据库)
func (p ProjectData) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// 实现 sql.Scanner 接口: JSON String -> Go Struct (从数据库读取)
func (p *ProjectData) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New(fmt.Sprint("Failed to unmarshal JSON value:", value))
	}
	return json.Unmarshal(bytes, p)
}

// 强制指定表名
func (VideoTask) TableName() string {
	return "video_task"
}

// StatusSummary 批量状态查询返回的精简视图
type StatusSummary struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Progress  int       `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *VideoTask) Summary() StatusSummary {
	return StatusSummary{
		ID:        t.ID,
		Status:    t.Status,
		Progress:  t.Progress,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}
