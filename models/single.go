package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// 单次生成任务（独立于主视频任务的生命周期）
const (
	SingleStatusGenerating = "GENERATING"
	SingleStatusCompleted  = "COMPLETED"
	SingleStatusFailed     = "FAILED"

	SingleTypeVideo = "video"
	SingleTypeAudio = "audio"
)

// SingleGenerationTask 一次性图片/视频/音频生成的任务记录
type SingleGenerationTask struct {
	ID          string        `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Type        string        `json:"type"`
	Status      string        `json:"status"`
	RequestData SingleRequest `gorm:"type:json" json:"request_data"`
	URL         string        `json:"url"`
	Error       string        `json:"error"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// SingleRequest 单次生成请求参数（视频与音频共用一张 JSON 列）
type SingleRequest struct {
	Prompt      string `json:"prompt"`
	Language    string `json:"language"`
	Duration    int    `json:"duration,omitempty"`
	Style       string `json:"style,omitempty"`
	IsVoiceover bool   `json:"is_voiceover,omitempty"`
	Text        string `json:"text,omitempty"`
}

func (r SingleRequest) Value() (driver.Value, error) {
	return json.Marshal(r)
}

func (r *SingleRequest) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New(fmt.Sprint("Failed to unmarshal JSON value:", value))
	}
	return json.Unmarshal(bytes, r)
}

func (SingleGenerationTask) TableName() string {
	return "single_generation_task"
}
