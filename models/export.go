package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// 视频导出任务状态
const (
	ExportStatusExporting = "EXPORTING"
	ExportStatusCompleted = "COMPLETED"
	ExportStatusFailed    = "FAILED"
)

// Keyframe 时间轴上的一个素材片段（毫秒）
type Keyframe struct {
	Timestamp float64 `json:"timestamp"`
	Duration  float64 `json:"duration"`
	URL       string  `json:"url"`
}

// Track 合成时间轴中的一条轨道（audio/video）
type Track struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Keyframes []Keyframe `json:"keyframes"`
}

type TrackList []Track

func (t TrackList) Value() (driver.Value, error) {
	return json.Marshal(t)
}

func (t *TrackList) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New(fmt.Sprint("Failed to unmarshal JSON value:", value))
	}
	return json.Unmarshal(bytes, t)
}

// VideoExport 时间轴合成导出任务记录
type VideoExport struct {
	ID           string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	VideoID      string    `json:"video_id"`
	Status       string    `json:"status"`
	Tracks       TrackList `gorm:"type:json" json:"tracks"`
	VideoURL     string    `json:"video_url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Error        string    `json:"error"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (VideoExport) TableName() string {
	return "video_export"
}
