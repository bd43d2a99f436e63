package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// 单个镜头内视频/音频组件的状态
const (
	ShotComponentCompleted    = "completed"
	ShotComponentRegenerating = "regenerating"
	ShotComponentFailed       = "failed"
)

// ShotResult 一个约 5 秒镜头的生成结果。
// Order 是镜头在任务内的唯一身份（0 起始），重新生成只按 Order 定位。
type ShotResult struct {
	Timestamp        string   `json:"timestamp"`
	AIPrompt         string   `json:"ai_prompt"`
	StartingImageURL string   `json:"starting_image_url"`
	VideoURL         string   `json:"video_url"`
	VoiceoverScript  string   `json:"voiceover_script"`
	VoiceoverURL     string   `json:"voiceover_url"`
	Captions         []string `json:"captions"`
	Order            int      `json:"order"`
	Mood             string   `json:"mood"`
	SpecialEffects   []string `json:"special_effects"`
	VideoStatus      string   `json:"video_status"`
	AudioStatus      string   `json:"audio_status"`
}

// ShotList 以 JSON 列整体存储于 video_task.shots，整组写入整组读出
type ShotList []ShotResult

func (s ShotList) Value() (driver.Value, error) {
	if s == nil {
		return json.Marshal(ShotList{})
	}
	return json.Marshal(s)
}

func (s *ShotList) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New(fmt.Sprint("Failed to unmarshal JSON value:", value))
	}
	if len(bytes) == 0 {
		return nil
	}
	return json.Unmarshal(bytes, s)
}
