package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/cerebrone-ai/video-content-creation-agent/models"
)

var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrInvalidShotOrder = errors.New("invalid shot order")
	ErrNoComponents     = errors.New("must specify at least one component to regenerate (video or audio)")
)

// RegenerationRequest 重新生成一个镜头的视频和/或音频的请求
type RegenerationRequest struct {
	ShotOrder        int    `json:"shot_order"`
	RegenerateVideo  bool   `json:"regenerate_video"`
	RegenerateAudio  bool   `json:"regenerate_audio"`
	Language         string `json:"language" binding:"required"`
	NewVideoPrompt   string `json:"new_video_prompt"`
	NewVoiceoverText string `json:"new_voiceover_text"`
	StartingImageURL string `json:"starting_image_url"`
}

// shotLocks 按任务串行化 shots 列的读改写，避免同任务并发重生丢更新
var shotLocks = newKeyedMutex()

// BeginShotRegeneration 校验请求、把目标镜头标记为 regenerating（并应用替换的
// prompt/文案），落库后入队后台重生任务。返回将要重生的组件列表。
func BeginShotRegeneration(taskID string, req RegenerationRequest) ([]string, error) {
	if !req.RegenerateVideo && !req.RegenerateAudio {
		return nil, ErrNoComponents
	}

	unlock := shotLocks.Lock(taskID)
	defer unlock()

	task, err := models.GetVideoTaskByID(taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	if req.ShotOrder < 0 || req.ShotOrder >= len(task.Shots) {
		return nil, fmt.Errorf("%w: task has %d shots", ErrInvalidShotOrder, len(task.Shots))
	}

	shot := &task.Shots[req.ShotOrder]
	var components []string

	if req.RegenerateVideo {
		shot.VideoStatus = models.ShotComponentRegenerating
		if req.NewVideoPrompt != "" {
			shot.AIPrompt = req.NewVideoPrompt
		}
		components = append(components, "video")
	}
	if req.RegenerateAudio {
		shot.AudioStatus = models.ShotComponentRegenerating
		if req.NewVoiceoverText != "" {
			shot.VoiceoverScript = req.NewVoiceoverText
		}
		components = append(components, "audio")
	}

	if err := models.UpdateVideoTaskShots(taskID, task.Shots); err != nil {
		return nil, err
	}

	if err := EnqueueRegeneration(RegenerationPayload{
		TaskID:           taskID,
		ShotOrder:        req.ShotOrder,
		RegenerateVideo:  req.RegenerateVideo,
		RegenerateAudio:  req.RegenerateAudio,
		Language:         req.Language,
		StartingImageURL: req.StartingImageURL,
	}); err != nil {
		return nil, err
	}

	return components, nil
}

// runShotRegeneration 后台重生逻辑。视频与音频各自独立成败：
// 一个组件失败不回滚也不阻塞另一个，结果逐字段立即落库。
func (p *Processor) runShotRegeneration(ctx context.Context, payload RegenerationPayload) {
	taskID := payload.TaskID
	order := payload.ShotOrder

	task, err := p.Tasks.GetVideoTask(taskID)
	if err != nil {
		log.Printf("[%s] 重生任务读取失败: %v", taskID, err)
		return
	}
	if order < 0 || order >= len(task.Shots) {
		log.Printf("[%s] 重生任务 shot order 越界: %d", taskID, order)
		return
	}

	// BeginShotRegeneration 已把替换 prompt/文案写入该镜头
	shot := task.Shots[order]
	style := task.ProjectData.Style

	if payload.RegenerateVideo {
		videoURL, startingImage, err := p.regenerateVideo(ctx, payload, shot.AIPrompt, style)
		if err != nil {
			log.Printf("[%s] Error regenerating video: %v", taskID, err)
			p.commitShotUpdate(taskID, order, func(s *models.ShotResult) {
				s.VideoStatus = models.ShotComponentFailed
			})
		} else {
			p.commitShotUpdate(taskID, order, func(s *models.ShotResult) {
				s.VideoURL = videoURL
				s.StartingImageURL = startingImage
				s.VideoStatus = models.ShotComponentCompleted
			})
		}
	}

	if payload.RegenerateAudio {
		voiceoverURL, err := p.generateVoiceover(ctx, taskID, shot.VoiceoverScript, payload.Language)
		if err != nil {
			log.Printf("[%s] Error regenerating audio: %v", taskID, err)
			p.commitShotUpdate(taskID, order, func(s *models.ShotResult) {
				s.AudioStatus = models.ShotComponentFailed
			})
		} else {
			p.commitShotUpdate(taskID, order, func(s *models.ShotResult) {
				s.VoiceoverURL = voiceoverURL
				s.AudioStatus = models.ShotComponentCompleted
			})
		}
	}

	log.Printf("[%s] Shot %d regeneration finished", taskID, order)
}

// regenerateVideo 指定起始图时跳过生图直接图生视频，否则走完整链路
func (p *Processor) regenerateVideo(ctx context.Context, payload RegenerationPayload, prompt, style string) (videoURL, startingImage string, err error) {
	if payload.StartingImageURL != "" {
		videoURL, err = p.Media.ImageToVideo(ctx, prompt, payload.StartingImageURL, style)
		return videoURL, payload.StartingImageURL, err
	}

	imageURL, err := p.Media.GenerateImage(ctx, prompt, style)
	if err != nil {
		return "", "", err
	}
	videoURL, err = p.Media.ImageToVideo(ctx, prompt, imageURL, style)
	return videoURL, imageURL, err
}

// commitShotUpdate 在任务锁内对单个镜头做读改写，避免并发重生互相覆盖兄弟镜头
func (p *Processor) commitShotUpdate(taskID string, order int, apply func(*models.ShotResult)) {
	unlock := shotLocks.Lock(taskID)
	defer unlock()

	task, err := p.Tasks.GetVideoTask(taskID)
	if err != nil {
		log.Printf("[%s] 镜头更新读取失败: %v", taskID, err)
		return
	}
	if order < 0 || order >= len(task.Shots) {
		log.Printf("[%s] 镜头更新 order 越界: %d", taskID, order)
		return
	}

	apply(&task.Shots[order])

	if err := p.Tasks.UpdateVideoTaskShots(taskID, task.Shots); err != nil {
		log.Printf("[%s] 镜头更新写入失败: %v", taskID, err)
	}
}
