package service

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/cerebrone-ai/video-content-creation-agent/models"

	"github.com/google/uuid"
)

// processShots 并发生成所有镜头的媒体。
// 所有镜头同时启动，无并发上限；全有或全无：任一镜头失败则丢弃整批结果。
// 成功时按 order 升序排序后整组返回。
func (p *Processor) processShots(ctx context.Context, taskID string, plans []ShotPlan, language, style string) (models.ShotList, error) {
	log.Printf("[%s] Starting parallel processing of %d shots (%s style)", taskID, len(plans), style)

	type shotResult struct {
		index int
		shot  models.ShotResult
		err   error
	}

	results := make(chan shotResult, len(plans))

	for i, plan := range plans {
		go func(order int, plan ShotPlan) {
			shot, err := p.processSingleShot(ctx, taskID, plan, order, language, style)
			if err != nil {
				results <- shotResult{index: order, err: fmt.Errorf("shot %d: %w", order, err)}
				return
			}
			results <- shotResult{index: order, shot: shot}
		}(i, plan)
	}

	shots := make(models.ShotList, len(plans))
	var firstErr error
	for range plans {
		r := <-results
		if r.err != nil {
			log.Printf("[%s] %v", taskID, r.err)
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		shots[r.index] = r.shot
	}

	if firstErr != nil {
		return nil, firstErr
	}

	sort.Slice(shots, func(i, j int) bool { return shots[i].Order < shots[j].Order })
	return shots, nil
}

// processSingleShot 单个镜头：图片 -> 视频（数据依赖），再配音
func (p *Processor) processSingleShot(ctx context.Context, taskID string, plan ShotPlan, order int, language, style string) (models.ShotResult, error) {
	imageURL, err := p.Media.GenerateImage(ctx, plan.AIPrompt, style)
	if err != nil {
		return models.ShotResult{}, err
	}

	videoURL, err := p.Media.ImageToVideo(ctx, plan.AIPrompt, imageURL, style)
	if err != nil {
		return models.ShotResult{}, err
	}

	voiceoverURL, err := p.generateVoiceover(ctx, taskID, plan.VoiceoverScript, language)
	if err != nil {
		return models.ShotResult{}, err
	}

	return models.ShotResult{
		Timestamp:        plan.Timestamp,
		AIPrompt:         plan.AIPrompt,
		StartingImageURL: imageURL,
		VideoURL:         videoURL,
		VoiceoverScript:  plan.VoiceoverScript,
		VoiceoverURL:     voiceoverURL,
		Captions:         plan.Captions,
		Order:            order,
		Mood:             plan.Mood,
		SpecialEffects:   plan.SpecialEffects,
		VideoStatus:      models.ShotComponentCompleted,
		AudioStatus:      models.ShotComponentCompleted,
	}, nil
}

// generateVoiceover 调用语音合成并把音频转存到对象存储
func (p *Processor) generateVoiceover(ctx context.Context, taskID, text, language string) (string, error) {
	vendorURL, err := p.Media.GenerateSpeech(ctx, text, language)
	if err != nil {
		return "", err
	}
	objectName := fmt.Sprintf("tasks/%s/voiceover-%s.mp3", taskID, uuid.NewString())
	return p.Store.Rehost(ctx, vendorURL, objectName)
}
