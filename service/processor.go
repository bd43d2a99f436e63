package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/cerebrone-ai/video-content-creation-agent/config"
	"github.com/cerebrone-ai/video-content-creation-agent/models"

	"github.com/hibiken/asynq"
)

// LLMClient / MediaClient 在 main.go 中初始化，API 层同步调用使用
// （描述提炼、同步生图）。后台 worker 走 Processor 持有的同一组实例。
var (
	LLMClient   StructuredGenerator
	MediaClient MediaGenerator
)

// TaskStore 主任务记录的读写入口，默认实现委托 models 包
type TaskStore interface {
	GetVideoTask(id string) (models.VideoTask, error)
	UpdateVideoTaskStatus(id, status string, progress *int, shots models.ShotList, musicURL, errStr *string) error
	UpdateVideoTaskShots(id string, shots models.ShotList) error
}

type dbTaskStore struct{}

func (dbTaskStore) GetVideoTask(id string) (models.VideoTask, error) {
	return models.GetVideoTaskByID(id)
}

func (dbTaskStore) UpdateVideoTaskStatus(id, status string, progress *int, shots models.ShotList, musicURL, errStr *string) error {
	return models.UpdateVideoTaskStatus(id, status, progress, shots, musicURL, errStr)
}

func (dbTaskStore) UpdateVideoTaskShots(id string, shots models.ShotList) error {
	return models.UpdateVideoTaskShots(id, shots)
}

// Processor 后台任务处理器，持有所有外部依赖
type Processor struct {
	LLM   StructuredGenerator
	Media MediaGenerator
	Store MediaStore
	Tasks TaskStore
}

func NewProcessor(llm StructuredGenerator, media MediaGenerator, store MediaStore) *Processor {
	return &Processor{
		LLM:   llm,
		Media: media,
		Store: store,
		Tasks: dbTaskStore{},
	}
}

// StartProcessor 启动 asynq worker 服务器（后台 goroutine）
func (p *Processor) StartProcessor(concurrency int) {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     config.AppConfig.Redis.Addr,
			Password: config.AppConfig.Redis.Password,
		},
		asynq.Config{
			Concurrency: concurrency,
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeGenerateVideo, p.HandleGenerateVideo)
	mux.HandleFunc(TypeSingleGenerate, p.HandleSingleGeneration)
	mux.HandleFunc(TypeExportVideo, p.HandleExport)
	mux.HandleFunc(TypeRegenerateShot, p.HandleRegenerateShot)

	go func() {
		if err := srv.Run(mux); err != nil {
			log.Fatalf("asynq server 启动失败: %v", err)
		}
	}()

	log.Printf("[Processor] Worker started (concurrency=%d)", concurrency)
}

// HandleGenerateVideo 主视频生成流程：
// 脚本流水线 -> 镜头并发生成 -> 背景音乐 -> COMPLETED。
// 任一环节失败，任务一次性落入 FAILED 终态并记录错误串。
func (p *Processor) HandleGenerateVideo(ctx context.Context, t *asynq.Task) error {
	var payload TaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload failed: %v: %w", err, asynq.SkipRetry)
	}
	taskID := payload.TaskID

	Jobs.Add(taskID)
	defer Jobs.Done(taskID)

	log.Printf("[%s] Starting video generation", taskID)

	task, err := p.Tasks.GetVideoTask(taskID)
	if err != nil {
		log.Printf("[%s] 任务读取失败: %v", taskID, err)
		return nil
	}
	brief := task.ProjectData

	p.updateVideoStatus(ctx, taskID, models.TaskStatusGeneratingScript, intPtr(models.ProgressScript), nil, nil, nil)

	project, err := p.runStagePipeline(ctx, taskID, brief)
	if err != nil {
		p.failVideoTask(ctx, taskID, err)
		return nil
	}

	p.updateVideoStatus(ctx, taskID, models.TaskStatusGeneratingMedia, intPtr(models.ProgressMedia), nil, nil, nil)

	shots, err := p.processShots(ctx, taskID, project.Shots, brief.Language, brief.Style)
	if err != nil {
		p.failVideoTask(ctx, taskID, err)
		return nil
	}

	// 镜头整组落库，标记 90%
	p.updateVideoStatus(ctx, taskID, models.TaskStatusGeneratingMedia, intPtr(models.ProgressShotDone), shots, nil, nil)

	musicPrompt := project.Script.MusicPrompt
	if musicPrompt == "" {
		musicPrompt = "Cinematic background music for " + brief.ProjectTitle
	}
	musicURL, err := p.Media.GenerateMusic(ctx, musicPrompt)
	if err != nil {
		p.failVideoTask(ctx, taskID, fmt.Errorf("music stage: %w", err))
		return nil
	}

	p.updateVideoStatus(ctx, taskID, models.TaskStatusCompleted, intPtr(models.ProgressDone), nil, &musicURL, nil)
	log.Printf("[%s] Video generation completed (%d shots)", taskID, len(shots))
	return nil
}

// HandleSingleGeneration 独立单次生成（视频或音频），不属于任何主任务
func (p *Processor) HandleSingleGeneration(ctx context.Context, t *asynq.Task) error {
	var payload TaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload failed: %v: %w", err, asynq.SkipRetry)
	}
	taskID := payload.TaskID

	Jobs.Add(taskID)
	defer Jobs.Done(taskID)

	task, err := models.GetSingleTaskByID(taskID)
	if err != nil {
		log.Printf("[%s] 单次任务读取失败: %v", taskID, err)
		return nil
	}
	req := task.RequestData

	var url string
	switch task.Type {
	case models.SingleTypeVideo:
		url, err = p.generateSingleVideo(ctx, req)
	case models.SingleTypeAudio:
		url, err = p.generateSingleAudio(ctx, taskID, req)
	default:
		err = fmt.Errorf("unknown single generation type: %s", task.Type)
	}

	if err != nil {
		log.Printf("[%s] Single generation failed: %v", taskID, err)
		errStr := err.Error()
		if dbErr := models.UpdateSingleTaskStatus(taskID, models.SingleStatusFailed, nil, &errStr); dbErr != nil {
			log.Printf("[%s] 单次任务状态写入失败: %v", taskID, dbErr)
		}
		return nil
	}

	if dbErr := models.UpdateSingleTaskStatus(taskID, models.SingleStatusCompleted, &url, nil); dbErr != nil {
		log.Printf("[%s] 单次任务状态写入失败: %v", taskID, dbErr)
	}
	log.Printf("[%s] Single %s generation completed", taskID, task.Type)
	return nil
}

func (p *Processor) generateSingleVideo(ctx context.Context, req models.SingleRequest) (string, error) {
	imageURL, err := p.Media.GenerateImage(ctx, req.Prompt, req.Style)
	if err != nil {
		return "", err
	}
	return p.Media.ImageToVideo(ctx, req.Prompt, imageURL, req.Style)
}

func (p *Processor) generateSingleAudio(ctx context.Context, taskID string, req models.SingleRequest) (string, error) {
	if req.IsVoiceover {
		return p.generateVoiceover(ctx, taskID, req.Text, req.Language)
	}
	return p.Media.GenerateMusic(ctx, req.Prompt)
}

// HandleExport 时间轴合成导出
func (p *Processor) HandleExport(ctx context.Context, t *asynq.Task) error {
	var payload TaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload failed: %v: %w", err, asynq.SkipRetry)
	}
	exportID := payload.TaskID

	Jobs.Add(exportID)
	defer Jobs.Done(exportID)

	export, err := models.GetVideoExportByID(exportID)
	if err != nil {
		log.Printf("[%s] 导出任务读取失败: %v", exportID, err)
		return nil
	}

	result, err := p.Media.Compose(ctx, export.Tracks)
	if err != nil {
		log.Printf("[%s] Export failed: %v", exportID, err)
		errStr := err.Error()
		if dbErr := models.UpdateVideoExportStatus(exportID, models.ExportStatusFailed, nil, nil, &errStr); dbErr != nil {
			log.Printf("[%s] 导出状态写入失败: %v", exportID, dbErr)
		}
		return nil
	}

	if dbErr := models.UpdateVideoExportStatus(exportID, models.ExportStatusCompleted, &result.VideoURL, &result.ThumbnailURL, nil); dbErr != nil {
		log.Printf("[%s] 导出状态写入失败: %v", exportID, dbErr)
	}
	log.Printf("[%s] Export completed", exportID)
	return nil
}

// HandleRegenerateShot 单镜头重生
func (p *Processor) HandleRegenerateShot(ctx context.Context, t *asynq.Task) error {
	var payload RegenerationPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload failed: %v: %w", err, asynq.SkipRetry)
	}

	jobKey := fmt.Sprintf("%s_regen_%d", payload.TaskID, payload.ShotOrder)
	Jobs.Add(jobKey)
	defer Jobs.Done(jobKey)

	p.runShotRegeneration(ctx, payload)
	return nil
}

// failVideoTask 失败终态：状态 FAILED、进度归零、记录错误。worker 不重试。
func (p *Processor) failVideoTask(ctx context.Context, taskID string, err error) {
	log.Printf("[%s] Video generation failed: %v", taskID, err)
	errStr := err.Error()
	p.updateVideoStatus(ctx, taskID, models.TaskStatusFailed, intPtr(models.ProgressQueued), nil, nil, &errStr)
}

// updateVideoStatus 落库后刷新状态缓存
func (p *Processor) updateVideoStatus(ctx context.Context, taskID, status string, progress *int, shots models.ShotList, musicURL, errStr *string) {
	if err := p.Tasks.UpdateVideoTaskStatus(taskID, status, progress, shots, musicURL, errStr); err != nil {
		log.Printf("[%s] 状态写入失败: %v", taskID, err)
		return
	}
	if task, err := p.Tasks.GetVideoTask(taskID); err == nil {
		Cache.Put(ctx, task.Summary())
	}
}

func intPtr(v int) *int { return &v }
