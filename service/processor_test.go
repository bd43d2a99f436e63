package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cerebrone-ai/video-content-creation-agent/models"
)

// fakeTaskStore 内存 TaskStore，复刻 models.UpdateVideoTaskStatus 的
// 部分更新语义（空串/nil 字段不覆盖）
type fakeTaskStore struct {
	mu          sync.Mutex
	tasks       map[string]*models.VideoTask
	progressLog []int
}

func newFakeTaskStore(seed ...models.VideoTask) *fakeTaskStore {
	s := &fakeTaskStore{tasks: make(map[string]*models.VideoTask)}
	for i := range seed {
		t := seed[i]
		s.tasks[t.ID] = &t
	}
	return s
}

func (s *fakeTaskStore) GetVideoTask(id string) (models.VideoTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return models.VideoTask{}, sql.ErrNoRows
	}
	cp := *t
	cp.Shots = append(models.ShotList(nil), t.Shots...)
	return cp, nil
}

func (s *fakeTaskStore) UpdateVideoTaskStatus(id, status string, progress *int, shots models.ShotList, musicURL, errStr *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return sql.ErrNoRows
	}
	if status != "" {
		t.Status = status
	}
	if progress != nil {
		t.Progress = *progress
		s.progressLog = append(s.progressLog, *progress)
	}
	if shots != nil {
		t.Shots = append(models.ShotList(nil), shots...)
	}
	if musicURL != nil {
		t.BackgroundMusicURL = *musicURL
	}
	if errStr != nil {
		t.Error = *errStr
	}
	return nil
}

func (s *fakeTaskStore) UpdateVideoTaskShots(id string, shots models.ShotList) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return sql.ErrNoRows
	}
	t.Shots = append(models.ShotList(nil), shots...)
	return nil
}

func queuedTask(id string) models.VideoTask {
	return models.VideoTask{
		ID:       id,
		Status:   models.TaskStatusQueued,
		Progress: models.ProgressQueued,
		ProjectData: models.ProjectData{
			ProjectTitle:       "Launch Teaser",
			ProjectDescription: "A product launch teaser",
			Duration:           15,
			Language:           "english",
			Style:              "realistic",
		},
		Shots: models.ShotList{},
	}
}

func threeShotLLM() *fakeLLM {
	return &fakeLLM{
		scenes: []StoryboardScene{{Timestamp: "0:00-0:05", SceneDescription: "opening"}},
		shots: []ShotPlan{
			{Timestamp: "0:00-0:05", AIPrompt: "shot-a", VoiceoverScript: "line a"},
			{Timestamp: "0:05-0:10", AIPrompt: "shot-b", VoiceoverScript: "line b"},
			{Timestamp: "0:10-0:15", AIPrompt: "shot-c", VoiceoverScript: "line c"},
		},
	}
}

func asynqTask(t *testing.T, taskType string, payload interface{}) *asynq.Task {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	return asynq.NewTask(taskType, b)
}

func TestHandleGenerateVideoCompletes(t *testing.T) {
	store := newFakeTaskStore(queuedTask("vid-1"))
	p := &Processor{LLM: threeShotLLM(), Media: &fakeMedia{}, Store: &fakeStore{}, Tasks: store}

	err := p.HandleGenerateVideo(context.Background(), asynqTask(t, TypeGenerateVideo, TaskPayload{TaskID: "vid-1"}))
	require.NoError(t, err)

	final, err := store.GetVideoTask("vid-1")
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, final.Status)
	assert.Equal(t, models.ProgressDone, final.Progress)
	assert.NotEmpty(t, final.BackgroundMusicURL)
	assert.Empty(t, final.Error)
	require.Len(t, final.Shots, 3)
	for i, shot := range final.Shots {
		assert.Equal(t, i, shot.Order)
		assert.Equal(t, models.ShotComponentCompleted, shot.VideoStatus)
		assert.Equal(t, models.ShotComponentCompleted, shot.AudioStatus)
	}

	// 进度只走硬编码检查点
	assert.Equal(t, []int{10, 30, 90, 100}, store.progressLog)
	assert.False(t, Jobs.Running("vid-1"))
}

func TestHandleGenerateVideoFanOutFailure(t *testing.T) {
	store := newFakeTaskStore(queuedTask("vid-2"))
	media := &fakeMedia{failImagePrompt: "shot-b"}
	p := &Processor{LLM: threeShotLLM(), Media: media, Store: &fakeStore{}, Tasks: store}

	err := p.HandleGenerateVideo(context.Background(), asynqTask(t, TypeGenerateVideo, TaskPayload{TaskID: "vid-2"}))
	require.NoError(t, err) // 失败落库后不向 asynq 透出错误

	final, _ := store.GetVideoTask("vid-2")
	assert.Equal(t, models.TaskStatusFailed, final.Status)
	assert.Equal(t, 0, final.Progress)
	assert.NotEmpty(t, final.Error)
	// 全有或全无：任何镜头都不落库
	assert.Empty(t, final.Shots)
	assert.Empty(t, final.BackgroundMusicURL)
	assert.Equal(t, []int{10, 30, 0}, store.progressLog)
}

func TestHandleGenerateVideoMusicFailureKeepsShots(t *testing.T) {
	store := newFakeTaskStore(queuedTask("vid-3"))
	media := &fakeMedia{musicErr: errors.New("audio vendor down")}
	p := &Processor{LLM: threeShotLLM(), Media: media, Store: &fakeStore{}, Tasks: store}

	err := p.HandleGenerateVideo(context.Background(), asynqTask(t, TypeGenerateVideo, TaskPayload{TaskID: "vid-3"}))
	require.NoError(t, err)

	final, _ := store.GetVideoTask("vid-3")
	assert.Equal(t, models.TaskStatusFailed, final.Status)
	assert.Contains(t, final.Error, "music stage")
	// 镜头在 90 检查点已提交，失败不回滚已落库字段
	assert.Len(t, final.Shots, 3)
	assert.Empty(t, final.BackgroundMusicURL)
	assert.Equal(t, []int{10, 30, 90, 0}, store.progressLog)
}

func completedThreeShotTask(id string) models.VideoTask {
	t := queuedTask(id)
	t.Status = models.TaskStatusCompleted
	t.Progress = models.ProgressDone
	t.Shots = models.ShotList{
		{Order: 0, AIPrompt: "shot-a", VoiceoverURL: "https://old/0.mp3", VideoURL: "https://old/0.mp4", VideoStatus: models.ShotComponentCompleted, AudioStatus: models.ShotComponentCompleted},
		{Order: 1, AIPrompt: "shot-b", VoiceoverScript: "line b", VoiceoverURL: "https://old/1.mp3", VideoURL: "https://old/1.mp4", VideoStatus: models.ShotComponentCompleted, AudioStatus: models.ShotComponentCompleted},
		{Order: 2, AIPrompt: "shot-c", VoiceoverURL: "https://old/2.mp3", VideoURL: "https://old/2.mp4", VideoStatus: models.ShotComponentCompleted, AudioStatus: models.ShotComponentCompleted},
	}
	return t
}

func TestHandleRegenerateShotAudioOnlyTouchesOneShot(t *testing.T) {
	store := newFakeTaskStore(completedThreeShotTask("vid-4"))
	p := &Processor{Media: &fakeMedia{}, Store: &fakeStore{}, Tasks: store}

	payload := RegenerationPayload{TaskID: "vid-4", ShotOrder: 1, RegenerateAudio: true, Language: "english"}
	err := p.HandleRegenerateShot(context.Background(), asynqTask(t, TypeRegenerateShot, payload))
	require.NoError(t, err)

	final, _ := store.GetVideoTask("vid-4")
	require.Len(t, final.Shots, 3)
	assert.Contains(t, final.Shots[1].VoiceoverURL, "https://store.example.com/tasks/vid-4/voiceover-")
	assert.Equal(t, models.ShotComponentCompleted, final.Shots[1].AudioStatus)
	// 视频字段和兄弟镜头不受影响
	assert.Equal(t, "https://old/1.mp4", final.Shots[1].VideoURL)
	assert.Equal(t, "https://old/0.mp3", final.Shots[0].VoiceoverURL)
	assert.Equal(t, "https://old/2.mp3", final.Shots[2].VoiceoverURL)
}

func TestHandleRegenerateShotComponentsFailIndependently(t *testing.T) {
	store := newFakeTaskStore(completedThreeShotTask("vid-5"))
	media := &fakeMedia{videoErr: errors.New("video vendor down")}
	p := &Processor{Media: media, Store: &fakeStore{}, Tasks: store}

	payload := RegenerationPayload{TaskID: "vid-5", ShotOrder: 0, RegenerateVideo: true, RegenerateAudio: true, Language: "english"}
	err := p.HandleRegenerateShot(context.Background(), asynqTask(t, TypeRegenerateShot, payload))
	require.NoError(t, err)

	final, _ := store.GetVideoTask("vid-5")
	assert.Equal(t, models.ShotComponentFailed, final.Shots[0].VideoStatus)
	assert.Equal(t, "https://old/0.mp4", final.Shots[0].VideoURL)
	assert.Equal(t, models.ShotComponentCompleted, final.Shots[0].AudioStatus)
	assert.Contains(t, final.Shots[0].VoiceoverURL, "https://store.example.com/")
}
