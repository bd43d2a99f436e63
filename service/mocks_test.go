package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cerebrone-ai/video-content-creation-agent/models"
)

// fakeMedia 可注入错误的 MediaGenerator 测试替身，记录调用轨迹
type fakeMedia struct {
	mu    sync.Mutex
	calls []string

	failImagePrompt string
	imageDelays     map[string]time.Duration
	imageErr        error
	videoErr        error
	speechErr       error
	musicErr        error
	composeErr      error
}

func (f *fakeMedia) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeMedia) callCount(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeMedia) GenerateImage(ctx context.Context, prompt, style string) (string, error) {
	f.record("image")
	if d := f.imageDelays[prompt]; d > 0 {
		time.Sleep(d)
	}
	if f.imageErr != nil {
		return "", f.imageErr
	}
	if f.failImagePrompt != "" && prompt == f.failImagePrompt {
		return "", errors.New("image vendor rejected prompt")
	}
	return "https://img.example.com/" + prompt, nil
}

func (f *fakeMedia) ImageToVideo(ctx context.Context, prompt, imageURL, style string) (string, error) {
	f.record("video")
	if f.videoErr != nil {
		return "", f.videoErr
	}
	return "https://video.example.com/" + prompt, nil
}

func (f *fakeMedia) GenerateSpeech(ctx context.Context, text, language string) (string, error) {
	f.record("speech")
	if f.speechErr != nil {
		return "", f.speechErr
	}
	return "https://speech.example.com/" + text, nil
}

func (f *fakeMedia) GenerateMusic(ctx context.Context, prompt string) (string, error) {
	f.record("music")
	if f.musicErr != nil {
		return "", f.musicErr
	}
	return "https://music.example.com/track.mp3", nil
}

func (f *fakeMedia) Compose(ctx context.Context, tracks models.TrackList) (*ComposeResult, error) {
	f.record("compose")
	if f.composeErr != nil {
		return nil, f.composeErr
	}
	return &ComposeResult{
		VideoURL:     "https://video.example.com/final.mp4",
		ThumbnailURL: "https://video.example.com/thumb.jpg",
	}, nil
}

// fakeStore 不做实际转存，原样映射到固定前缀
type fakeStore struct {
	rehostErr error
}

func (f *fakeStore) Rehost(ctx context.Context, sourceURL, objectName string) (string, error) {
	if f.rehostErr != nil {
		return "", f.rehostErr
	}
	return "https://store.example.com/" + objectName, nil
}

// fakeLLM 可注入各阶段错误的 StructuredGenerator 测试替身
type fakeLLM struct {
	mu    sync.Mutex
	calls []string

	script     *VideoScript
	scriptErr  error
	scenes     []StoryboardScene
	scenesErr  error
	shots      []ShotPlan
	shotsErr   error
	text       string
	textErr    error
	textInputs []string
}

func (f *fakeLLM) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeLLM) called(call string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == call {
			return true
		}
	}
	return false
}

func (f *fakeLLM) GenerateScript(ctx context.Context, brief models.ProjectData) (*VideoScript, error) {
	f.record("script")
	if f.scriptErr != nil {
		return nil, f.scriptErr
	}
	if f.script != nil {
		return f.script, nil
	}
	return &VideoScript{Title: brief.ProjectTitle, ScriptContent: "content", MusicPrompt: "calm piano"}, nil
}

func (f *fakeLLM) GenerateStoryboard(ctx context.Context, brief models.ProjectData, script *VideoScript) ([]StoryboardScene, error) {
	f.record("storyboard")
	if f.scenesErr != nil {
		return nil, f.scenesErr
	}
	return f.scenes, nil
}

func (f *fakeLLM) GenerateShotPlan(ctx context.Context, brief models.ProjectData, scenes []StoryboardScene) ([]ShotPlan, error) {
	f.record("shotplan")
	if f.shotsErr != nil {
		return nil, f.shotsErr
	}
	return f.shots, nil
}

func (f *fakeLLM) GenerateText(ctx context.Context, system, prompt string) (string, error) {
	f.record("text")
	f.mu.Lock()
	f.textInputs = append(f.textInputs, prompt)
	f.mu.Unlock()
	if f.textErr != nil {
		return "", f.textErr
	}
	return f.text, nil
}
