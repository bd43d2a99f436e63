package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cerebrone-ai/video-content-creation-agent/models"
)

func testPlans(n int) []ShotPlan {
	plans := make([]ShotPlan, n)
	for i := range plans {
		plans[i] = ShotPlan{
			Timestamp:       "0:00-0:05",
			AIPrompt:        "prompt-" + string(rune('a'+i)),
			VoiceoverScript: "line-" + string(rune('a'+i)),
			Captions:        []string{"caption"},
			Mood:            "calm",
		}
	}
	return plans
}

func TestProcessShotsOrdering(t *testing.T) {
	plans := testPlans(3)
	// 拖慢前面的镜头，让完成顺序变成 2,1,0，排序必须把结果拉回升序
	media := &fakeMedia{imageDelays: map[string]time.Duration{
		plans[0].AIPrompt: 60 * time.Millisecond,
		plans[1].AIPrompt: 30 * time.Millisecond,
	}}
	p := &Processor{Media: media, Store: &fakeStore{}}

	shots, err := p.processShots(context.Background(), "task-1", plans, "english", "realistic")
	require.NoError(t, err)
	require.Len(t, shots, 3)

	for i, shot := range shots {
		assert.Equal(t, i, shot.Order)
		assert.Equal(t, plans[i].AIPrompt, shot.AIPrompt)
		assert.Equal(t, "https://video.example.com/"+plans[i].AIPrompt, shot.VideoURL)
		assert.Equal(t, "https://img.example.com/"+plans[i].AIPrompt, shot.StartingImageURL)
		assert.Equal(t, models.ShotComponentCompleted, shot.VideoStatus)
		assert.Equal(t, models.ShotComponentCompleted, shot.AudioStatus)
		assert.Contains(t, shot.VoiceoverURL, "tasks/task-1/voiceover-")
	}

	assert.Equal(t, 3, media.callCount("image"))
	assert.Equal(t, 3, media.callCount("video"))
	assert.Equal(t, 3, media.callCount("speech"))
}

func TestProcessShotsOneFailureDiscardsBatch(t *testing.T) {
	plans := testPlans(4)
	media := &fakeMedia{failImagePrompt: plans[2].AIPrompt}
	p := &Processor{Media: media, Store: &fakeStore{}}

	shots, err := p.processShots(context.Background(), "task-2", plans, "english", "anime")
	require.Error(t, err)
	assert.Nil(t, shots)
	assert.Contains(t, err.Error(), "shot 2")
}

func TestProcessShotsVoiceoverRehost(t *testing.T) {
	p := &Processor{Media: &fakeMedia{}, Store: &fakeStore{}}

	url, err := p.generateVoiceover(context.Background(), "task-3", "hello world", "english")
	require.NoError(t, err)
	assert.Contains(t, url, "https://store.example.com/tasks/task-3/voiceover-")
}

func TestProcessShotsRehostFailureFailsShot(t *testing.T) {
	p := &Processor{Media: &fakeMedia{}, Store: &fakeStore{rehostErr: assert.AnError}}

	shots, err := p.processShots(context.Background(), "task-4", testPlans(2), "hindi", "doodle")
	require.Error(t, err)
	assert.Nil(t, shots)
}
