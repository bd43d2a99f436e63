package service

import (
	"context"
	"fmt"
	"log"

	"github.com/cerebrone-ai/video-content-creation-agent/models"
)

// videoProject 阶段流水线的累计产物
type videoProject struct {
	Script     *VideoScript
	Storyboard []StoryboardScene
	Shots      []ShotPlan
}

// runStagePipeline 脚本 -> 分镜 -> 镜头计划，严格串行。
// 任一阶段失败整体中止，不落任何中间结果。
func (p *Processor) runStagePipeline(ctx context.Context, taskID string, brief models.ProjectData) (*videoProject, error) {
	log.Printf("[%s] Generating script (%s)", taskID, brief.Language)
	script, err := p.LLM.GenerateScript(ctx, brief)
	if err != nil {
		return nil, fmt.Errorf("script stage: %w", err)
	}

	log.Printf("[%s] Generating storyboard", taskID)
	storyboard, err := p.LLM.GenerateStoryboard(ctx, brief, script)
	if err != nil {
		return nil, fmt.Errorf("storyboard stage: %w", err)
	}
	if len(storyboard) == 0 {
		return nil, fmt.Errorf("storyboard stage: no scenes generated")
	}

	log.Printf("[%s] Generating shot plan", taskID)
	shots, err := p.LLM.GenerateShotPlan(ctx, brief, storyboard)
	if err != nil {
		return nil, fmt.Errorf("shot plan stage: %w", err)
	}
	if len(shots) == 0 {
		return nil, fmt.Errorf("shot plan stage: no shots generated")
	}

	return &videoProject{
		Script:     script,
		Storyboard: storyboard,
		Shots:      shots,
	}, nil
}
