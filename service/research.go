package service

import (
	"context"
	"log"
)

// RefineDescription 生成前的两段式提炼：先做研究规划，再扩写成可直接用于
// 脚本创作的描述。整个过程对核心流程是黑盒，任一步失败都回退到原始描述。
func RefineDescription(ctx context.Context, llm StructuredGenerator, description string) string {
	plan, err := llm.GenerateText(ctx, plannerSystemPrompt,
		"This is a video description which needs to be refined for video generation: "+description)
	if err != nil {
		log.Printf("[Research] 规划阶段失败，使用原始描述: %v", err)
		return description
	}

	refined, err := llm.GenerateText(ctx, researcherSystemPrompt, plan)
	if err != nil {
		log.Printf("[Research] 扩写阶段失败，使用原始描述: %v", err)
		return description
	}
	if refined == "" {
		return description
	}
	return refined
}
