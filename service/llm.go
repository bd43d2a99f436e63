package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cerebrone-ai/video-content-creation-agent/models"

	"github.com/conneroisu/groq-go"
)

// VideoScript 脚本阶段的结构化输出
type VideoScript struct {
	Title         string   `json:"title"`
	Duration      int      `json:"duration"`
	ScriptContent string   `json:"script_content"`
	Tone          string   `json:"tone"`
	KeyPoints     []string `json:"key_points"`
	MusicPrompt   string   `json:"music_prompt"`
}

// StoryboardScene 分镜阶段的结构化输出（每段约 5 秒）
type StoryboardScene struct {
	Timestamp        string   `json:"timestamp"`
	SceneDescription string   `json:"scene_description"`
	CameraAngle      string   `json:"camera_angle"`
	VisualElements   []string `json:"visual_elements"`
	Transitions      string   `json:"transitions"`
}

// ShotPlan 镜头计划阶段的结构化输出，驱动后续媒体生成
type ShotPlan struct {
	Timestamp       string   `json:"timestamp"`
	AIPrompt        string   `json:"ai_prompt"`
	VoiceoverScript string   `json:"voiceover_script"`
	Captions        []string `json:"captions"`
	Mood            string   `json:"mood"`
	SpecialEffects  []string `json:"special_effects"`
}

// StructuredGenerator 结构化生成能力：每个阶段一次 LLM 调用，失败视为不透明错误
type StructuredGenerator interface {
	GenerateScript(ctx context.Context, brief models.ProjectData) (*VideoScript, error)
	GenerateStoryboard(ctx context.Context, brief models.ProjectData, script *VideoScript) ([]StoryboardScene, error)
	GenerateShotPlan(ctx context.Context, brief models.ProjectData, scenes []StoryboardScene) ([]ShotPlan, error)
	GenerateText(ctx context.Context, system, prompt string) (string, error)
}

var _ StructuredGenerator = (*GroqGenerator)(nil)

// GroqGenerator 基于 Groq JSON mode 的结构化生成实现
type GroqGenerator struct {
	client *groq.Client
	model  groq.ChatModel
}

func NewGroqGenerator(apiKey, model string) (*GroqGenerator, error) {
	client, err := groq.NewClient(apiKey)
	if err != nil {
		return nil, fmt.Errorf("create groq client: %w", err)
	}
	return &GroqGenerator{
		client: client,
		model:  groq.ChatModel(model),
	}, nil
}

func (g *GroqGenerator) GenerateScript(ctx context.Context, brief models.ProjectData) (*VideoScript, error) {
	content, err := g.generateJSON(ctx, scriptSystemPrompt, briefPrompt(brief))
	if err != nil {
		return nil, fmt.Errorf("generate script: %w", err)
	}

	var script VideoScript
	if err := json.Unmarshal([]byte(content), &script); err != nil {
		return nil, fmt.Errorf("parse script response: %w", err)
	}
	if script.ScriptContent == "" {
		return nil, fmt.Errorf("script response missing script_content")
	}
	if script.Duration == 0 {
		script.Duration = brief.Duration
	}
	return &script, nil
}

func (g *GroqGenerator) GenerateStoryboard(ctx context.Context, brief models.ProjectData, script *VideoScript) ([]StoryboardScene, error) {
	scriptJSON, _ := json.Marshal(script)
	prompt := briefPrompt(brief) + "\n\nScript: " + string(scriptJSON)

	content, err := g.generateJSON(ctx, storyboardSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate storyboard: %w", err)
	}

	scenes, err := parseJSONArray[StoryboardScene](content, []string{"scenes", "storyboard", "results"})
	if err != nil {
		return nil, fmt.Errorf("parse storyboard response: %w", err)
	}
	return scenes, nil
}

func (g *GroqGenerator) GenerateShotPlan(ctx context.Context, brief models.ProjectData, scenes []StoryboardScene) ([]ShotPlan, error) {
	scenesJSON, _ := json.Marshal(scenes)
	prompt := briefPrompt(brief) + "\n\nStoryboard: " + string(scenesJSON)

	content, err := g.generateJSON(ctx, shotSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate shot plan: %w", err)
	}

	shots, err := parseJSONArray[ShotPlan](content, []string{"shots", "shot_plan", "results"})
	if err != nil {
		return nil, fmt.Errorf("parse shot plan response: %w", err)
	}
	return shots, nil
}

func (g *GroqGenerator) GenerateText(ctx context.Context, system, prompt string) (string, error) {
	return g.doGenerate(ctx, system, prompt, false)
}

func (g *GroqGenerator) generateJSON(ctx context.Context, system, prompt string) (string, error) {
	return g.doGenerate(ctx, system, prompt, true)
}

func (g *GroqGenerator) doGenerate(ctx context.Context, systemPrompt, userPrompt string, jsonMode bool) (string, error) {
	req := groq.ChatCompletionRequest{
		Model: g.model,
		Messages: []groq.ChatCompletionMessage{
			{Role: groq.RoleSystem, Content: systemPrompt},
			{Role: groq.RoleUser, Content: userPrompt},
		},
	}
	if jsonMode {
		req.ResponseFormat = &groq.ChatResponseFormat{Type: "json_object"}
	}

	resp, err := g.client.ChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response")
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("empty response")
	}
	return content, nil
}

// briefPrompt 把项目信息拼成各阶段共用的用户消息
func briefPrompt(brief models.ProjectData) string {
	description := brief.ProjectDescription
	if brief.RefinedDescription != "" {
		description = brief.RefinedDescription
	}
	return fmt.Sprintf(`Project Title: %s
Project Description: %s
Target Audience: %s
Duration: %d seconds
Category: %s
Language: %s
Visual Style: %s`,
		brief.ProjectTitle, description, brief.TargetAudience,
		brief.Duration, brief.Category, brief.Language, brief.Style)
}

// parseJSONArray 容错解析：既接受裸数组也接受 {"key":[...]} 包装
func parseJSONArray[T any](content string, keys []string) ([]T, error) {
	var direct []T
	if err := json.Unmarshal([]byte(content), &direct); err == nil && len(direct) > 0 {
		return direct, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &wrapped); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	for _, key := range keys {
		raw, ok := wrapped[key]
		if !ok {
			continue
		}
		var items []T
		if err := json.Unmarshal(raw, &items); err == nil && len(items) > 0 {
			return items, nil
		}
	}

	for _, raw := range wrapped {
		var items []T
		if err := json.Unmarshal(raw, &items); err == nil && len(items) > 0 {
			return items, nil
		}
	}

	return nil, fmt.Errorf("no items found in response")
}
