package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cerebrone-ai/video-content-creation-agent/models"
)

// ComposeResult 时间轴合成结果
type ComposeResult struct {
	VideoURL     string `json:"video_url"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// MediaGenerator 外部媒体生成能力，全部为阻塞调用，失败为不透明错误
type MediaGenerator interface {
	GenerateImage(ctx context.Context, prompt, style string) (string, error)
	ImageToVideo(ctx context.Context, prompt, imageURL, style string) (string, error)
	GenerateSpeech(ctx context.Context, text, language string) (string, error)
	GenerateMusic(ctx context.Context, prompt string) (string, error)
	Compose(ctx context.Context, tracks models.TrackList) (*ComposeResult, error)
}

var _ MediaGenerator = (*FalClient)(nil)

// FalClient fal.ai 同步模式 HTTP 客户端
type FalClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewFalClient(baseURL, apiKey string) *FalClient {
	return &FalClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		// 媒体生成较慢，超时放宽
		HTTPClient: &http.Client{Timeout: 15 * time.Minute},
	}
}

// 按风格增强生图 prompt（与脚本阶段的风格约定一致）
var styleImagePrompts = map[string]string{
	"realistic":    "Photorealistic cinematic shot, professional photography, natural lighting, authentic cultural details",
	"cartoonish":   "Vibrant cartoon style, clean lines, playful aesthetic with local color palettes",
	"anime":        "Japanese anime style, cel shaded, detailed backgrounds with local architecture",
	"doodle":       "Hand-drawn doodle style, sketchy lines, simple whimsical shapes",
	"watercolor":   "Elegant watercolor style, soft color blending, artistic brush strokes",
	"pixel_art":    "Retro pixel art, 16-bit aesthetic, limited traditional color palette",
	"oil_painting": "Classical oil painting, thick brush strokes, rich color depth, canvas texture",
	"comic_book":   "Dynamic comic book style, strong outlines, halftone patterns, dramatic shadows",
}

// 按风格增强图生视频的运动描述
var styleMotionPrompts = map[string]string{
	"realistic":    "Natural and fluid camera movement",
	"cartoonish":   "Playful animation style movement",
	"anime":        "Dramatic anime-style camera work",
	"doodle":       "Hand-drawn animation feel",
	"watercolor":   "Gentle flowing transitions",
	"pixel_art":    "Retro game-style movement",
	"oil_painting": "Subtle artistic transitions",
	"comic_book":   "Dynamic action-oriented transitions",
}

// 语言 -> 声音映射，未知语言回落到默认英语声音
var voiceMap = map[string]string{
	"english": "Jennifer (English (US)/American)",
	"hindi":   "Riya (Hindi/Indian)",
	"punjabi": "Riya (Hindi/Indian)",
	"telugu":  "Riya (Hindi/Indian)",
	"tamil":   "Riya (Hindi/Indian)",
}

func (c *FalClient) GenerateImage(ctx context.Context, prompt, style string) (string, error) {
	enhanced := prompt
	if sp, ok := styleImagePrompts[style]; ok {
		enhanced = fmt.Sprintf("%s\nScene content: %s\nAspect ratio: 16:9 cinematic", sp, prompt)
	}

	var result struct {
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	}
	err := c.doPost(ctx, "/fal-ai/flux/dev", map[string]interface{}{
		"prompt":       enhanced,
		"style_preset": style,
	}, &result)
	if err != nil {
		return "", fmt.Errorf("image generation failed: %w", err)
	}
	if len(result.Images) == 0 || result.Images[0].URL == "" {
		return "", fmt.Errorf("image generation returned no images")
	}
	return result.Images[0].URL, nil
}

func (c *FalClient) ImageToVideo(ctx context.Context, prompt, imageURL, style string) (string, error) {
	motion := styleMotionPrompts[style]
	if motion == "" {
		motion = "Smooth and professional camera motion"
	}
	enhanced := fmt.Sprintf("5-second %s style sequence: %s\nMovement: %s\nDuration: Exactly 5 seconds", style, prompt, motion)

	var result struct {
		Video struct {
			URL string `json:"url"`
		} `json:"video"`
	}
	err := c.doPost(ctx, "/fal-ai/kling-video/v1/standard/image-to-video", map[string]interface{}{
		"prompt":    enhanced,
		"image_url": imageURL,
		"style":     style,
	}, &result)
	if err != nil {
		return "", fmt.Errorf("image-to-video failed: %w", err)
	}
	if result.Video.URL == "" {
		return "", fmt.Errorf("image-to-video returned no video")
	}
	return result.Video.URL, nil
}

func (c *FalClient) GenerateSpeech(ctx context.Context, text, language string) (string, error) {
	voice, ok := voiceMap[language]
	if !ok {
		voice = voiceMap["english"]
	}

	var result struct {
		Audio struct {
			URL string `json:"url"`
		} `json:"audio"`
	}
	err := c.doPost(ctx, "/fal-ai/playai/tts/v3", map[string]interface{}{
		"input": text,
		"voice": voice,
	}, &result)
	if err != nil {
		return "", fmt.Errorf("speech generation failed: %w", err)
	}
	if result.Audio.URL == "" {
		return "", fmt.Errorf("speech generation returned no audio")
	}
	return result.Audio.URL, nil
}

func (c *FalClient) GenerateMusic(ctx context.Context, prompt string) (string, error) {
	enhanced := fmt.Sprintf("High-quality background music: %s\nQuality: Professional studio quality\nPurpose: Video background music", prompt)

	var result struct {
		AudioFile struct {
			URL string `json:"url"`
		} `json:"audio_file"`
	}
	err := c.doPost(ctx, "/fal-ai/stable-audio", map[string]interface{}{
		"prompt": enhanced,
	}, &result)
	if err != nil {
		return "", fmt.Errorf("music generation failed: %w", err)
	}
	if result.AudioFile.URL == "" {
		return "", fmt.Errorf("music generation returned no audio")
	}
	return result.AudioFile.URL, nil
}

func (c *FalClient) Compose(ctx context.Context, tracks models.TrackList) (*ComposeResult, error) {
	var result ComposeResult
	err := c.doPost(ctx, "/fal-ai/ffmpeg-api/compose", map[string]interface{}{
		"tracks": tracks,
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("compose failed: %w", err)
	}
	if result.VideoURL == "" {
		return nil, fmt.Errorf("compose returned no video_url")
	}
	return &result, nil
}

func (c *FalClient) doPost(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Key "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("vendor status %d: %s", resp.StatusCode, string(b))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response failed: %w", err)
	}
	return nil
}
