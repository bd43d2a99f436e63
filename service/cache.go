package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/cerebrone-ai/video-content-creation-agent/config"
	"github.com/cerebrone-ai/video-content-creation-agent/models"

	"github.com/redis/go-redis/v9"
)

// StatusCache 任务状态的 Redis 旁路缓存。
// 仅作加速批量查询用，数据库仍是权威来源。
type StatusCache struct {
	client *redis.Client
	ttl    time.Duration
}

var Cache *StatusCache

// InitStatusCache 初始化状态缓存，在 main.go 中调用
func InitStatusCache() {
	Cache = &StatusCache{
		client: redis.NewClient(&redis.Options{
			Addr:     config.AppConfig.Redis.Addr,
			Password: config.AppConfig.Redis.Password,
		}),
		ttl: 24 * time.Hour,
	}
}

func (c *StatusCache) Put(ctx context.Context, s models.StatusSummary) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, "task:"+s.ID, data, c.ttl).Err(); err != nil {
		log.Printf("[Cache] 写入状态缓存失败: %v", err)
	}
}

func (c *StatusCache) Get(ctx context.Context, id string) (models.StatusSummary, bool) {
	var s models.StatusSummary
	if c == nil || c.client == nil {
		return s, false
	}
	data, err := c.client.Get(ctx, "task:"+id).Bytes()
	if err != nil {
		return s, false
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, false
	}
	return s, true
}

func (c *StatusCache) Delete(ctx context.Context, id string) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, "task:"+id).Err()
}
