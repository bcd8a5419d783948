package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/feedgraph/internal/model"
)

// EntityCache 点查前置的读穿透缓存（user / post / 关系存在性）。
// 纯优化：每条缓存读取都有正确的非缓存回退；更新先失效再确认。
type EntityCache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *EntityCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &EntityCache{client: client, ttl: ttl}
}

func userKey(id string) string { return fmt.Sprintf("user:%s", id) }
func postKey(id string) string { return fmt.Sprintf("post:%s", id) }

func (c *EntityCache) GetUser(ctx context.Context, id string) (*model.User, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		return nil, false
	}
	var u model.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, false
	}
	return &u, true
}

func (c *EntityCache) SetUser(ctx context.Context, u *model.User) {
	if c == nil || c.client == nil || u == nil {
		return
	}
	if payload, err := json.Marshal(u); err == nil {
		_ = c.client.Set(ctx, userKey(u.ID), payload, c.ttl).Err()
	}
}

// MGetUsers 批量取用户，返回命中 map 与未命中 id 列表
func (c *EntityCache) MGetUsers(ctx context.Context, ids []string) (map[string]*model.User, []string) {
	found := make(map[string]*model.User, len(ids))
	if c == nil || c.client == nil || len(ids) == 0 {
		return found, ids
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = userKey(id)
	}
	vals, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return found, ids
	}
	missing := make([]string, 0, len(ids))
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			missing = append(missing, ids[i])
			continue
		}
		var u model.User
		if uErr := json.Unmarshal([]byte(str), &u); uErr != nil {
			missing = append(missing, ids[i])
			continue
		}
		found[ids[i]] = &u
	}
	return found, missing
}

// InvalidateUser 必须在写库前调用，写确认前缓存条目已不可见
func (c *EntityCache) InvalidateUser(ctx context.Context, id string) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, userKey(id)).Err()
}

func (c *EntityCache) GetPost(ctx context.Context, id string) (*model.Post, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, postKey(id)).Bytes()
	if err != nil {
		return nil, false
	}
	var p model.Post
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, false
	}
	return &p, true
}

func (c *EntityCache) SetPost(ctx context.Context, p *model.Post) {
	if c == nil || c.client == nil || p == nil {
		return
	}
	if payload, err := json.Marshal(p); err == nil {
		_ = c.client.Set(ctx, postKey(p.ID), payload, c.ttl).Err()
	}
}

func (c *EntityCache) InvalidatePost(ctx context.Context, id string) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, postKey(id)).Err()
}
