package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// GetOrLoadJSON GetOrLoad 的类型化版本；load 返回 nil 时缓存 "null"，读出为 nil
func GetOrLoadJSON[T any](c *Cache, ctx context.Context, key string, ttl time.Duration,
	load func(ctx context.Context) (*T, error)) (*T, error) {
	raw, err := c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return nil, err
	}
	var out *T
	if err := json.Unmarshal(raw, &out); err != nil {
		// 缓存里是坏数据：删掉，下次回源
		_ = c.Delete(ctx, key)
		return nil, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return out, nil
}
