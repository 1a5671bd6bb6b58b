package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-storefront/apps/storefront/model"

	"github.com/redis/go-redis/v9"
)

// 详情缓存 60 秒，短 TTL 让后台改价后很快可见
const productTTL = 60 * time.Second

type RedisProductCache struct {
	rdb *redis.Client
}

func NewRedisProductCache(rdb *redis.Client) *RedisProductCache {
	return &RedisProductCache{rdb: rdb}
}

func productKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

func (c *RedisProductCache) Get(ctx context.Context, id string) (*model.Product, error) {
	val, err := c.rdb.Get(ctx, productKey(id)).Result()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var p model.Product
	if err := json.Unmarshal([]byte(val), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *RedisProductCache) Set(ctx context.Context, id string, p *model.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, productKey(id), data, productTTL).Err()
}

func (c *RedisProductCache) Delete(ctx context.Context, id string) error {
	return c.rdb.Del(ctx, productKey(id)).Err()
}
