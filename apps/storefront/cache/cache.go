package cache

import (
	"context"
	"errors"

	"go-storefront/apps/storefront/model"
)

var ErrCacheMiss = errors.New("cache miss")

// ProductCache 商品详情缓存
// 只用于公开浏览页，下单链路永远直查数据库，缓存过期不会造成超卖或错价
type ProductCache interface {
	Get(ctx context.Context, id string) (*model.Product, error)
	Set(ctx context.Context, id string, p *model.Product) error
	Delete(ctx context.Context, id string) error
}
