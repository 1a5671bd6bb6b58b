package service

import (
	"context"
	"errors"
	"log"

	"go-storefront/apps/storefront/cache"
	"go-storefront/apps/storefront/model"
	"go-storefront/apps/storefront/store"
	"go-storefront/pkg/search"

	"golang.org/x/sync/singleflight"
)

// Searcher 商品全文检索口（Elasticsearch）
type Searcher interface {
	Search(ctx context.Context, query string) ([]string, error)
	IndexProduct(ctx context.Context, doc search.ProductDoc) error
}

// CatalogService 公开目录读取
// cache 和 searcher 都可以为 nil：没配 Redis 就直查库，没配 ES 就走 SQL LIKE
type CatalogService struct {
	products store.ProductStore
	cache    cache.ProductCache
	searcher Searcher
	sfg      singleflight.Group // 防缓存击穿
}

func NewCatalogService(products store.ProductStore, productCache cache.ProductCache, searcher Searcher) *CatalogService {
	return &CatalogService{products: products, cache: productCache, searcher: searcher}
}

// ListProducts 上架商品列表，category 为空则全量
func (s *CatalogService) ListProducts(ctx context.Context, category string) ([]model.Product, error) {
	return s.products.ListActive(ctx, category)
}

// GetProduct 商品详情，走缓存
// 缓存出错只打日志，永远能从数据库兜底
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	if s.cache == nil {
		return s.getFromStore(ctx, id)
	}

	// singleflight 保证同一商品的并发未命中只回源一次
	v, err, _ := s.sfg.Do(id, func() (interface{}, error) {
		p, err := s.cache.Get(ctx, id)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("product cache get error: %v", err)
		}

		p, errGet := s.getFromStore(ctx, id)
		if errGet != nil {
			return nil, errGet
		}

		go func() {
			if errSet := s.cache.Set(context.Background(), id, p); errSet != nil {
				log.Printf("product cache set error: %v", errSet)
			}
		}()

		return p, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*model.Product), nil
}

func (s *CatalogService) getFromStore(ctx context.Context, id string) (*model.Product, error) {
	p, err := s.products.GetActive(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// FeaturedProducts 首页用，最新上架的前 N 个
func (s *CatalogService) FeaturedProducts(ctx context.Context, limit int) ([]model.Product, error) {
	if limit <= 0 {
		limit = 8
	}
	return s.products.ListRecent(ctx, limit)
}

// ListCategories 去重后的分类列表
func (s *CatalogService) ListCategories(ctx context.Context) ([]string, error) {
	return s.products.ListCategories(ctx)
}

// SearchProducts 关键词搜索
// ES 可用时按相关度排序返回，ES 出错退回 SQL LIKE
func (s *CatalogService) SearchProducts(ctx context.Context, query string) ([]model.Product, error) {
	if s.searcher == nil {
		return s.products.SearchLike(ctx, query)
	}

	ids, err := s.searcher.Search(ctx, query)
	if err != nil {
		log.Printf("elasticsearch search error, falling back to SQL: %v", err)
		return s.products.SearchLike(ctx, query)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	products, err := s.products.ListActiveByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	// 按 ES 给的相关度顺序重排
	byID := make(map[string]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	ranked := make([]model.Product, 0, len(products))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ranked = append(ranked, p)
		}
	}
	return ranked, nil
}

// Reindex 把全部上架商品重建进 ES 索引，启动时调一次
func (s *CatalogService) Reindex(ctx context.Context) error {
	if s.searcher == nil {
		return nil
	}

	products, err := s.products.ListActive(ctx, "")
	if err != nil {
		return err
	}

	for _, p := range products {
		doc := search.ProductDoc{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Category:    p.Category,
			Price:       p.Price,
		}
		if err := s.searcher.IndexProduct(ctx, doc); err != nil {
			log.Printf("Failed to index product %s: %v", p.ID, err)
		}
	}

	log.Printf("Reindexed %d products", len(products))
	return nil
}
