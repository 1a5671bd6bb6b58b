package store

import (
	"context"
	"errors"

	"go-storefront/apps/storefront/model"
)

// ErrNotFound 单行查询没查到
var ErrNotFound = errors.New("record not found")

// ProductStore 商品读取口
type ProductStore interface {
	// GetActive 按 ID 取一个上架商品
	GetActive(ctx context.Context, id string) (*model.Product, error)
	// ListActive 上架商品列表，category 为空则不过滤，按创建时间倒序
	ListActive(ctx context.Context, category string) ([]model.Product, error)
	// ListActiveByIDs 按 ID 集合取上架商品（下单校验用）
	ListActiveByIDs(ctx context.Context, ids []string) ([]model.Product, error)
	// ListByIDs 按 ID 集合取商品，不过滤上下架（购物车展示用）
	ListByIDs(ctx context.Context, ids []string) ([]model.Product, error)
	// ListRecent 最新上架的前 N 个
	ListRecent(ctx context.Context, limit int) ([]model.Product, error)
	// ListCategories 去重后的分类列表
	ListCategories(ctx context.Context) ([]string, error)
	// SearchLike SQL LIKE 兜底搜索
	SearchLike(ctx context.Context, query string) ([]model.Product, error)
}

// CartStore 购物车持久化口
type CartStore interface {
	ListByUser(ctx context.Context, userID string) ([]model.CartItem, error)
	// GetByUser 按 ID 取本人购物车行，不是本人的返回 ErrNotFound
	GetByUser(ctx context.Context, userID, id string) (*model.CartItem, error)
	GetByUserAndProduct(ctx context.Context, userID, productID string) (*model.CartItem, error)
	Insert(ctx context.Context, item *model.CartItem) error
	UpdateQuantity(ctx context.Context, id string, quantity int) error
	// Delete 幂等删除，行不存在不算错
	Delete(ctx context.Context, userID, id string) error
	DeleteByUser(ctx context.Context, userID string) error
}

// OrderStore 订单持久化口
type OrderStore interface {
	Insert(ctx context.Context, o *model.Order) error
	InsertItems(ctx context.Context, items []model.OrderItem) error
	// Delete 补偿删除刚建的订单行，幂等
	Delete(ctx context.Context, id string) error
	GetByUser(ctx context.Context, userID, id string) (*model.Order, error)
	ListByUser(ctx context.Context, userID string) ([]model.Order, error)
	ListItems(ctx context.Context, orderID string) ([]model.OrderItem, error)
	// UpdateStatusFrom 带前置状态的状态流转，返回影响行数
	// 返回 0 说明订单已不在 from 状态（比如并发回调已经处理过）
	UpdateStatusFrom(ctx context.Context, id, from, to string) (int64, error)
}
