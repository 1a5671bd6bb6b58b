package service

import (
	"context"
	"errors"
	"fmt"

	"go-storefront/apps/storefront/model"
	"go-storefront/apps/storefront/store"

	"github.com/google/uuid"
)

// CartService 购物车
// 每次写入都重查库存，但只查不占：读-改-写没有加锁，
// 多端并发改同一行时后写覆盖先写，极端情况下允许超卖（接受的限制）
type CartService struct {
	products store.ProductStore
	carts    store.CartStore
	events   EventPublisher
}

func NewCartService(products store.ProductStore, carts store.CartStore, events EventPublisher) *CartService {
	return &CartService{products: products, carts: carts, events: events}
}

// CartLine 购物车行 + 商品当前信息
type CartLine struct {
	Item     model.CartItem `json:"item"`
	Product  model.Product  `json:"product"`
	Subtotal int64          `json:"subtotal"`
}

func insufficientStock(current int) error {
	return fmt.Errorf("%w (current stock: %d)", ErrInsufficientStock, current)
}

// Add 加购：已有该商品的行则累加数量，累计数量不能超过当前库存
func (s *CartService) Add(ctx context.Context, userID, productID string, quantity int) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	// 1. 商品必须存在且上架
	p, err := s.products.GetActive(ctx, productID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrProductNotFound
	}
	if err != nil {
		return err
	}

	// 2. 已有行则做累计库存校验后覆盖数量
	existing, err := s.carts.GetByUserAndProduct(ctx, userID, productID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}

	if existing != nil {
		newQuantity := existing.Quantity + quantity
		if p.StockQuantity < newQuantity {
			return insufficientStock(p.StockQuantity)
		}
		if err := s.carts.UpdateQuantity(ctx, existing.ID, newQuantity); err != nil {
			return err
		}
	} else {
		if p.StockQuantity < quantity {
			return insufficientStock(p.StockQuantity)
		}
		item := &model.CartItem{
			ID:        uuid.New().String(),
			UserID:    userID,
			ProductID: productID,
			Quantity:  quantity,
		}
		if err := s.carts.Insert(ctx, item); err != nil {
			return err
		}
	}

	if s.events != nil {
		s.events.Publish(ctx, EventCartItemAdded, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
			"quantity":   quantity,
		})
	}
	return nil
}

// UpdateQuantity 改数量：整体替换而不是累加
func (s *CartService) UpdateQuantity(ctx context.Context, userID, cartItemID string, quantity int) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	item, err := s.carts.GetByUser(ctx, userID, cartItemID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrCartItemNotFound
	}
	if err != nil {
		return err
	}

	p, err := s.products.GetActive(ctx, item.ProductID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrProductNotFound
	}
	if err != nil {
		return err
	}

	if p.StockQuantity < quantity {
		return insufficientStock(p.StockQuantity)
	}

	return s.carts.UpdateQuantity(ctx, item.ID, quantity)
}

// Remove 删行，幂等：删不存在的行不报错
func (s *CartService) Remove(ctx context.Context, userID, cartItemID string) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	return s.carts.Delete(ctx, userID, cartItemID)
}

// List 购物车行 + 合计金额
// 商品已被删掉的行直接跳过，不计入列表也不计入合计
func (s *CartService) List(ctx context.Context, userID string) ([]CartLine, int64, error) {
	if userID == "" {
		return nil, 0, ErrUnauthenticated
	}

	items, err := s.carts.ListByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	if len(items) == 0 {
		return nil, 0, nil
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.products.ListByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	byID := make(map[string]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var lines []CartLine
	var total int64
	for _, item := range items {
		p, ok := byID[item.ProductID]
		if !ok {
			continue
		}
		subtotal := p.Price * int64(item.Quantity)
		lines = append(lines, CartLine{Item: item, Product: p, Subtotal: subtotal})
		total += subtotal
	}

	return lines, total, nil
}
