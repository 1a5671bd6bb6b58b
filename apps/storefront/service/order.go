package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"go-storefront/apps/storefront/model"
	"go-storefront/apps/storefront/store"

	"github.com/google/uuid"
)

// OrderService 下单工作流
// 下单时以商品表的当前价格和库存为准，购物车里缓存的任何东西都不可信
type OrderService struct {
	products store.ProductStore
	carts    store.CartStore
	orders   store.OrderStore
	events   EventPublisher
}

func NewOrderService(products store.ProductStore, carts store.CartStore, orders store.OrderStore, events EventPublisher) *OrderService {
	return &OrderService{products: products, carts: carts, orders: orders, events: events}
}

// OrderDetail 订单 + 明细
type OrderDetail struct {
	Order model.Order       `json:"order"`
	Items []model.OrderItem `json:"items"`
}

func validateAddress(addr model.ShippingAddress) error {
	if addr.Name == "" || addr.Phone == "" || addr.Address == "" || addr.PostalCode == "" {
		return fmt.Errorf("%w: shipping address requires name, phone, address and postal code", ErrInvalidInput)
	}
	return nil
}

// Create 把购物车快照成订单
// 1. 校验登录和地址
// 2. 取购物车，空车直接拒绝
// 3. 按当前上架商品重新校验库存、用当前价格算总额
// 4. 先写订单主表再写明细，明细失败则补偿删除主表
// 5. 全部成功后清空整个购物车
func (s *OrderService) Create(ctx context.Context, userID string, addr model.ShippingAddress, orderNote string) (string, error) {
	if userID == "" {
		return "", ErrUnauthenticated
	}
	if err := validateAddress(addr); err != nil {
		return "", err
	}

	cartItems, err := s.carts.ListByUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if len(cartItems) == 0 {
		return "", ErrEmptyCart
	}

	productIDs := make([]string, 0, len(cartItems))
	for _, item := range cartItems {
		productIDs = append(productIDs, item.ProductID)
	}

	products, err := s.products.ListActiveByIDs(ctx, productIDs)
	if err != nil {
		return "", err
	}
	byID := make(map[string]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	orderID := uuid.New().String()
	var totalAmount int64
	orderItems := make([]model.OrderItem, 0, len(cartItems))

	for _, cartItem := range cartItems {
		p, ok := byID[cartItem.ProductID]
		if !ok {
			// 加购之后商品被下架/删除
			return "", fmt.Errorf("%w (id: %s)", ErrProductNotFound, cartItem.ProductID)
		}
		if p.StockQuantity < cartItem.Quantity {
			return "", fmt.Errorf("%w: %s (current stock: %d)", ErrInsufficientStock, p.Name, p.StockQuantity)
		}

		totalAmount += p.Price * int64(cartItem.Quantity)

		// 名称和价格在这里定格成快照
		orderItems = append(orderItems, model.OrderItem{
			ID:          uuid.New().String(),
			OrderID:     orderID,
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    cartItem.Quantity,
			Price:       p.Price,
		})
	}

	newOrder := &model.Order{
		ID:              orderID,
		UserID:          userID,
		TotalAmount:     totalAmount,
		Status:          model.OrderStatusPending,
		ShippingAddress: addr,
		OrderNote:       orderNote,
	}

	if err := s.orders.Insert(ctx, newOrder); err != nil {
		return "", err
	}

	if err := s.orders.InsertItems(ctx, orderItems); err != nil {
		// 明细没落库，把刚建的订单删掉（两步补偿，不是真事务）
		if delErr := s.orders.Delete(ctx, orderID); delErr != nil {
			log.Printf("CRITICAL: failed to roll back order %s after item insert failure: %v", orderID, delErr)
		}
		return "", fmt.Errorf("create order items: %w", err)
	}

	// 下单成功清空整个购物车；清失败不影响订单，打日志等人工处理
	if err := s.carts.DeleteByUser(ctx, userID); err != nil {
		log.Printf("Failed to clear cart for user %s after order %s: %v", userID, orderID, err)
	}

	if s.events != nil {
		s.events.Publish(ctx, EventOrderCreated, map[string]interface{}{
			"order_id":     orderID,
			"user_id":      userID,
			"total_amount": totalAmount,
		})
	}

	return orderID, nil
}

// Get 本人订单详情（结算页取应付金额用）
func (s *OrderService) Get(ctx context.Context, userID, orderID string) (*OrderDetail, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	o, err := s.orders.GetByUser(ctx, userID, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := s.orders.ListItems(ctx, orderID)
	if err != nil {
		return nil, err
	}

	return &OrderDetail{Order: *o, Items: items}, nil
}

// List 本人订单列表，新的在前
func (s *OrderService) List(ctx context.Context, userID string) ([]model.Order, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	return s.orders.ListByUser(ctx, userID)
}
