package store

import (
	"context"
	"errors"
	"fmt"

	"go-storefront/apps/storefront/model"

	"gorm.io/gorm"
)

type GormOrderStore struct {
	db *gorm.DB
}

func NewGormOrderStore(db *gorm.DB) *GormOrderStore {
	return &GormOrderStore{db: db}
}

func (s *GormOrderStore) Insert(ctx context.Context, o *model.Order) error {
	// 注意：明细不在这里级联写，Items 由 InsertItems 单独落库，
	// 这样明细失败时才有机会做补偿删除
	if err := s.db.WithContext(ctx).Omit("Items").Create(o).Error; err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (s *GormOrderStore) InsertItems(ctx context.Context, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&items).Error; err != nil {
		return fmt.Errorf("insert order items: %w", err)
	}
	return nil
}

func (s *GormOrderStore) Delete(ctx context.Context, id string) error {
	// 删不存在的行不算错，补偿动作必须可重入
	err := s.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Order{}).Error
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}

func (s *GormOrderStore) GetByUser(ctx context.Context, userID, id string) (*model.Order, error) {
	var o model.Order
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}
	return &o, nil
}

func (s *GormOrderStore) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	var orders []model.Order
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *GormOrderStore) ListItems(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	var items []model.OrderItem
	err := s.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at asc").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	return items, nil
}

func (s *GormOrderStore) UpdateStatusFrom(ctx context.Context, id, from, to string) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return 0, fmt.Errorf("update order status: %w", res.Error)
	}
	return res.RowsAffected, nil
}
