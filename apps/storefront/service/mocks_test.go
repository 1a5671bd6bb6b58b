package service

import (
	"context"
	"strings"
	"sync"

	"go-storefront/apps/storefront/cache"
	"go-storefront/apps/storefront/model"
	"go-storefront/apps/storefront/store"
	"go-storefront/pkg/search"
)

type mockProductStore struct {
	products []model.Product
	err      error
}

func (m *mockProductStore) GetActive(_ context.Context, id string) (*model.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, p := range m.products {
		if p.ID == id && p.IsActive {
			cp := p
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockProductStore) ListActive(_ context.Context, category string) ([]model.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []model.Product
	for _, p := range m.products {
		if !p.IsActive {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *mockProductStore) ListActiveByIDs(_ context.Context, ids []string) ([]model.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []model.Product
	for _, p := range m.products {
		if p.IsActive && want[p.ID] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProductStore) ListByIDs(_ context.Context, ids []string) ([]model.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []model.Product
	for _, p := range m.products {
		if want[p.ID] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProductStore) ListRecent(_ context.Context, limit int) ([]model.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []model.Product
	for _, p := range m.products {
		if !p.IsActive {
			continue
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockProductStore) ListCategories(_ context.Context) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	seen := make(map[string]bool)
	var out []string
	for _, p := range m.products {
		if p.IsActive && p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out, nil
}

func (m *mockProductStore) SearchLike(_ context.Context, query string) ([]model.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []model.Product
	for _, p := range m.products {
		if p.IsActive && strings.Contains(p.Name, query) {
			out = append(out, p)
		}
	}
	return out, nil
}

type mockCartStore struct {
	items     []model.CartItem
	listErr   error
	insertErr error
	updateErr error
	deleteErr error
	cleared   bool
}

func (m *mockCartStore) ListByUser(_ context.Context, userID string) ([]model.CartItem, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []model.CartItem
	for _, item := range m.items {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *mockCartStore) GetByUser(_ context.Context, userID, id string) (*model.CartItem, error) {
	for _, item := range m.items {
		if item.ID == id && item.UserID == userID {
			cp := item
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockCartStore) GetByUserAndProduct(_ context.Context, userID, productID string) (*model.CartItem, error) {
	for _, item := range m.items {
		if item.UserID == userID && item.ProductID == productID {
			cp := item
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockCartStore) Insert(_ context.Context, item *model.CartItem) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.items = append(m.items, *item)
	return nil
}

func (m *mockCartStore) UpdateQuantity(_ context.Context, id string, quantity int) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].Quantity = quantity
			return nil
		}
	}
	return nil
}

func (m *mockCartStore) Delete(_ context.Context, userID, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for i, item := range m.items {
		if item.ID == id && item.UserID == userID {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockCartStore) DeleteByUser(_ context.Context, userID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	var kept []model.CartItem
	for _, item := range m.items {
		if item.UserID != userID {
			kept = append(kept, item)
		}
	}
	m.items = kept
	m.cleared = true
	return nil
}

type mockOrderStore struct {
	orders        []model.Order
	items         []model.OrderItem
	insertErr     error
	itemsErr      error
	deleteErr     error
	deletedOrders []string
}

func (m *mockOrderStore) Insert(_ context.Context, o *model.Order) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.orders = append(m.orders, *o)
	return nil
}

func (m *mockOrderStore) InsertItems(_ context.Context, items []model.OrderItem) error {
	if m.itemsErr != nil {
		return m.itemsErr
	}
	m.items = append(m.items, items...)
	return nil
}

func (m *mockOrderStore) Delete(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletedOrders = append(m.deletedOrders, id)
	for i, o := range m.orders {
		if o.ID == id {
			m.orders = append(m.orders[:i], m.orders[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockOrderStore) GetByUser(_ context.Context, userID, id string) (*model.Order, error) {
	for _, o := range m.orders {
		if o.ID == id && o.UserID == userID {
			cp := o
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockOrderStore) ListByUser(_ context.Context, userID string) ([]model.Order, error) {
	var out []model.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockOrderStore) ListItems(_ context.Context, orderID string) ([]model.OrderItem, error) {
	var out []model.OrderItem
	for _, item := range m.items {
		if item.OrderID == orderID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *mockOrderStore) UpdateStatusFrom(_ context.Context, id, from, to string) (int64, error) {
	for i := range m.orders {
		if m.orders[i].ID == id {
			if m.orders[i].Status != from {
				return 0, nil
			}
			m.orders[i].Status = to
			return 1, nil
		}
	}
	return 0, nil
}

// get 测试断言用
func (m *mockOrderStore) get(id string) *model.Order {
	for i := range m.orders {
		if m.orders[i].ID == id {
			return &m.orders[i]
		}
	}
	return nil
}

type mockPayClient struct {
	err   error
	calls int
}

func (m *mockPayClient) Authorize(_ context.Context, paymentKey, orderID string, amount int64) error {
	m.calls++
	return m.err
}

type mockPublisher struct {
	events []string
}

func (m *mockPublisher) Publish(_ context.Context, event string, _ interface{}) {
	m.events = append(m.events, event)
}

type mockProductCache struct {
	m       sync.RWMutex
	product *model.Product
	getErr  error
	sets    int
}

func (m *mockProductCache) Get(_ context.Context, _ string) (*model.Product, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.product == nil {
		return nil, cache.ErrCacheMiss
	}
	return m.product, nil
}

func (m *mockProductCache) Set(_ context.Context, _ string, p *model.Product) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.product = p
	m.sets++
	return nil
}

func (m *mockProductCache) Delete(_ context.Context, _ string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.product = nil
	return nil
}

type mockSearcher struct {
	ids     []string
	err     error
	indexed []search.ProductDoc
}

func (m *mockSearcher) Search(_ context.Context, _ string) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.ids, nil
}

func (m *mockSearcher) IndexProduct(_ context.Context, doc search.ProductDoc) error {
	m.indexed = append(m.indexed, doc)
	return nil
}
