package service

import (
	"context"
	"errors"
	"testing"

	"go-storefront/apps/storefront/model"
	"go-storefront/pkg/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingOrder() *mockOrderStore {
	return &mockOrderStore{orders: []model.Order{
		{ID: "o-1", UserID: "user-1", TotalAmount: 2000, Status: model.OrderStatusPending},
	}}
}

func TestPaymentConfirm_Success(t *testing.T) {
	orders := pendingOrder()
	client := &mockPayClient{}
	svc := NewPaymentService(orders, client, nil)

	err := svc.Confirm(context.Background(), "user-1", "o-1", "pay-key-1", 2000)

	require.NoError(t, err)
	assert.Equal(t, 1, client.calls)
	assert.Equal(t, model.OrderStatusConfirmed, orders.get("o-1").Status)
}

func TestPaymentConfirm_Replay(t *testing.T) {
	// 同一个订单的成功回调来两次：第一次确认，第二次必须拒绝且状态不变
	orders := pendingOrder()
	client := &mockPayClient{}
	svc := NewPaymentService(orders, client, nil)

	require.NoError(t, svc.Confirm(context.Background(), "user-1", "o-1", "ref1", 2000))

	err := svc.Confirm(context.Background(), "user-1", "o-1", "ref2", 2000)

	require.ErrorIs(t, err, ErrAlreadyProcessed)
	assert.Equal(t, model.OrderStatusConfirmed, orders.get("o-1").Status)
	assert.Equal(t, int64(2000), orders.get("o-1").TotalAmount)
	assert.Equal(t, 1, client.calls)
}

func TestPaymentConfirm_AmountMismatch(t *testing.T) {
	// 前端带回来的金额和订单总额差 1 元也不行，且不会去调网关
	orders := pendingOrder()
	client := &mockPayClient{}
	svc := NewPaymentService(orders, client, nil)

	err := svc.Confirm(context.Background(), "user-1", "o-1", "ref1", 1999)

	require.ErrorIs(t, err, ErrAmountMismatch)
	assert.Equal(t, model.OrderStatusPending, orders.get("o-1").Status)
	assert.Zero(t, client.calls)
}

func TestPaymentConfirm_NotOwned(t *testing.T) {
	orders := pendingOrder()
	svc := NewPaymentService(orders, &mockPayClient{}, nil)

	err := svc.Confirm(context.Background(), "other-user", "o-1", "ref1", 2000)

	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestPaymentConfirm_Declined(t *testing.T) {
	// 网关拒付：报 PaymentDeclined，订单保持 pending 等待重试或失败回调
	orders := pendingOrder()
	client := &mockPayClient{err: payment.ErrDeclined}
	svc := NewPaymentService(orders, client, nil)

	err := svc.Confirm(context.Background(), "user-1", "o-1", "ref1", 2000)

	require.ErrorIs(t, err, ErrPaymentDeclined)
	assert.Equal(t, model.OrderStatusPending, orders.get("o-1").Status)
}

func TestPaymentConfirm_NetworkError(t *testing.T) {
	// 网络错误不等于拒付，原样上抛且不改状态
	orders := pendingOrder()
	netErr := errors.New("connection reset")
	client := &mockPayClient{err: netErr}
	svc := NewPaymentService(orders, client, nil)

	err := svc.Confirm(context.Background(), "user-1", "o-1", "ref1", 2000)

	require.ErrorIs(t, err, netErr)
	assert.NotErrorIs(t, err, ErrPaymentDeclined)
	assert.Equal(t, model.OrderStatusPending, orders.get("o-1").Status)
}

func TestPaymentConfirm_PublishesEvent(t *testing.T) {
	orders := pendingOrder()
	events := &mockPublisher{}
	svc := NewPaymentService(orders, &mockPayClient{}, events)

	require.NoError(t, svc.Confirm(context.Background(), "user-1", "o-1", "ref1", 2000))

	assert.Equal(t, []string{EventOrderConfirmed}, events.events)
}

func TestPaymentFail_CancelsPendingOrder(t *testing.T) {
	orders := pendingOrder()
	svc := NewPaymentService(orders, &mockPayClient{}, nil)

	err := svc.Fail(context.Background(), "user-1", "o-1")

	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, orders.get("o-1").Status)
}

func TestPaymentFail_DoesNotCancelConfirmedOrder(t *testing.T) {
	// 迟到的失败回调不能取消已确认的订单
	orders := &mockOrderStore{orders: []model.Order{
		{ID: "o-1", UserID: "user-1", TotalAmount: 2000, Status: model.OrderStatusConfirmed},
	}}
	svc := NewPaymentService(orders, &mockPayClient{}, nil)

	err := svc.Fail(context.Background(), "user-1", "o-1")

	require.ErrorIs(t, err, ErrAlreadyProcessed)
	assert.Equal(t, model.OrderStatusConfirmed, orders.get("o-1").Status)
}

func TestPaymentFail_NotFound(t *testing.T) {
	svc := NewPaymentService(&mockOrderStore{}, &mockPayClient{}, nil)

	err := svc.Fail(context.Background(), "user-1", "o-missing")

	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestPaymentConfirm_Unauthenticated(t *testing.T) {
	svc := NewPaymentService(pendingOrder(), &mockPayClient{}, nil)

	assert.ErrorIs(t, svc.Confirm(context.Background(), "", "o-1", "ref1", 2000), ErrUnauthenticated)
	assert.ErrorIs(t, svc.Fail(context.Background(), "", "o-1"), ErrUnauthenticated)
}
