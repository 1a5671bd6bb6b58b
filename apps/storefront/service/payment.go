package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"go-storefront/apps/storefront/model"
	"go-storefront/apps/storefront/store"
	"go-storefront/pkg/payment"
)

// PaymentService 支付回调对账
// 订单状态只由这里从 pending 推到 confirmed 或 cancelled
type PaymentService struct {
	orders store.OrderStore
	client payment.Client
	events EventPublisher
}

func NewPaymentService(orders store.OrderStore, client payment.Client, events EventPublisher) *PaymentService {
	return &PaymentService{orders: orders, client: client, events: events}
}

// Confirm 支付成功回调
// 1. 订单必须存在且属于本人
// 2. 必须还在 pending，拦掉重放的回调
// 3. 金额必须和下单时算定的总额一致，防止前端带回来的金额被篡改
// 4. 调网关承认接口，拒付时订单保持 pending 不动
// 5. 带前置状态条件把 pending 推成 confirmed
func (s *PaymentService) Confirm(ctx context.Context, userID, orderID, paymentKey string, amount int64) error {
	if userID == "" {
		return ErrUnauthenticated
	}

	o, err := s.orders.GetByUser(ctx, userID, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrOrderNotFound
	}
	if err != nil {
		return err
	}

	if o.Status != model.OrderStatusPending {
		return ErrAlreadyProcessed
	}

	if o.TotalAmount != amount {
		return ErrAmountMismatch
	}

	if err := s.client.Authorize(ctx, paymentKey, orderID, amount); err != nil {
		if errors.Is(err, payment.ErrDeclined) {
			return fmt.Errorf("%w: %v", ErrPaymentDeclined, err)
		}
		// 网络层错误原样上抛，调用方可以重试回调
		return err
	}

	rows, err := s.orders.UpdateStatusFrom(ctx, orderID, model.OrderStatusPending, model.OrderStatusConfirmed)
	if err != nil {
		// 钱收了但状态没推过去，必须打出来等人工介入
		log.Printf("CRITICAL: payment authorized but failed to confirm order %s: %v", orderID, err)
		return err
	}
	if rows == 0 {
		// 并发回调抢先处理掉了
		return ErrAlreadyProcessed
	}

	if s.events != nil {
		s.events.Publish(ctx, EventOrderConfirmed, map[string]interface{}{
			"order_id":    orderID,
			"user_id":     userID,
			"payment_key": paymentKey,
			"amount":      amount,
		})
	}

	log.Printf("Order %s confirmed (amount: %d)", orderID, amount)
	return nil
}

// Fail 支付失败回调，把 pending 订单改成 cancelled
// 带 pending 前置条件：已 confirmed 的订单不会被迟到的失败回调取消
func (s *PaymentService) Fail(ctx context.Context, userID, orderID string) error {
	if userID == "" {
		return ErrUnauthenticated
	}

	if _, err := s.orders.GetByUser(ctx, userID, orderID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrOrderNotFound
		}
		return err
	}

	rows, err := s.orders.UpdateStatusFrom(ctx, orderID, model.OrderStatusPending, model.OrderStatusCancelled)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrAlreadyProcessed
	}

	if s.events != nil {
		s.events.Publish(ctx, EventOrderCancelled, map[string]interface{}{
			"order_id": orderID,
			"user_id":  userID,
		})
	}

	log.Printf("Order %s cancelled after payment failure", orderID)
	return nil
}
