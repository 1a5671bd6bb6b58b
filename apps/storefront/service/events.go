package service

import "context"

// EventPublisher 订单生命周期事件出口（RabbitMQ）
// 发布失败不影响主流程，实现方自己兜底打日志
type EventPublisher interface {
	Publish(ctx context.Context, event string, payload interface{})
}

const (
	EventCartItemAdded  = "cart.item.added"
	EventOrderCreated   = "order.created"
	EventOrderConfirmed = "order.confirmed"
	EventOrderCancelled = "order.cancelled"
)
