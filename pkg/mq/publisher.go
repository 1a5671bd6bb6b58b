package mq

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

const exchangeName = "storefront.events"

// Publisher 把订单生命周期事件发到 RabbitMQ topic exchange
// 发布是 Best Effort：失败只打日志，绝不反过来影响下单/支付主流程
type Publisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewPublisher(url string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if err := ch.ExchangeDeclare(exchangeName, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Println("RabbitMQ publisher initialized")
	return &Publisher{conn: conn, ch: ch}, nil
}

// Publish 事件名即 routing key，如 order.created / order.confirmed
func (p *Publisher) Publish(ctx context.Context, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", event, err)
		return
	}

	err = p.ch.PublishWithContext(ctx, exchangeName, event, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        data,
	})
	if err != nil {
		log.Printf("Failed to publish %s event: %v", event, err)
		return
	}

	log.Printf("Published %s event: %s", event, string(data))
}

func (p *Publisher) Close() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
