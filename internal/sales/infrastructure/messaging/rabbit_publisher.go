// Package messaging 实现基于 RabbitMQ 的事件发布
package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wyfcoding/ecommerce/internal/sales/domain"
	"github.com/wyfcoding/ecommerce/pkg/mq"
)

// RabbitEventPublisher 实现 domain.EventPublisher，
// 将订单确认事件发布到销售域 fanout 交换机
type RabbitEventPublisher struct {
	bus      *mq.RabbitMQ
	exchange string
}

// NewRabbitEventPublisher 创建事件发布器
func NewRabbitEventPublisher(bus *mq.RabbitMQ, exchange string) *RabbitEventPublisher {
	return &RabbitEventPublisher{bus: bus, exchange: exchange}
}

// PublishOrderConfirmed 发布订单确认事件
func (p *RabbitEventPublisher) PublishOrderConfirmed(ctx context.Context, event domain.OrderConfirmedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("could not marshal order confirmed event: %w", err)
	}
	return p.bus.Publish(ctx, p.exchange, body)
}
