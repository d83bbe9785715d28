// Package consumer 实现库存扣减队列的消费循环
package consumer

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wyfcoding/ecommerce/internal/inventory/application"
	"github.com/wyfcoding/ecommerce/internal/inventory/domain"
	"github.com/wyfcoding/ecommerce/pkg/logger"
	"github.com/wyfcoding/ecommerce/pkg/metrics"
)

// DebitConsumer 单 worker 拉取循环
//
// 严格串行：第 N 条消息确认或拒绝之前不开始处理第 N+1 条，
// 扣减之间因此不存在丢失更新；但不防护校验读与扣减之间的
// TOCTOU 竞争。每条消息处理完后才显式 Ack/Nack
type DebitConsumer struct {
	deliveries <-chan amqp.Delivery
	svc        *application.DebitService
	metrics    *metrics.Metrics
}

// NewDebitConsumer 创建扣减消费者
func NewDebitConsumer(deliveries <-chan amqp.Delivery, svc *application.DebitService, m *metrics.Metrics) *DebitConsumer {
	return &DebitConsumer{
		deliveries: deliveries,
		svc:        svc,
		metrics:    m,
	}
}

// Run 运行消费循环，ctx 取消或投递通道关闭时返回；
// 返回时当前消息的确认已经完成，可以安全关闭总线连接
func (c *DebitConsumer) Run(ctx context.Context) {
	logger.Info(ctx, "Debit consumer started")
	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Debit consumer stopped", "reason", ctx.Err())
			return
		case delivery, ok := <-c.deliveries:
			if !ok {
				logger.Info(ctx, "Debit consumer stopped", "reason", "delivery channel closed")
				return
			}
			c.handle(ctx, delivery)
		}
	}
}

// handle 处理单条投递
//
// 畸形消息与存储错误均拒绝且不重新入队：消息被丢弃而非重试。
// 这里接受静默丢失作为刻意的简化，生产级方案应改走死信路径
func (c *DebitConsumer) handle(ctx context.Context, delivery amqp.Delivery) {
	var event domain.OrderConfirmedEvent
	if err := json.Unmarshal(delivery.Body, &event); err != nil {
		logger.Error(ctx, "Malformed event payload, dropping message", "error", err)
		c.reject(ctx, delivery)
		return
	}

	if err := c.svc.HandleOrderConfirmed(ctx, event); err != nil {
		logger.Error(ctx, "Event processing failed, dropping message",
			"order_id", event.OrderID,
			"error", err,
		)
		c.reject(ctx, delivery)
		return
	}

	if err := delivery.Ack(false); err != nil {
		logger.Error(ctx, "Failed to ack message", "order_id", event.OrderID, "error", err)
		return
	}
	if c.metrics != nil {
		c.metrics.EventsConsumedTotal.Inc()
	}
}

func (c *DebitConsumer) reject(ctx context.Context, delivery amqp.Delivery) {
	if err := delivery.Nack(false, false); err != nil {
		logger.Error(ctx, "Failed to nack message", "error", err)
	}
	if c.metrics != nil {
		c.metrics.EventsConsumeFailuresTotal.Inc()
	}
}
