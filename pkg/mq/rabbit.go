// Package mq 提供 RabbitMQ 连接与发布/消费通用实现
//
// 投递语义为 at-least-once：消费者在崩溃重投后可能重复收到同一条消息；
// 仅在发布前已绑定的队列会保留消息，晚绑定的订阅者收不到更早的事件。
package mq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wyfcoding/ecommerce/pkg/logger"
)

// Config RabbitMQ 配置
type Config struct {
	URL            string
	ConnectRetries int
	RetryBackoff   int
}

// RabbitMQ 持有连接与通道，生命周期由创建方管理：
// Connect 打开，Close 关闭，中间注入给发布方与消费方使用
type RabbitMQ struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	config Config
}

// Connect 建立连接并打开通道，容器启动场景下带重试
func Connect(cfg Config) (*RabbitMQ, error) {
	if cfg.ConnectRetries <= 0 {
		cfg.ConnectRetries = 1
	}
	backoff := time.Duration(cfg.RetryBackoff) * time.Second

	var conn *amqp.Connection
	var err error
	for i := 0; i < cfg.ConnectRetries; i++ {
		conn, err = amqp.Dial(cfg.URL)
		if err == nil {
			break
		}
		logger.Warn(context.Background(), "Failed to connect to RabbitMQ",
			"attempt", i+1,
			"error", err,
		)
		time.Sleep(backoff)
	}
	if err != nil {
		return nil, fmt.Errorf("could not connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("could not open channel: %w", err)
	}

	logger.Info(context.Background(), "RabbitMQ connected successfully", "url", cfg.URL)

	return &RabbitMQ{
		conn:   conn,
		ch:     ch,
		config: cfg,
	}, nil
}

// DeclareFanout 声明持久化 fanout 交换机
func (r *RabbitMQ) DeclareFanout(exchange string) error {
	err := r.ch.ExchangeDeclare(
		exchange, // name
		"fanout", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return fmt.Errorf("could not declare exchange %s: %w", exchange, err)
	}
	return nil
}

// DeclareQueue 声明持久化队列并绑定到交换机
func (r *RabbitMQ) DeclareQueue(queue, exchange string) error {
	_, err := r.ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("could not declare queue %s: %w", queue, err)
	}

	// fanout 交换机忽略 routing key
	if err := r.ch.QueueBind(queue, "", exchange, false, nil); err != nil {
		return fmt.Errorf("could not bind queue %s to exchange %s: %w", queue, exchange, err)
	}
	return nil
}

// Publish 以持久化投递模式发布 JSON 消息
func (r *RabbitMQ) Publish(ctx context.Context, exchange string, body []byte) error {
	err := r.ch.PublishWithContext(ctx,
		exchange, // exchange
		"",       // routing key
		false,    // mandatory
		false,    // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		logger.Error(ctx, "Failed to publish message", "exchange", exchange, "error", err)
		return fmt.Errorf("could not publish to exchange %s: %w", exchange, err)
	}

	logger.Debug(ctx, "Message published", "exchange", exchange, "size", len(body))
	return nil
}

// Consume 以手动确认、prefetch=1 模式消费队列，
// 返回的通道由单个 worker 顺序处理并显式 Ack/Nack
func (r *RabbitMQ) Consume(queue string) (<-chan amqp.Delivery, error) {
	// prefetch 1：上一条消息确认前不投递下一条，保证严格串行
	if err := r.ch.Qos(1, 0, false); err != nil {
		return nil, fmt.Errorf("could not set QoS on queue %s: %w", queue, err)
	}

	deliveries, err := r.ch.Consume(
		queue, // queue
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return nil, fmt.Errorf("could not start consume on queue %s: %w", queue, err)
	}
	return deliveries, nil
}

// Close 关闭通道与连接，应在所有未完成的发布/确认结束后调用
func (r *RabbitMQ) Close() error {
	if r.ch != nil {
		if err := r.ch.Close(); err != nil {
			logger.Warn(context.Background(), "Failed to close RabbitMQ channel", "error", err)
		}
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
