package domain

import "context"

// EventPublisher 事件发布者接口
type EventPublisher interface {
	// PublishOrderConfirmed 发布订单确认事件
	PublishOrderConfirmed(ctx context.Context, event OrderConfirmedEvent) error
}

// StockValidator 库存校验接口，实现方为跨服务边界的远程调用
type StockValidator interface {
	// Validate 校验行项目当前是否可履约
	Validate(ctx context.Context, items []LineItem) (ValidationResult, error)
}
