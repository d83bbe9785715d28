// Package application 实现销售服务的应用层编排
package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wyfcoding/ecommerce/internal/sales/domain"
	"github.com/wyfcoding/ecommerce/pkg/logger"
)

// ErrEmptyOrder 订单为空，属于客户端输入错误，无任何副作用
var ErrEmptyOrder = errors.New("order must have at least one item")

// ErrInventoryUnavailable 库存服务调用失败（网络/超时/非 2xx），
// 属于可重试的上游失败，区别于业务拒绝；未提交任何部分状态
var ErrInventoryUnavailable = errors.New("inventory validation failed")

// ErrEventPublish 确认事件发布失败；事件未入队，调用方可安全重试
var ErrEventPublish = errors.New("order event publish failed")

// UnavailableError 库存不足的业务拒绝，携带不可履约的 SKU 列表
type UnavailableError struct {
	Unavailable []string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("items unavailable: %s", strings.Join(e.Unavailable, ", "))
}

// OrderService 订单应用服务
//
// 下单为两阶段协议：同步校验 + 异步提交。校验读与后续扣减之间
// 没有锁，校验通过的商品可能在事件被消费前被并发订单卖空，
// 这个 TOCTOU 窗口是设计已知的一致性窗口，而非缺陷
type OrderService struct {
	validator domain.StockValidator
	publisher domain.EventPublisher
}

// NewOrderService 创建订单应用服务
func NewOrderService(validator domain.StockValidator, publisher domain.EventPublisher) *OrderService {
	return &OrderService{
		validator: validator,
		publisher: publisher,
	}
}

// PlaceOrder 下单
//
// 发布成功即返回确认，不等待也不感知库存扣减结果（单向提交）
func (s *OrderService) PlaceOrder(ctx context.Context, items []domain.LineItem) (domain.OrderConfirmation, error) {
	if len(items) == 0 {
		return domain.OrderConfirmation{}, ErrEmptyOrder
	}

	result, err := s.validator.Validate(ctx, items)
	if err != nil {
		return domain.OrderConfirmation{}, fmt.Errorf("%w: %v", ErrInventoryUnavailable, err)
	}

	if !result.IsAvailable {
		return domain.OrderConfirmation{}, &UnavailableError{Unavailable: result.Unavailable}
	}

	event := domain.NewOrderConfirmedEvent(items, time.Now())
	if err := s.publisher.PublishOrderConfirmed(ctx, event); err != nil {
		return domain.OrderConfirmation{}, fmt.Errorf("%w: %v", ErrEventPublish, err)
	}

	logger.Info(ctx, "Order confirmed and published",
		"order_id", event.OrderID,
		"order_number", event.OrderNumber,
		"items", len(event.Items),
	)

	return domain.OrderConfirmation{
		OrderNumber: event.OrderNumber,
		Status:      domain.OrderStatusConfirmed,
	}, nil
}
