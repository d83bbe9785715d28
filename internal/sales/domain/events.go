package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderConfirmedEvent 订单确认事件
// 每个校验通过的订单只创建一次，发布后不可变
type OrderConfirmedEvent struct {
	OrderID     string     `json:"orderId"`
	OrderNumber string     `json:"orderNumber"`
	Items       []LineItem `json:"items"`
	OccurredAt  time.Time  `json:"occurredAt"`
}

// NewOrderConfirmedEvent 创建订单确认事件
func NewOrderConfirmedEvent(items []LineItem, now time.Time) OrderConfirmedEvent {
	copied := make([]LineItem, len(items))
	copy(copied, items)
	return OrderConfirmedEvent{
		OrderID:     uuid.New().String(),
		OrderNumber: NewOrderNumber(now),
		Items:       copied,
		OccurredAt:  now.UTC(),
	}
}
