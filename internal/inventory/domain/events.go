package domain

import (
	"time"
)

// OrderItem 订单确认事件中的行项目
type OrderItem struct {
	SKU string `json:"sku"`
	Qty int    `json:"qty"`
}

// OrderConfirmedEvent 销售服务发布的订单确认事件
type OrderConfirmedEvent struct {
	OrderID     string      `json:"orderId"`
	OrderNumber string      `json:"orderNumber"`
	Items       []OrderItem `json:"items"`
	OccurredAt  time.Time   `json:"occurredAt"`
}

// ValidationResult 库存校验结果，每次校验即时计算，不落库
type ValidationResult struct {
	IsAvailable bool     `json:"isAvailable"`
	Unavailable []string `json:"unavailable"`
}
