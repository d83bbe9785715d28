// Package domain 包含销售服务的领域模型
package domain

import (
	"time"
)

// OrderStatus 订单状态
type OrderStatus string

const (
	OrderStatusConfirmed OrderStatus = "Confirmed"
)

// LineItem 订单行项目
// qty > 0 是入参前置条件，由接口层校验，账本本身不约束
type LineItem struct {
	SKU string `json:"sku"`
	Qty int    `json:"qty"`
}

// OrderConfirmation 下单成功的返回结果
// 表示事件已持久化入队，不代表库存已扣减
type OrderConfirmation struct {
	OrderNumber string      `json:"orderNumber"`
	Status      OrderStatus `json:"status"`
}

// ValidationResult 库存校验结果，每次校验即时计算，不落库
type ValidationResult struct {
	IsAvailable bool     `json:"isAvailable"`
	Unavailable []string `json:"unavailable"`
}

// NewOrderNumber 基于创建时间生成订单号
// 同一秒内并发下单会产生相同订单号，这是已接受的弱点，
// 订单的唯一标识始终是事件中的 orderId
func NewOrderNumber(t time.Time) string {
	return "ORD-" + t.UTC().Format("20060102150405")
}
