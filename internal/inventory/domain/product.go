// Package domain 包含库存服务的领域模型
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product 库存台账记录
// SKU 是唯一标识，创建后不可变；Quantity 任何时刻不为负
type Product struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	SKU       string          `gorm:"column:sku;type:varchar(64);uniqueIndex;not null" json:"sku"`
	Name      string          `gorm:"column:name;type:varchar(200);not null" json:"name"`
	Quantity  int             `gorm:"column:quantity;not null;default:0" json:"quantity"`
	Price     decimal.Decimal `gorm:"column:price;type:decimal(18,2);not null" json:"price"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// TableName 指定表名
func (Product) TableName() string { return "products" }

// ApplyDebit 扣减库存，下限截断为零
func (p *Product) ApplyDebit(qty int) {
	remaining := p.Quantity - qty
	if remaining < 0 {
		remaining = 0
	}
	p.Quantity = remaining
}

// CanFulfill 当前库存是否满足请求数量
func (p *Product) CanFulfill(qty int) bool {
	return qty <= p.Quantity
}
