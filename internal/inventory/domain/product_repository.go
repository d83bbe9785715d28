package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrProductNotFound SKU 不存在
var ErrProductNotFound = errors.New("product not found")

// ErrSKUExists SKU 已存在，创建冲突
var ErrSKUExists = errors.New("sku already exists")

// ProductPatch 部分更新，nil 字段保持不变
type ProductPatch struct {
	Quantity *int
	Price    *decimal.Decimal
}

// ProductRepository 台账仓储接口
// 所有写入在返回前必须已持久化
type ProductRepository interface {
	// GetBySKU 按 SKU 查询记录
	GetBySKU(ctx context.Context, sku string) (*Product, error)

	// List 列出全部记录
	List(ctx context.Context) ([]*Product, error)

	// Create 创建记录，SKU 冲突返回 ErrSKUExists
	Create(ctx context.Context, product *Product) error

	// Update 按 SKU 部分更新数量/价格
	Update(ctx context.Context, sku string, patch ProductPatch) (*Product, error)

	// DebitStock 扣减库存，计算 max(0, quantity-qty) 并刷新更新时间；
	// 实现方需保证两个并发扣减不会都基于扣减前的数量成功
	DebitStock(ctx context.Context, sku string, qty int) (*Product, error)
}
