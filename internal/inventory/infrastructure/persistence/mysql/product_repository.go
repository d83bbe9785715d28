// Package mysql 实现库存台账的 GORM 仓储
package mysql

import (
	"context"
	"errors"
	"time"

	"github.com/wyfcoding/ecommerce/internal/inventory/domain"
	"github.com/wyfcoding/ecommerce/pkg/db"
	"gorm.io/gorm"
)

type productRepository struct {
	db *db.DB
}

// NewProductRepository 创建台账仓储
func NewProductRepository(database *db.DB) domain.ProductRepository {
	return &productRepository{db: database}
}

func (r *productRepository) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) List(ctx context.Context) ([]*domain.Product, error) {
	var products []*domain.Product
	err := r.db.WithContext(ctx).Order("sku").Find(&products).Error
	return products, err
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	return r.db.WithTx(ctx, func(tx *gorm.DB) error {
		var existing domain.Product
		err := tx.Where("sku = ?", product.SKU).First(&existing).Error
		if err == nil {
			return domain.ErrSKUExists
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(product).Error
	})
}

func (r *productRepository) Update(ctx context.Context, sku string, patch domain.ProductPatch) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := r.lockBySKU(tx, sku, &product); err != nil {
			return err
		}
		if patch.Quantity != nil {
			product.Quantity = *patch.Quantity
		}
		if patch.Price != nil {
			product.Price = *patch.Price
		}
		product.UpdatedAt = time.Now().UTC()
		return tx.Save(&product).Error
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) DebitStock(ctx context.Context, sku string, qty int) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := r.lockBySKU(tx, sku, &product); err != nil {
			return err
		}
		product.ApplyDebit(qty)
		product.UpdatedAt = time.Now().UTC()
		return tx.Save(&product).Error
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// lockBySKU 在事务内按 SKU 读取并加行锁（SELECT ... FOR UPDATE），
// 防止两个并发扣减都读到扣减前的数量
func (r *productRepository) lockBySKU(tx *gorm.DB, sku string, product *domain.Product) error {
	query := tx.Where("sku = ?", sku)
	for _, expr := range r.db.LockingClause() {
		query = query.Clauses(expr)
	}
	err := query.First(product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrProductNotFound
	}
	return err
}
