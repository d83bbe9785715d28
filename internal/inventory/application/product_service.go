// Package application 实现库存服务的应用层
package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wyfcoding/ecommerce/internal/inventory/domain"
	"github.com/wyfcoding/ecommerce/pkg/cache"
	"github.com/wyfcoding/ecommerce/pkg/logger"
)

const productCacheTTL = 5 * time.Minute

// ProductService 商品台账应用服务，提供 CRUD 与读缓存
type ProductService struct {
	repo  domain.ProductRepository
	cache *cache.RedisCache
}

// NewProductService 创建商品应用服务，cache 可为 nil
func NewProductService(repo domain.ProductRepository, redisCache *cache.RedisCache) *ProductService {
	return &ProductService{repo: repo, cache: redisCache}
}

// CreateProduct 创建商品记录
func (s *ProductService) CreateProduct(ctx context.Context, product *domain.Product) error {
	if err := s.repo.Create(ctx, product); err != nil {
		return err
	}
	logger.Info(ctx, "Product created", "sku", product.SKU, "quantity", product.Quantity)
	return nil
}

// GetProduct 查询商品，优先走缓存
func (s *ProductService) GetProduct(ctx context.Context, sku string) (*domain.Product, error) {
	if s.cache != nil {
		var cached domain.Product
		err := s.cache.Get(ctx, productCacheKey(sku), &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.Warn(ctx, "Product cache read failed", "sku", sku, "error", err)
		}
	}

	product, err := s.repo.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, productCacheKey(sku), product, productCacheTTL); err != nil {
			logger.Warn(ctx, "Product cache write failed", "sku", sku, "error", err)
		}
	}
	return product, nil
}

// ListProducts 列出全部商品
func (s *ProductService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.repo.List(ctx)
}

// UpdateProduct 部分更新商品数量/价格
func (s *ProductService) UpdateProduct(ctx context.Context, sku string, patch domain.ProductPatch) (*domain.Product, error) {
	product, err := s.repo.Update(ctx, sku, patch)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, sku)
	logger.Info(ctx, "Product updated", "sku", sku)
	return product, nil
}

func (s *ProductService) invalidate(ctx context.Context, sku string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, productCacheKey(sku)); err != nil {
		logger.Warn(ctx, "Product cache invalidation failed", "sku", sku, "error", err)
	}
}

func productCacheKey(sku string) string {
	return fmt.Sprintf("product:%s", sku)
}
