package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/wyfcoding/ecommerce/internal/inventory/domain"
	"github.com/wyfcoding/ecommerce/pkg/cache"
	"github.com/wyfcoding/ecommerce/pkg/logger"
	"github.com/wyfcoding/ecommerce/pkg/metrics"
)

// DebitService 处理订单确认事件的库存扣减
//
// 处理不幂等：同一事件重投会扣减两次。这是未解决的业务需求缺口，
// 按现状保留并由测试固定，而非静默引入 orderId 去重
type DebitService struct {
	repo    domain.ProductRepository
	cache   *cache.RedisCache
	metrics *metrics.Metrics
}

// NewDebitService 创建扣减服务，cache 与 metrics 可为 nil
func NewDebitService(repo domain.ProductRepository, redisCache *cache.RedisCache, m *metrics.Metrics) *DebitService {
	return &DebitService{repo: repo, cache: redisCache, metrics: m}
}

// HandleOrderConfirmed 对事件中的每个行项目执行扣减
//
// 未知 SKU 记录日志后继续处理后续项目，不让单个缺失 SKU
// 导致整条消息失败；存储错误则中止并返回错误，由消费方拒绝消息
func (s *DebitService) HandleOrderConfirmed(ctx context.Context, event domain.OrderConfirmedEvent) error {
	for _, item := range event.Items {
		product, err := s.repo.DebitStock(ctx, item.SKU, item.Qty)
		if errors.Is(err, domain.ErrProductNotFound) {
			logger.Warn(ctx, "SKU not found, skipping debit",
				"order_id", event.OrderID,
				"sku", item.SKU,
			)
			continue
		}
		if err != nil {
			return fmt.Errorf("debit failed for sku %s: %w", item.SKU, err)
		}

		if s.metrics != nil {
			s.metrics.StockDebitsTotal.Inc()
		}
		s.invalidateCache(ctx, item.SKU)

		logger.Info(ctx, "Stock debited",
			"order_id", event.OrderID,
			"sku", item.SKU,
			"qty", item.Qty,
			"remaining", product.Quantity,
		)
	}
	return nil
}

func (s *DebitService) invalidateCache(ctx context.Context, sku string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, fmt.Sprintf("product:%s", sku)); err != nil {
		logger.Warn(ctx, "Product cache invalidation failed", "sku", sku, "error", err)
	}
}
