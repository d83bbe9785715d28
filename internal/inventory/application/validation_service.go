package application

import (
	"context"
	"errors"

	"github.com/wyfcoding/ecommerce/internal/inventory/domain"
)

// ValidationService 库存校验服务
//
// 校验读不对并发扣减加锁：某个商品可能在校验通过后、
// 确认事件被消费前被并发订单卖空。这是同步校验 + 异步提交
// 协议固有的校验-使用（TOCTOU）窗口，属于文档化的已知行为
type ValidationService struct {
	repo domain.ProductRepository
}

// NewValidationService 创建库存校验服务
func NewValidationService(repo domain.ProductRepository) *ValidationService {
	return &ValidationService{repo: repo}
}

// Validate 逐项读取当前台账并比较请求数量
//
// IsAvailable 为真当且仅当每个行项目的请求数量都不超过当前库存；
// Unavailable 按输入顺序列出所有不满足的 SKU，未知 SKU 视为不可履约
func (s *ValidationService) Validate(ctx context.Context, items []domain.OrderItem) (domain.ValidationResult, error) {
	unavailable := make([]string, 0)

	for _, item := range items {
		product, err := s.repo.GetBySKU(ctx, item.SKU)
		if errors.Is(err, domain.ErrProductNotFound) {
			unavailable = append(unavailable, item.SKU)
			continue
		}
		if err != nil {
			return domain.ValidationResult{}, err
		}
		if !product.CanFulfill(item.Qty) {
			unavailable = append(unavailable, item.SKU)
		}
	}

	return domain.ValidationResult{
		IsAvailable: len(unavailable) == 0,
		Unavailable: unavailable,
	}, nil
}
