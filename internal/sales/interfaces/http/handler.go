// Package http 提供销售服务的 HTTP 处理器
package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/ecommerce/internal/sales/application"
	"github.com/wyfcoding/ecommerce/internal/sales/domain"
	"github.com/wyfcoding/ecommerce/pkg/logger"
	"github.com/wyfcoding/ecommerce/pkg/metrics"
)

// OrderHandler HTTP 处理器
// 负责处理下单请求并把应用层错误映射为 HTTP 状态
type OrderHandler struct {
	svc     *application.OrderService
	metrics *metrics.Metrics
}

// NewOrderHandler 创建 HTTP 处理器实例
func NewOrderHandler(svc *application.OrderService, m *metrics.Metrics) *OrderHandler {
	return &OrderHandler{svc: svc, metrics: m}
}

// RegisterRoutes 注册路由
func (h *OrderHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.POST("/orders", h.PlaceOrder) // 下单
	}
}

// PlaceOrderRequest 下单请求

type PlaceOrderRequest struct {
	Items []OrderItemRequest `json:"items" binding:"omitempty,dive"`
}

// OrderItemRequest 下单行项目

type OrderItemRequest struct {
	SKU string `json:"sku" binding:"required"`
	Qty int    `json:"qty" binding:"required,gt=0"`
}

// PlaceOrder 下单
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	items := make([]domain.LineItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.LineItem{SKU: item.SKU, Qty: item.Qty})
	}

	confirmation, err := h.svc.PlaceOrder(c.Request.Context(), items)
	if err != nil {
		h.renderPlaceOrderError(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.OrdersPlacedTotal.Inc()
		h.metrics.EventsPublishedTotal.Inc()
	}

	c.JSON(http.StatusCreated, gin.H{
		"orderNumber": confirmation.OrderNumber,
		"status":      confirmation.Status,
	})
}

func (h *OrderHandler) renderPlaceOrderError(c *gin.Context, err error) {
	var unavailable *application.UnavailableError

	switch {
	case errors.Is(err, application.ErrEmptyOrder):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Order must have at least one item."})
	case errors.As(err, &unavailable):
		if h.metrics != nil {
			h.metrics.OrdersRejectedTotal.Inc()
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"message":     "Unavailable",
			"unavailable": unavailable.Unavailable,
		})
	case errors.Is(err, application.ErrInventoryUnavailable), errors.Is(err, application.ErrEventPublish):
		logger.Error(c.Request.Context(), "Order placement failed upstream", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"message": "Inventory validation failed."})
	default:
		logger.Error(c.Request.Context(), "Order placement failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}
