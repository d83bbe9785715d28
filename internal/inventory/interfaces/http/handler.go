// Package http 提供库存服务的 HTTP 处理器
package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/ecommerce/internal/inventory/application"
	"github.com/wyfcoding/ecommerce/internal/inventory/domain"
	"github.com/wyfcoding/ecommerce/pkg/logger"
)

// ProductHandler 商品台账 HTTP 处理器
type ProductHandler struct {
	products   *application.ProductService
	validation *application.ValidationService
}

// NewProductHandler 创建 HTTP 处理器实例
func NewProductHandler(products *application.ProductService, validation *application.ValidationService) *ProductHandler {
	return &ProductHandler{products: products, validation: validation}
}

// RegisterRoutes 注册路由，商品 CRUD 受鉴权保护，库存校验匿名开放
func (h *ProductHandler) RegisterRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	api := router.Group("/api")

	products := api.Group("/products", auth)
	{
		products.GET("", h.ListProducts)       // 商品列表
		products.POST("", h.CreateProduct)     // 创建商品
		products.GET("/:sku", h.GetProduct)    // 商品详情
		products.PATCH("/:sku", h.PatchProduct) // 部分更新
	}

	api.POST("/inventory/validate", h.Validate) // 库存校验（服务间调用）
}

// CreateProductRequest 创建商品请求

type CreateProductRequest struct {
	SKU      string          `json:"sku" binding:"required"`
	Name     string          `json:"name" binding:"required"`
	Quantity int             `json:"quantity" binding:"gte=0"`
	Price    decimal.Decimal `json:"price"`
}

// CreateProduct 创建商品
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	product := &domain.Product{
		SKU:      req.SKU,
		Name:     req.Name,
		Quantity: req.Quantity,
		Price:    req.Price,
	}

	if err := h.products.CreateProduct(c.Request.Context(), product); err != nil {
		if errors.Is(err, domain.ErrSKUExists) {
			c.JSON(http.StatusConflict, gin.H{"message": "sku already exists"})
			return
		}
		logger.Error(c.Request.Context(), "Failed to create product", "sku", req.SKU, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, product)
}

// ListProducts 商品列表
func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.products.ListProducts(c.Request.Context())
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to list products", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, products)
}

// GetProduct 商品详情
func (h *ProductHandler) GetProduct(c *gin.Context) {
	sku := c.Param("sku")

	product, err := h.products.GetProduct(c.Request.Context(), sku)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "product not found"})
			return
		}
		logger.Error(c.Request.Context(), "Failed to get product", "sku", sku, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, product)
}

// PatchProductRequest 部分更新请求，缺省字段保持不变

type PatchProductRequest struct {
	Quantity *int             `json:"quantity" binding:"omitempty,gte=0"`
	Price    *decimal.Decimal `json:"price"`
}

// PatchProduct 部分更新商品
func (h *ProductHandler) PatchProduct(c *gin.Context) {
	sku := c.Param("sku")

	var req PatchProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	patch := domain.ProductPatch{
		Quantity: req.Quantity,
		Price:    req.Price,
	}

	product, err := h.products.UpdateProduct(c.Request.Context(), sku, patch)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "product not found"})
			return
		}
		logger.Error(c.Request.Context(), "Failed to update product", "sku", sku, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, product)
}

// ValidateRequest 库存校验请求

type ValidateRequest struct {
	Items []ValidateItemRequest `json:"items" binding:"omitempty,dive"`
}

// ValidateItemRequest 校验行项目

type ValidateItemRequest struct {
	SKU string `json:"sku" binding:"required"`
	Qty int    `json:"qty" binding:"required,gt=0"`
}

// Validate 库存校验
func (h *ProductHandler) Validate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.OrderItem{SKU: item.SKU, Qty: item.Qty})
	}

	result, err := h.validation.Validate(c.Request.Context(), items)
	if err != nil {
		logger.Error(c.Request.Context(), "Stock validation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, result)
}
