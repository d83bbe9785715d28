package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/wyfcoding/ecommerce/pkg/config"
	"github.com/wyfcoding/ecommerce/pkg/logger"
)

// AuthHandler 签发测试用访问令牌
type AuthHandler struct {
	cfg config.JWTConfig
}

// NewAuthHandler 创建鉴权处理器
func NewAuthHandler(cfg config.JWTConfig) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

// RegisterRoutes 注册路由
func (h *AuthHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/api/auth/login", h.Login)
}

// LoginRequest 登录请求

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
}

// Login 签发 HMAC 签名的访问令牌
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	now := time.Now()
	expiry := time.Duration(h.cfg.ExpiryMinutes) * time.Minute
	claims := jwt.MapClaims{
		"sub":  req.Username,
		"role": "api-user",
		"iss":  h.cfg.Issuer,
		"aud":  h.cfg.Audience,
		"iat":  now.Unix(),
		"exp":  now.Add(expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(h.cfg.Key))
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to sign token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": signed})
}
