package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/ecommerce/internal/inventory/application"
	"github.com/wyfcoding/ecommerce/internal/inventory/domain"
	"github.com/wyfcoding/ecommerce/pkg/config"
	"github.com/wyfcoding/ecommerce/pkg/middleware"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Issuer:        "inventory-api",
		Audience:      "ecommerce-clients",
		Key:           "test-signing-key-0123456789abcdef",
		ExpiryMinutes: 5,
	}
}

func newAuthRouter(cfg config.JWTConfig, repo *memoryRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	products := application.NewProductService(repo, nil)
	validation := application.NewValidationService(repo)
	NewProductHandler(products, validation).RegisterRoutes(router, middleware.JWTAuthMiddleware(cfg))
	NewAuthHandler(cfg).RegisterRoutes(router)
	return router
}

func TestLoginIssuesUsableToken(t *testing.T) {
	cfg := testJWTConfig()
	repo := newMemoryRepo(&domain.Product{SKU: "SKU-1", Quantity: 5})
	router := newAuthRouter(cfg, repo)

	w := doJSON(router, http.MethodPost, "/api/auth/login", `{"username":"ops"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response failed: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("token should not be empty")
	}

	req := newRequest(http.MethodGet, "/api/products/SKU-1")
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	rec := serve(router, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("authorized request status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestLoginRequiresUsername(t *testing.T) {
	router := newAuthRouter(testJWTConfig(), newMemoryRepo())

	w := doJSON(router, http.MethodPost, "/api/auth/login", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestProductRoutesRejectMissingToken(t *testing.T) {
	router := newAuthRouter(testJWTConfig(), newMemoryRepo())

	rec := serve(router, newRequest(http.MethodGet, "/api/products"))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestProductRoutesRejectBadToken(t *testing.T) {
	router := newAuthRouter(testJWTConfig(), newMemoryRepo())

	req := newRequest(http.MethodGet, "/api/products")
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := serve(router, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestValidateRouteIsAnonymous(t *testing.T) {
	repo := newMemoryRepo(&domain.Product{SKU: "SKU-1", Quantity: 5})
	router := newAuthRouter(testJWTConfig(), repo)

	w := doJSON(router, http.MethodPost, "/api/inventory/validate", `{"items":[{"sku":"SKU-1","qty":1}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("validate without token status = %d, want 200", w.Code)
	}
}
