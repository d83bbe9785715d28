package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/wyfcoding/ecommerce/pkg/config"
)

func testCfg() config.JWTConfig {
	return config.JWTConfig{
		Issuer:   "inventory-api",
		Audience: "ecommerce-clients",
		Key:      "test-signing-key-0123456789abcdef",
	}
}

func signToken(t *testing.T, cfg config.JWTConfig, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.Key))
	if err != nil {
		t.Fatalf("sign token failed: %v", err)
	}
	return signed
}

func defaultClaims(cfg config.JWTConfig) jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"sub": "ops",
		"iss": cfg.Issuer,
		"aud": cfg.Audience,
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	}
}

func authRouter(cfg config.JWTConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", JWTAuthMiddleware(cfg), func(c *gin.Context) {
		user, _ := c.Get(UserKey)
		c.JSON(http.StatusOK, gin.H{"user": user})
	})
	return router
}

func request(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestJWTAuthValidToken(t *testing.T) {
	cfg := testCfg()
	router := authRouter(cfg)

	w := request(router, signToken(t, cfg, defaultClaims(cfg)))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestJWTAuthMissingHeader(t *testing.T) {
	router := authRouter(testCfg())

	w := request(router, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestJWTAuthExpiredToken(t *testing.T) {
	cfg := testCfg()
	router := authRouter(cfg)

	claims := defaultClaims(cfg)
	claims["exp"] = time.Now().Add(-time.Minute).Unix()

	w := request(router, signToken(t, cfg, claims))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestJWTAuthMissingExpiry(t *testing.T) {
	cfg := testCfg()
	router := authRouter(cfg)

	claims := defaultClaims(cfg)
	delete(claims, "exp")

	w := request(router, signToken(t, cfg, claims))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestJWTAuthWrongIssuer(t *testing.T) {
	cfg := testCfg()
	router := authRouter(cfg)

	claims := defaultClaims(cfg)
	claims["iss"] = "someone-else"

	w := request(router, signToken(t, cfg, claims))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestJWTAuthWrongKey(t *testing.T) {
	cfg := testCfg()
	router := authRouter(cfg)

	other := cfg
	other.Key = "a-completely-different-signing-key"

	w := request(router, signToken(t, other, defaultClaims(cfg)))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
