package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/ecommerce/internal/inventory/application"
	"github.com/wyfcoding/ecommerce/internal/inventory/domain"
)

type memoryRepo struct {
	products map[string]*domain.Product
	nextID   uint
}

func newMemoryRepo(products ...*domain.Product) *memoryRepo {
	r := &memoryRepo{products: make(map[string]*domain.Product)}
	for _, p := range products {
		r.nextID++
		p.ID = r.nextID
		r.products[p.SKU] = p
	}
	return r
}

func (r *memoryRepo) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	p, ok := r.products[sku]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *memoryRepo) List(ctx context.Context) ([]*domain.Product, error) {
	out := make([]*domain.Product, 0, len(r.products))
	for _, p := range r.products {
		copied := *p
		out = append(out, &copied)
	}
	return out, nil
}

func (r *memoryRepo) Create(ctx context.Context, product *domain.Product) error {
	if _, ok := r.products[product.SKU]; ok {
		return domain.ErrSKUExists
	}
	r.nextID++
	product.ID = r.nextID
	copied := *product
	r.products[product.SKU] = &copied
	return nil
}

func (r *memoryRepo) Update(ctx context.Context, sku string, patch domain.ProductPatch) (*domain.Product, error) {
	p, ok := r.products[sku]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	if patch.Quantity != nil {
		p.Quantity = *patch.Quantity
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	copied := *p
	return &copied, nil
}

func (r *memoryRepo) DebitStock(ctx context.Context, sku string, qty int) (*domain.Product, error) {
	p, ok := r.products[sku]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	p.ApplyDebit(qty)
	copied := *p
	return &copied, nil
}

func passthroughAuth(c *gin.Context) { c.Next() }

func newTestRouter(repo *memoryRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	products := application.NewProductService(repo, nil)
	validation := application.NewValidationService(repo)
	NewProductHandler(products, validation).RegisterRoutes(router, passthroughAuth)
	return router
}

func newRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateProduct(t *testing.T) {
	repo := newMemoryRepo()
	router := newTestRouter(repo)

	w := doJSON(router, http.MethodPost, "/api/products", `{"sku":"SKU-1","name":"Widget","quantity":5,"price":"19.99"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", w.Code, w.Body.String())
	}

	stored, ok := repo.products["SKU-1"]
	if !ok {
		t.Fatal("product was not persisted")
	}
	if stored.Quantity != 5 || stored.Name != "Widget" {
		t.Errorf("stored = %+v", stored)
	}
	if !stored.Price.Equal(decimal.NewFromFloat(19.99)) {
		t.Errorf("price = %s", stored.Price)
	}
}

func TestCreateProductConflict(t *testing.T) {
	repo := newMemoryRepo(&domain.Product{SKU: "SKU-1", Name: "Widget", Quantity: 5})
	router := newTestRouter(repo)

	w := doJSON(router, http.MethodPost, "/api/products", `{"sku":"SKU-1","name":"Other","quantity":1}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
}

func TestCreateProductInvalidBody(t *testing.T) {
	router := newTestRouter(newMemoryRepo())

	cases := []string{
		`{"name":"no sku"}`,
		`{"sku":"SKU-1","name":"Widget","quantity":-1}`,
		`not json`,
	}
	for _, body := range cases {
		w := doJSON(router, http.MethodPost, "/api/products", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, w.Code)
		}
	}
}

func TestGetProduct(t *testing.T) {
	repo := newMemoryRepo(&domain.Product{SKU: "SKU-1", Name: "Widget", Quantity: 5})
	router := newTestRouter(repo)

	w := doJSON(router, http.MethodGet, "/api/products/SKU-1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var got domain.Product
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got.SKU != "SKU-1" || got.Quantity != 5 {
		t.Errorf("got %+v", got)
	}
}

func TestGetProductNotFound(t *testing.T) {
	router := newTestRouter(newMemoryRepo())

	w := doJSON(router, http.MethodGet, "/api/products/MISSING", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestPatchProduct(t *testing.T) {
	repo := newMemoryRepo(&domain.Product{SKU: "SKU-1", Name: "Widget", Quantity: 5})
	router := newTestRouter(repo)

	w := doJSON(router, http.MethodPatch, "/api/products/SKU-1", `{"quantity":12}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}
	if got := repo.products["SKU-1"].Quantity; got != 12 {
		t.Errorf("quantity = %d, want 12", got)
	}
}

func TestPatchProductNotFound(t *testing.T) {
	router := newTestRouter(newMemoryRepo())

	w := doJSON(router, http.MethodPatch, "/api/products/MISSING", `{"quantity":12}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestValidateEndpoint(t *testing.T) {
	repo := newMemoryRepo(
		&domain.Product{SKU: "SKU-1", Quantity: 5},
		&domain.Product{SKU: "SKU-2", Quantity: 0},
	)
	router := newTestRouter(repo)

	w := doJSON(router, http.MethodPost, "/api/inventory/validate",
		`{"items":[{"sku":"SKU-1","qty":2},{"sku":"SKU-2","qty":1},{"sku":"NOPE","qty":1}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}

	var result domain.ValidationResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if result.IsAvailable {
		t.Error("IsAvailable = true, want false")
	}
	want := []string{"SKU-2", "NOPE"}
	if len(result.Unavailable) != len(want) {
		t.Fatalf("unavailable = %v, want %v", result.Unavailable, want)
	}
	for i, sku := range want {
		if result.Unavailable[i] != sku {
			t.Errorf("unavailable[%d] = %q, want %q", i, result.Unavailable[i], sku)
		}
	}
}

func TestValidateEndpointAllAvailable(t *testing.T) {
	repo := newMemoryRepo(&domain.Product{SKU: "SKU-1", Quantity: 5})
	router := newTestRouter(repo)

	w := doJSON(router, http.MethodPost, "/api/inventory/validate", `{"items":[{"sku":"SKU-1","qty":5}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	// unavailable 必须序列化为空数组而非 null
	if got := strings.TrimSpace(w.Body.String()); got != `{"isAvailable":true,"unavailable":[]}` {
		t.Errorf("body = %s", got)
	}
}

func TestValidateEndpointRejectsInvalidItems(t *testing.T) {
	router := newTestRouter(newMemoryRepo())

	w := doJSON(router, http.MethodPost, "/api/inventory/validate", `{"items":[{"sku":"SKU-1","qty":0}]}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
