// Package inventoryclient 实现跨服务边界的库存校验 HTTP 客户端
package inventoryclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/wyfcoding/ecommerce/internal/sales/domain"
)

// Client 库存服务客户端，实现 domain.StockValidator
// 超时有界：校验调用卡住不能无限阻塞发布路径
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New 创建库存服务客户端
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type validateRequest struct {
	Items []domain.LineItem `json:"items"`
}

// Validate 调用库存服务校验行项目是否可履约
func (c *Client) Validate(ctx context.Context, items []domain.LineItem) (domain.ValidationResult, error) {
	body, err := json.Marshal(validateRequest{Items: items})
	if err != nil {
		return domain.ValidationResult{}, fmt.Errorf("could not marshal validation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/inventory/validate", bytes.NewReader(body))
	if err != nil {
		return domain.ValidationResult{}, fmt.Errorf("could not build validation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.ValidationResult{}, fmt.Errorf("inventory call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.ValidationResult{}, fmt.Errorf("inventory returned status %d", resp.StatusCode)
	}

	var result domain.ValidationResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return domain.ValidationResult{}, fmt.Errorf("could not decode validation response: %w", err)
	}
	return result, nil
}
