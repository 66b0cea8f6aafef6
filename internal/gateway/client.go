package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Testicode234/developer-2/internal/config"
)

// Client 支付网关HTTP客户端
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Init 根据配置初始化网关客户端
func Init(cfg config.GatewayConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("gateway base_url is required")
	}

	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		// 超时由调用方的context控制，这里不再叠加客户端级超时
		httpClient: &http.Client{},
	}, nil
}

type transferRequest struct {
	Destination string  `json:"destination"`
	Amount      float64 `json:"amount"`
}

type refundRequest struct {
	OriginalReference string  `json:"original_reference"`
	Amount            float64 `json:"amount"`
}

type gatewayResponse struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// Transfer 调用网关转账接口
func (c *Client) Transfer(ctx context.Context, destination string, amount float64, idempotencyKey string) (string, error) {
	body := transferRequest{Destination: destination, Amount: amount}
	return c.post(ctx, "/v1/transfers", body, idempotencyKey)
}

// Refund 调用网关退款接口
func (c *Client) Refund(ctx context.Context, originalReference string, amount float64) (string, error) {
	body := refundRequest{OriginalReference: originalReference, Amount: amount}
	return c.post(ctx, "/v1/refunds", body, "")
}

func (c *Client) post(ctx context.Context, path string, body interface{}, idempotencyKey string) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to encode gateway request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// 超时、连接中断等都无法确认网关侧是否已执行
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return "", ErrTimeout
		}
		return "", fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var out gatewayResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("%w: invalid response body", ErrTimeout)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out.ID == "" {
			return "", fmt.Errorf("%w: missing reference", ErrTimeout)
		}
		return out.ID, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		// 明确拒绝，资金未移动
		return "", fmt.Errorf("%w: %s", ErrRejected, out.Error)
	default:
		// 5xx 无法判断是否已执行
		return "", fmt.Errorf("%w: status %d", ErrTimeout, resp.StatusCode)
	}
}
