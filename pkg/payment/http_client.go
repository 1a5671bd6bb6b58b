package payment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPClient 调用 Toss 风格的支付承认接口
// POST {baseURL}/v1/payments/confirm，Basic 认证（secretKey + ":" 的 base64）
type HTTPClient struct {
	baseURL   string
	secretKey string
	hc        *http.Client
}

func NewHTTPClient(baseURL, secretKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:   baseURL,
		secretKey: secretKey,
		hc:        &http.Client{Timeout: timeout},
	}
}

type confirmRequest struct {
	PaymentKey string `json:"paymentKey"`
	OrderID    string `json:"orderId"`
	Amount     int64  `json:"amount"`
}

type confirmError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *HTTPClient) Authorize(ctx context.Context, paymentKey, orderID string, amount int64) error {
	body, err := json.Marshal(confirmRequest{
		PaymentKey: paymentKey,
		OrderID:    orderID,
		Amount:     amount,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/payments/confirm", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization",
		"Basic "+base64.StdEncoding.EncodeToString([]byte(c.secretKey+":")))

	resp, err := c.hc.Do(req)
	if err != nil {
		// 网络层错误，不代表拒付
		return fmt.Errorf("payment confirm request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	// 4xx 是网关给出的明确拒绝，带上原因
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		var ce confirmError
		if json.Unmarshal(raw, &ce) == nil && ce.Message != "" {
			return fmt.Errorf("%w: %s", ErrDeclined, ce.Message)
		}
		return fmt.Errorf("%w: status %d", ErrDeclined, resp.StatusCode)
	}

	return fmt.Errorf("payment confirm failed: status %d", resp.StatusCode)
}
