package payment

import (
	"context"
	"errors"
)

// ErrDeclined 支付网关明确拒绝（与网络错误区分开，调用方据此决定是否改单）
var ErrDeclined = errors.New("payment declined by provider")

// Client 支付网关承认接口
// paymentKey 是支付页回调带回来的支付凭证
type Client interface {
	Authorize(ctx context.Context, paymentKey, orderID string, amount int64) error
}

// TestClient 测试模式：不调第三方，直接批准
// 生产环境必须换成 HTTPClient 调真实承认接口
type TestClient struct{}

func (TestClient) Authorize(ctx context.Context, paymentKey, orderID string, amount int64) error {
	return nil
}
