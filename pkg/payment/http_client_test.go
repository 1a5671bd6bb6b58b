package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClientAuthorize_Approved(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payments/confirm", r.URL.Path)
		// Basic base64("sk_test:")
		assert.Equal(t, "Basic c2tfdGVzdDo=", r.Header.Get("Authorization"))

		var body confirmRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "pay-key-1", body.PaymentKey)
		assert.Equal(t, "o-1", body.OrderID)
		assert.Equal(t, int64(2000), body.Amount)

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "sk_test", 5*time.Second)

	err := c.Authorize(context.Background(), "pay-key-1", "o-1", 2000)

	assert.NoError(t, err)
}

func TestHTTPClientAuthorize_DeclinedWithMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"code":    "REJECT_CARD_COMPANY",
			"message": "card limit exceeded",
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "sk_test", 5*time.Second)

	err := c.Authorize(context.Background(), "pay-key-1", "o-1", 2000)

	require.ErrorIs(t, err, ErrDeclined)
	assert.Contains(t, err.Error(), "card limit exceeded")
}

func TestHTTPClientAuthorize_DeclinedWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "sk_test", 5*time.Second)

	err := c.Authorize(context.Background(), "pay-key-1", "o-1", 2000)

	assert.ErrorIs(t, err, ErrDeclined)
}

func TestHTTPClientAuthorize_ServerErrorIsNotDecline(t *testing.T) {
	// 网关 5xx 不是拒付，调用方不应据此改单
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "sk_test", 5*time.Second)

	err := c.Authorize(context.Background(), "pay-key-1", "o-1", 2000)

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDeclined)
}

func TestHTTPClientAuthorize_NetworkErrorIsNotDecline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // 立即关掉，连接必然失败

	c := NewHTTPClient(srv.URL, "sk_test", time.Second)

	err := c.Authorize(context.Background(), "pay-key-1", "o-1", 2000)

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDeclined)
}
