package service

import (
	"errors"
	"net/http"
)

// 业务错误集合，handler 层用 errors.Is 匹配后转 HTTP 状态码
var (
	ErrUnauthenticated   = errors.New("authentication required")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrProductNotFound   = errors.New("product not found")
	ErrCartItemNotFound  = errors.New("cart item not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrAmountMismatch    = errors.New("payment amount does not match order total")
	ErrAlreadyProcessed  = errors.New("order already processed")
	ErrPaymentDeclined   = errors.New("payment declined")
)

// HTTPStatus 业务错误到 HTTP 状态码的映射
// 没匹配上的一律当持久层/未知错误返回 500
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrEmptyCart), errors.Is(err, ErrAmountMismatch):
		return http.StatusBadRequest
	case errors.Is(err, ErrProductNotFound), errors.Is(err, ErrCartItemNotFound),
		errors.Is(err, ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrAlreadyProcessed):
		return http.StatusConflict
	case errors.Is(err, ErrPaymentDeclined):
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}
