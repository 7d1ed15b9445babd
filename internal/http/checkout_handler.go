package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/omnex-storefront/internal/checkout"
	"github.com/fjod/omnex-storefront/internal/domain"
	"github.com/fjod/omnex-storefront/internal/order"
	"github.com/sony/gobreaker/v2"
)

type CheckoutService interface {
	Checkout(ctx context.Context, transactionID string) (*checkout.Result, error)
}

type CheckoutHandler struct {
	checkout CheckoutService
	timeout  time.Duration
}

func NewCheckoutHandler(svc CheckoutService, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: svc,
		timeout:  timeout,
	}
}

type CheckoutRequestDTO struct {
	TransactionID string `json:"transaction_id"`
}

type CheckoutResponseDTO struct {
	Order           domain.Order    `json:"order"`
	Acknowledgement json.RawMessage `json:"acknowledgement"`
	CartCleared     bool            `json:"cart_cleared"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CheckoutRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	result, err := h.checkout.Checkout(ctx, req.TransactionID)
	if err != nil {
		respondCheckoutError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusCreated, CheckoutResponseDTO{
		Order:           result.Order,
		Acknowledgement: result.Receipt.Acknowledgement(),
		CartCleared:     result.CartCleared,
	})
}

func respondCheckoutError(w http.ResponseWriter, r *http.Request, err error) {
	var submitErr *order.SubmitError
	switch {
	case errors.Is(err, checkout.ErrMissingTransactionID):
		respondError(w, r, http.StatusBadRequest, "missing_transaction_id", err.Error())
	case errors.Is(err, checkout.ErrMissingAddress):
		respondError(w, r, http.StatusConflict, "missing_address", err.Error())
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, r, http.StatusConflict, "empty_cart", err.Error())
	case errors.As(err, &submitErr):
		respondJSON(w, r, http.StatusBadGateway, ErrorResponse{
			Error:   "order was rejected",
			Code:    "order_rejected",
			Status:  submitErr.StatusCode,
			Details: submitErr.Body,
		})
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		respondJSON(w, r, http.StatusServiceUnavailable, ErrorResponse{
			Error:   "order endpoint is unavailable",
			Code:    "order_endpoint_unavailable",
			Details: err.Error(),
		})
	default:
		respondJSON(w, r, http.StatusBadGateway, ErrorResponse{
			Error:   "order could not be submitted",
			Code:    "order_submit_failed",
			Details: err.Error(),
		})
	}
}
