package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/omnex-storefront/internal/address"
	"github.com/fjod/omnex-storefront/internal/domain"
)

type AddressStore interface {
	Save(ctx context.Context, addr domain.Address) error
	Get(ctx context.Context) (domain.Address, error)
}

type AddressHandler struct {
	addresses AddressStore
	timeout   time.Duration
}

func NewAddressHandler(addresses AddressStore, timeout time.Duration) *AddressHandler {
	return &AddressHandler{addresses: addresses, timeout: timeout}
}

// GET /api/v1/shipping-address
func (h *AddressHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	addr, err := h.addresses.Get(ctx)
	if errors.Is(err, address.ErrNotFound) {
		respondError(w, r, http.StatusNotFound, "address_not_found", err.Error())
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "storage_error", err.Error())
		return
	}
	respondJSON(w, r, http.StatusOK, addr)
}

// PUT /api/v1/shipping-address
func (h *AddressHandler) Save(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var addr domain.Address
	if err := decodeJSON(r, &addr); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.addresses.Save(ctx, addr); err != nil {
		respondError(w, r, http.StatusInternalServerError, "storage_error", err.Error())
		return
	}
	respondJSON(w, r, http.StatusOK, addr)
}
