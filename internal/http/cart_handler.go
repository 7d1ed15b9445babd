package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/omnex-storefront/internal/cart"
	"github.com/fjod/omnex-storefront/internal/domain"
	"github.com/go-chi/chi/v5"
)

type CartStore interface {
	AddItem(ctx context.Context, product domain.Product, quantity int) error
	RemoveItem(ctx context.Context, id domain.ProductID) error
	UpdateQuantity(ctx context.Context, id domain.ProductID, quantity int) error
	Clear(ctx context.Context) error
	Snapshot() domain.Cart
	ShippingCost(country string) float64
	DeliveryRegion(country string) string
}

type CartHandler struct {
	cart      CartStore
	products  ProductReader
	addresses AddressStore
	timeout   time.Duration
}

func NewCartHandler(c CartStore, products ProductReader, addresses AddressStore, timeout time.Duration) *CartHandler {
	return &CartHandler{
		cart:      c,
		products:  products,
		addresses: addresses,
		timeout:   timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID domain.ProductID `json:"product_id"`
	Quantity  int              `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartResponseDTO struct {
	Items          domain.Cart `json:"items"`
	ItemCount      int         `json:"item_count"`
	Subtotal       float64     `json:"subtotal"`
	ShippingCost   float64     `json:"shipping_cost"`
	GrandTotal     float64     `json:"grand_total"`
	DeliveryRegion string      `json:"delivery_region"`
	Country        string      `json:"country,omitempty"`
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	respondJSON(w, r, http.StatusOK, h.view(ctx, r.URL.Query().Get("country")))
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, r, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity < 0 {
		respondError(w, r, http.StatusBadRequest, "invalid_quantity", "quantity must not be negative")
		return
	}

	product, err := h.products.GetProduct(ctx, req.ProductID)
	if err != nil {
		respondCatalogError(w, r, err)
		return
	}

	if err := h.cart.AddItem(ctx, *product, req.Quantity); err != nil {
		respondCartError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusCreated, h.view(ctx, r.URL.Query().Get("country")))
}

// PUT /api/v1/cart/items/{product_id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req UpdateQuantityRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	id := domain.ProductID(chi.URLParam(r, "product_id"))
	if err := h.cart.UpdateQuantity(ctx, id, req.Quantity); err != nil {
		respondCartError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, h.view(ctx, r.URL.Query().Get("country")))
}

// DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id := domain.ProductID(chi.URLParam(r, "product_id"))
	if err := h.cart.RemoveItem(ctx, id); err != nil {
		respondCartError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, h.view(ctx, r.URL.Query().Get("country")))
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.cart.Clear(ctx); err != nil {
		respondCartError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, h.view(ctx, r.URL.Query().Get("country")))
}

// view prices the cart for country. Without a country the saved shipping
// address decides.
func (h *CartHandler) view(ctx context.Context, country string) CartResponseDTO {
	if country == "" && h.addresses != nil {
		if addr, err := h.addresses.Get(ctx); err == nil {
			country = addr.Country
		}
	}

	c := h.cart.Snapshot()
	subtotal := c.Total()
	shipping := h.cart.ShippingCost(country)
	return CartResponseDTO{
		Items:          c,
		ItemCount:      c.ItemCount(),
		Subtotal:       subtotal,
		ShippingCost:   shipping,
		GrandTotal:     subtotal + shipping,
		DeliveryRegion: h.cart.DeliveryRegion(country),
		Country:        country,
	}
}

func respondCartError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, cart.ErrMissingProductID):
		respondError(w, r, http.StatusBadRequest, "invalid_product_id", err.Error())
	case errors.Is(err, cart.ErrInvalidQuantity):
		respondError(w, r, http.StatusBadRequest, "invalid_quantity", err.Error())
	default:
		respondJSON(w, r, http.StatusInternalServerError, ErrorResponse{
			Error:   "cart could not be saved",
			Code:    "storage_error",
			Details: err.Error(),
		})
	}
}
