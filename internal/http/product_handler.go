package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/omnex-storefront/internal/catalog"
	"github.com/fjod/omnex-storefront/internal/domain"
	"github.com/go-chi/chi/v5"
)

type ProductReader interface {
	LoadProducts(ctx context.Context) (*domain.Catalog, error)
	GetProduct(ctx context.Context, id domain.ProductID) (*domain.Product, error)
}

type ProductHandler struct {
	products ProductReader
	timeout  time.Duration
}

func NewProductHandler(products ProductReader, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		products: products,
		timeout:  timeout,
	}
}

type ProductsResponse struct {
	Products []domain.Product `json:"products"`
}

// GET /api/v1/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	c, err := h.products.LoadProducts(ctx)
	if err != nil {
		respondCatalogError(w, r, err)
		return
	}

	products := c.Products
	if products == nil {
		products = []domain.Product{}
	}
	respondJSON(w, r, http.StatusOK, &ProductsResponse{Products: products})
}

// GET /api/v1/products/{product_id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id := domain.ProductID(chi.URLParam(r, "product_id"))
	p, err := h.products.GetProduct(ctx, id)
	if err != nil {
		respondCatalogError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, p)
}

func respondCatalogError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, catalog.ErrProductNotFound) {
		respondError(w, r, http.StatusNotFound, "product_not_found", "product not found")
		return
	}
	respondJSON(w, r, http.StatusBadGateway, ErrorResponse{
		Error:   "product catalog is unavailable",
		Code:    "catalog_unavailable",
		Details: err.Error(),
	})
}
