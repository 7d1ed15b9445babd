package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Handlers struct {
	Products      *ProductHandler
	Cart          *CartHandler
	Addresses     *AddressHandler
	Checkout      *CheckoutHandler
	Notifications *NotificationHandler
}

// NewRouter mounts the storefront API. timeout bounds every request.
func NewRouter(h Handlers, timeout time.Duration, l *zap.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(RequestLogger(l))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Products.List)
			r.Get("/{product_id}", h.Products.Get)
		})
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.GetCart)
			r.Delete("/", h.Cart.ClearCart)
			r.Post("/items", h.Cart.AddItem)
			r.Put("/items/{product_id}", h.Cart.UpdateQuantity)
			r.Delete("/items/{product_id}", h.Cart.RemoveItem)
		})
		r.Get("/shipping-address", h.Addresses.Get)
		r.Put("/shipping-address", h.Addresses.Save)
		r.Post("/checkout", h.Checkout.PlaceOrder)
		r.Get("/notifications", h.Notifications.List)
	})

	return r
}
