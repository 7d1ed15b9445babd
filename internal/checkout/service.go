package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fjod/omnex-storefront/internal/address"
	"github.com/fjod/omnex-storefront/internal/domain"
	"github.com/fjod/omnex-storefront/internal/events"
	"github.com/fjod/omnex-storefront/internal/logger"
	"github.com/fjod/omnex-storefront/internal/order"
	"go.uber.org/zap"
)

var (
	ErrEmptyCart            = errors.New("cart is empty, nothing to checkout")
	ErrMissingAddress       = errors.New("shipping address is required")
	ErrMissingTransactionID = errors.New("payment transaction id is required")
)

type CartStore interface {
	Snapshot() domain.Cart
	RemoveOrdered(ctx context.Context, items []domain.LineItem) error
	ShippingCost(country string) float64
	DeliveryRegion(country string) string
}

type AddressReader interface {
	Get(ctx context.Context) (domain.Address, error)
}

type OrderPreparer interface {
	Prepare(items []domain.LineItem, addr domain.Address, transactionID string) domain.Order
}

type OrderSubmitter interface {
	Submit(ctx context.Context, o domain.Order) (*order.Receipt, error)
}

type Result struct {
	Order       domain.Order
	Receipt     *order.Receipt
	CartCleared bool
}

// Summary is the price breakdown shown before the order is placed.
type Summary struct {
	ItemCount      int     `json:"item_count"`
	Subtotal       float64 `json:"subtotal"`
	ShippingCost   float64 `json:"shipping_cost"`
	GrandTotal     float64 `json:"grand_total"`
	DeliveryRegion string  `json:"delivery_region"`
}

type Option func(*Service)

// WithKeepCart leaves the cart untouched after an accepted order.
func WithKeepCart(keep bool) Option {
	return func(s *Service) { s.keepCart = keep }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

type Service struct {
	cart      CartStore
	addresses AddressReader
	assembler OrderPreparer
	submitter OrderSubmitter
	publisher events.Publisher
	keepCart  bool
	now       func() time.Time
	logger    *zap.Logger
}

func NewService(
	cart CartStore,
	addresses AddressReader,
	assembler OrderPreparer,
	submitter OrderSubmitter,
	publisher events.Publisher,
	l *zap.Logger,
	opts ...Option,
) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	s := &Service{
		cart:      cart,
		addresses: addresses,
		assembler: assembler,
		submitter: submitter,
		publisher: publisher,
		now:       time.Now,
		logger:    logger.OrNop(l),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Preview(country string) Summary {
	c := s.cart.Snapshot()
	subtotal := c.Total()
	shipping := s.cart.ShippingCost(country)
	return Summary{
		ItemCount:      c.ItemCount(),
		Subtotal:       subtotal,
		ShippingCost:   shipping,
		GrandTotal:     subtotal + shipping,
		DeliveryRegion: s.cart.DeliveryRegion(country),
	}
}

// Checkout places an order for the current cart and the saved address.
// The order is all-or-nothing: a submission error is returned as is and the
// cart is left untouched.
func (s *Service) Checkout(ctx context.Context, transactionID string) (*Result, error) {
	log := logger.FromContext(ctx, s.logger)

	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, ErrMissingTransactionID
	}

	addr, err := s.addresses.Get(ctx)
	if errors.Is(err, address.ErrNotFound) {
		return nil, ErrMissingAddress
	}
	if err != nil {
		return nil, fmt.Errorf("read shipping address: %w", err)
	}

	c := s.cart.Snapshot()
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	o := s.assembler.Prepare(c.Items, addr, transactionID)
	receipt, err := s.submitter.Submit(ctx, o)
	if err != nil {
		return nil, err
	}

	result := &Result{Order: o, Receipt: receipt}
	log = log.With(zap.String("order_id", o.OrderID))

	// the order is already accepted from here on; failures below are only logged
	if !s.keepCart {
		if err := s.cart.RemoveOrdered(ctx, c.Items); err != nil {
			log.Error("order accepted but cart could not be cleared", zap.Error(err))
		} else {
			result.CartCleared = true
		}
	}

	if err := s.publisher.Publish(ctx, events.NewOrderSubmitted(o, s.now())); err != nil {
		log.Error("failed to publish order event", zap.Error(err))
	}

	log.Info("checkout completed",
		zap.Float64("total", o.Total),
		zap.String("region", o.DeliveryRegion),
		zap.Bool("cart_cleared", result.CartCleared))
	return result, nil
}
