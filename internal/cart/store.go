package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/fjod/omnex-storefront/internal/domain"
	"github.com/fjod/omnex-storefront/internal/logger"
	"github.com/fjod/omnex-storefront/internal/storage"
	"go.uber.org/zap"
)

var (
	ErrMissingProductID = errors.New("product must carry an id")
	ErrInvalidQuantity  = errors.New("quantity must be positive")
)

type Option func(*Store)

func WithShippingPolicy(p ShippingPolicy) Option {
	return func(s *Store) { s.shipping = p }
}

func WithDisplay(d Display) Option {
	return func(s *Store) {
		if d != nil {
			s.display = d
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = logger.OrNop(l) }
}

// Store is the session cart. It holds the line items in memory and writes
// the whole cart back to the key-value store after every mutation.
type Store struct {
	mu       sync.Mutex
	kv       storage.Store
	cart     domain.Cart
	shipping ShippingPolicy
	display  Display
	logger   *zap.Logger
}

// New restores the persisted cart, or starts empty when nothing is stored.
func New(ctx context.Context, kv storage.Store, opts ...Option) (*Store, error) {
	s := &Store{
		kv:       kv,
		shipping: DefaultShippingPolicy(),
		display:  NopDisplay{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	c, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cart = c
	s.refreshDisplay()
	s.mu.Unlock()
	return s, nil
}

// Load reads the persisted cart without touching the in-memory one.
// An absent or malformed record yields an empty cart.
func (s *Store) Load(ctx context.Context) (domain.Cart, error) {
	raw, err := s.kv.Get(ctx, storage.CartKey)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.Cart{}, nil
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("load cart: %w", err)
	}

	var c domain.Cart
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		logger.FromContext(ctx, s.logger).Warn("stored cart is malformed, starting with an empty cart",
			zap.String("key", storage.CartKey), zap.Error(err))
		return domain.Cart{}, nil
	}
	return normalize(c), nil
}

// AddItem merges quantity into the line with the same id or appends a new
// line. A zero quantity adds one unit.
func (s *Store) AddItem(ctx context.Context, product domain.Product, quantity int) error {
	if product.ID == "" {
		return ErrMissingProductID
	}
	if quantity < 0 {
		return ErrInvalidQuantity
	}
	if quantity == 0 {
		quantity = 1
	}

	err := s.mutate(ctx, func(c *domain.Cart) bool {
		if i := c.Index(product.ID); i >= 0 {
			c.Items[i].Quantity += quantity
			return true
		}
		c.Items = append(c.Items, domain.NewLineItem(product, quantity))
		return true
	})
	if err != nil {
		return err
	}

	s.display.Notify(fmt.Sprintf("%s added to cart!", product.Name), NotificationTTL)
	return nil
}

// RemoveItem drops the line with the given id. Removing an absent id leaves
// the cart unchanged.
func (s *Store) RemoveItem(ctx context.Context, id domain.ProductID) error {
	return s.mutate(ctx, func(c *domain.Cart) bool {
		i := c.Index(id)
		if i >= 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
		}
		return true
	})
}

// UpdateQuantity sets the quantity of an existing line, clamped to at least 1.
// Nothing happens when the id is not in the cart.
func (s *Store) UpdateQuantity(ctx context.Context, id domain.ProductID, quantity int) error {
	return s.mutate(ctx, func(c *domain.Cart) bool {
		i := c.Index(id)
		if i < 0 {
			return false
		}
		c.Items[i].Quantity = max(1, quantity)
		return true
	})
}

func (s *Store) Clear(ctx context.Context) error {
	return s.mutate(ctx, func(c *domain.Cart) bool {
		c.Items = nil
		return true
	})
}

// RemoveOrdered takes the ordered quantities out of the cart. Lines that drop
// to zero are removed; anything added after the order was taken stays.
func (s *Store) RemoveOrdered(ctx context.Context, items []domain.LineItem) error {
	return s.mutate(ctx, func(c *domain.Cart) bool {
		changed := false
		for _, ordered := range items {
			i := c.Index(ordered.ID)
			if i < 0 {
				continue
			}
			changed = true
			if c.Items[i].Quantity > ordered.Quantity {
				c.Items[i].Quantity -= ordered.Quantity
				continue
			}
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
		}
		return changed
	})
}

// Snapshot returns a copy of the current cart.
func (s *Store) Snapshot() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

func (s *Store) Items() []domain.LineItem {
	return s.Snapshot().Items
}

func (s *Store) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Total()
}

func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.ItemCount()
}

func (s *Store) ShippingCost(country string) float64 {
	return s.shipping.Cost(country)
}

func (s *Store) DeliveryRegion(country string) string {
	return s.shipping.Region(country)
}

func (s *Store) GrandTotal(country string) float64 {
	return s.Total() + s.ShippingCost(country)
}

// mutate applies fn to a copy of the cart and, when fn reports a change,
// persists the copy before making it current. A failed write leaves the
// in-memory cart as it was.
func (s *Store) mutate(ctx context.Context, fn func(c *domain.Cart) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cart.Clone()
	if !fn(&next) {
		return nil
	}

	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := s.kv.Set(ctx, storage.CartKey, string(data)); err != nil {
		logger.FromContext(ctx, s.logger).Error("failed to persist cart", zap.Error(err))
		return fmt.Errorf("persist cart: %w", err)
	}

	s.cart = next
	s.refreshDisplay()
	return nil
}

// refreshDisplay must be called with mu held.
func (s *Store) refreshDisplay() {
	count := s.cart.ItemCount()
	s.display.UpdateBadge(count, count > 0)
}

// normalize restores the cart invariants on data read back from storage:
// every line has an id, ids are unique and quantities are at least 1.
func normalize(c domain.Cart) domain.Cart {
	out := domain.Cart{}
	for _, item := range c.Items {
		if item.ID == "" {
			continue
		}
		item.Quantity = max(1, item.Quantity)
		if i := out.Index(item.ID); i >= 0 {
			out.Items[i].Quantity += item.Quantity
			continue
		}
		out.Items = append(out.Items, item)
	}
	return out
}
