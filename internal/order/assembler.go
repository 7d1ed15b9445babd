package order

import (
	"fmt"
	"maps"
	"time"

	"github.com/fjod/omnex-storefront/internal/domain"
)

const DefaultPaymentMethod = "UPI/QR"

// ISO-8601 in UTC with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// ShippingQuoter prices shipping and names the delivery region for a country.
type ShippingQuoter interface {
	ShippingCost(country string) float64
	DeliveryRegion(country string) string
}

type AssemblerOption func(*Assembler)

func WithPaymentMethod(method string) AssemblerOption {
	return func(a *Assembler) {
		if method != "" {
			a.paymentMethod = method
		}
	}
}

func WithClock(now func() time.Time) AssemblerOption {
	return func(a *Assembler) { a.now = now }
}

type Assembler struct {
	shipping      ShippingQuoter
	paymentMethod string
	now           func() time.Time
}

func NewAssembler(shipping ShippingQuoter, opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		shipping:      shipping,
		paymentMethod: DefaultPaymentMethod,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Prepare builds the order for the given cart lines and address. It has no
// side effects; the payment always starts out pending.
func (a *Assembler) Prepare(items []domain.LineItem, addr domain.Address, transactionID string) domain.Order {
	now := a.now()

	orderItems := make([]domain.OrderItem, 0, len(items))
	var subtotal float64
	for _, item := range items {
		subtotal += item.Subtotal()
		orderItems = append(orderItems, domain.NewOrderItem(item))
	}

	shippingCost := a.shipping.ShippingCost(addr.Country)
	shipping := addr
	shipping.Attributes = maps.Clone(addr.Attributes)

	return domain.Order{
		OrderID:        fmt.Sprintf("ORD-%d", now.UnixMilli()),
		Timestamp:      now.UTC().Format(timestampLayout),
		Items:          orderItems,
		Subtotal:       subtotal,
		ShippingCost:   shippingCost,
		DeliveryRegion: a.shipping.DeliveryRegion(addr.Country),
		Total:          subtotal + shippingCost,
		Shipping:       shipping,
		Payment: domain.Payment{
			Method:        a.paymentMethod,
			TransactionID: transactionID,
			Status:        domain.PaymentStatusPending,
		},
	}
}
