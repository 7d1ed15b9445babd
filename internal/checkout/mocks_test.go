package checkout

import (
	"context"
	"sync"

	"github.com/fjod/omnex-storefront/internal/domain"
	"github.com/fjod/omnex-storefront/internal/events"
	"github.com/fjod/omnex-storefront/internal/order"
	"github.com/fjod/omnex-storefront/internal/storage"
)

type mockSubmitter struct {
	m         sync.Mutex
	submitted []domain.Order
	receipt   *order.Receipt
	err       error
	onSubmit  func()
}

func (m *mockSubmitter) Submit(_ context.Context, o domain.Order) (*order.Receipt, error) {
	if m.onSubmit != nil {
		m.onSubmit()
	}
	m.m.Lock()
	defer m.m.Unlock()
	m.submitted = append(m.submitted, o)
	if m.err != nil {
		return nil, m.err
	}
	if m.receipt == nil {
		return &order.Receipt{Implicit: true}, nil
	}
	return m.receipt, nil
}

type mockPublisher struct {
	m      sync.Mutex
	events []events.OrderSubmitted
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, e events.OrderSubmitted) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, e)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

// flakyStore fails writes once failSet is set.
type flakyStore struct {
	*storage.MemoryStore
	failSet error
}

func (f *flakyStore) Set(ctx context.Context, key, value string) error {
	if f.failSet != nil {
		return f.failSet
	}
	return f.MemoryStore.Set(ctx, key, value)
}
