package http

import (
	"context"

	"github.com/fjod/omnex-storefront/internal/catalog"
	"github.com/fjod/omnex-storefront/internal/checkout"
	"github.com/fjod/omnex-storefront/internal/domain"
)

type catalogMock struct {
	products []domain.Product
	err      error
}

func (c catalogMock) LoadProducts(context.Context) (*domain.Catalog, error) {
	if c.err != nil {
		return nil, c.err
	}
	return &domain.Catalog{Products: c.products}, nil
}

func (c catalogMock) GetProduct(_ context.Context, id domain.ProductID) (*domain.Product, error) {
	if c.err != nil {
		return nil, c.err
	}
	for _, p := range c.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, catalog.ErrProductNotFound
}

type checkoutMock struct {
	result *checkout.Result
	err    error
	txn    string
}

func (c *checkoutMock) Checkout(_ context.Context, transactionID string) (*checkout.Result, error) {
	c.txn = transactionID
	if c.err != nil {
		return nil, c.err
	}
	return c.result, nil
}
