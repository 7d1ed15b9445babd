// Package catalog reads the static product list.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/fjod/omnex-storefront/internal/domain"
	"github.com/fjod/omnex-storefront/internal/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var ErrProductNotFound = errors.New("product not found")

// StatusError is returned when the catalog resource answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog %s: unexpected status %d", e.URL, e.StatusCode)
}

// Reader fetches products.json on every call. Nothing is cached between
// calls; callers that overlap share a single request.
type Reader struct {
	client *http.Client
	url    string
	sfg    singleflight.Group
	logger *zap.Logger
}

func NewReader(client *http.Client, url string, l *zap.Logger) *Reader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Reader{
		client: client,
		url:    url,
		logger: logger.OrNop(l),
	}
}

// NewTransport returns an HTTP transport that also serves file:// URLs from root,
// so the catalog can be a local static file.
func NewTransport(root string) *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.RegisterProtocol("file", http.NewFileTransport(http.Dir(root)))
	return t
}

// LoadProducts returns a fresh copy of the catalog. The shared fetch is not
// tied to any single caller's context; each caller stops waiting when its
// own ctx is done, and the client timeout bounds the fetch itself.
func (r *Reader) LoadProducts(ctx context.Context) (*domain.Catalog, error) {
	fetchCtx := context.WithoutCancel(ctx)
	ch := r.sfg.DoChan(r.url, func() (interface{}, error) {
		return r.fetch(fetchCtx)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("fetch catalog: %w", ctx.Err())
	case res = <-ch:
	}

	if res.Err != nil {
		logger.FromContext(ctx, r.logger).Error("catalog fetch failed",
			zap.String("url", r.url), zap.Error(res.Err))
		return nil, res.Err
	}
	if res.Shared {
		logger.FromContext(ctx, r.logger).Debug("catalog fetch shared with a concurrent caller")
	}

	c := res.Val.(*domain.Catalog)
	products := make([]domain.Product, len(c.Products))
	copy(products, c.Products)
	return &domain.Catalog{Products: products}, nil
}

// GetProduct reloads the catalog and returns the product with the given id.
func (r *Reader) GetProduct(ctx context.Context, id domain.ProductID) (*domain.Product, error) {
	c, err := r.LoadProducts(ctx)
	if err != nil {
		return nil, err
	}
	p, ok := c.Find(id)
	if !ok {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (r *Reader) fetch(ctx context.Context) (*domain.Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: r.url, StatusCode: resp.StatusCode}
	}

	var c domain.Catalog
	if err := json.NewDecoder(resp.Body).Decode(&c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return &c, nil
}
