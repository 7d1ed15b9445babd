package address

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fjod/omnex-storefront/internal/domain"
	"github.com/fjod/omnex-storefront/internal/logger"
	"github.com/fjod/omnex-storefront/internal/storage"
	"go.uber.org/zap"
)

var ErrNotFound = errors.New("no shipping address saved")

// Store keeps the single shipping address of the session.
type Store struct {
	kv     storage.Store
	logger *zap.Logger
}

func NewStore(kv storage.Store, l *zap.Logger) *Store {
	return &Store{kv: kv, logger: logger.OrNop(l)}
}

// Save overwrites the stored address.
func (s *Store) Save(ctx context.Context, addr domain.Address) error {
	data, err := json.Marshal(addr)
	if err != nil {
		return fmt.Errorf("marshal address: %w", err)
	}
	if err := s.kv.Set(ctx, storage.ShippingKey, string(data)); err != nil {
		return fmt.Errorf("save address: %w", err)
	}
	return nil
}

// Get returns ErrNotFound when no address is stored. A record that cannot be
// decoded is reported the same way after logging a warning.
func (s *Store) Get(ctx context.Context) (domain.Address, error) {
	raw, err := s.kv.Get(ctx, storage.ShippingKey)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.Address{}, ErrNotFound
	}
	if err != nil {
		return domain.Address{}, fmt.Errorf("get address: %w", err)
	}

	var addr domain.Address
	if err := json.Unmarshal([]byte(raw), &addr); err != nil {
		logger.FromContext(ctx, s.logger).Warn("stored shipping address is malformed, ignoring it",
			zap.String("key", storage.ShippingKey), zap.Error(err))
		return domain.Address{}, ErrNotFound
	}
	return addr, nil
}
