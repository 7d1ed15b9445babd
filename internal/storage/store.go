package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Keys of the records the storefront keeps.
const (
	CartKey     = "omnex-cart"
	ShippingKey = "omnex-shipping"
)

var ErrNotFound = errors.New("key not found")

// Store is a string-keyed, string-valued persistence API.
// Get returns ErrNotFound for an absent key; Delete of an absent key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendRedis    Backend = "redis"
	BackendMongo    Backend = "mongo"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

type Config struct {
	Backend Backend

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration

	MongoURI    string
	MongoDBName string

	SQLitePath  string
	PostgresDSN string
}

// Open connects to the configured backend and prepares it for use.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case BackendMemory, "":
		return NewMemoryStore(), nil
	case BackendRedis:
		return nonNil(ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisTTL))
	case BackendMongo:
		return nonNil(ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDBName))
	case BackendSQLite:
		return nonNil(OpenSQL(ctx, DialectSQLite, cfg.SQLitePath))
	case BackendPostgres:
		return nonNil(OpenSQL(ctx, DialectPostgres, cfg.PostgresDSN))
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// nonNil keeps a typed nil pointer out of the returned interface.
func nonNil[S Store](s S, err error) (Store, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}
