package cache

import (
	"context"
	"time"
)

// Cache интерфейс для работы с кэшем
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	// Incr атомарно инкрементирует счётчик; при первом инкременте ставит ttl
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Close() error
}
