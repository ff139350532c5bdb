package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/admin/tg-bots/veo-bot/internal/ports/cache"
)

// Cache in-memory реализация cache.Cache. Используется в тестах
// и при запуске без Redis
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
}

type entry struct {
	value     string
	counter   int64
	expiresAt time.Time // нулевое время значит без TTL
}

// NewCache создаёт новый in-memory кэш
func NewCache() cache.Cache {
	return &Cache{
		entries: make(map[string]entry),
	}
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Get получает значение по ключу
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || e.expired(time.Now()) {
		delete(c.entries, key)
		return "", fmt.Errorf("key not found: %s", key)
	}
	return e.value, nil
}

// Set устанавливает значение с TTL
func (c *Cache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}
	c.entries[key] = entry{value: value, expiresAt: expiresAt}
	return nil
}

// Delete удаляет значение по ключу
func (c *Cache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

// Exists проверяет существование ключа
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || e.expired(time.Now()) {
		delete(c.entries, key)
		return false, nil
	}
	return true, nil
}

// Incr атомарно инкрементирует счётчик; TTL ставится при первом инкременте
func (c *Cache) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	e, ok := c.entries[key]
	if !ok || e.expired(now) {
		e = entry{}
		if ttl > 0 {
			e.expiresAt = now.Add(ttl)
		}
	}
	e.counter++
	c.entries[key] = e
	return e.counter, nil
}

// Close освобождает ресурсы кэша
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entry)
	return nil
}
