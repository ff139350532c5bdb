package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/admin/tg-bots/veo-bot/internal/ports/cache"
)

const (
	// rateLimitMessages лимит обновлений от одного пользователя за окно
	rateLimitMessages = 100
	rateLimitWindow   = 60 * time.Second
)

// RateLimiter ограничивает частоту обновлений от одного пользователя.
// Счётчик живёт в кэше: INCR с TTL на первом инкременте, окно фиксированное
type RateLimiter struct {
	cache cache.Cache
	log   *slog.Logger
}

func NewRateLimiter(cache cache.Cache, log *slog.Logger) *RateLimiter {
	return &RateLimiter{
		cache: cache,
		log:   log,
	}
}

// Allow возвращает true, если обновление пользователя можно обрабатывать.
// При недоступном кэше пропускаем: троттлинг не должен ронять обработку
func (r *RateLimiter) Allow(ctx context.Context, userID int64) bool {
	key := fmt.Sprintf("ratelimit:%d", userID)

	count, err := r.cache.Incr(ctx, key, rateLimitWindow)
	if err != nil {
		r.log.Warn("rate limiter cache unavailable, allowing request",
			"user_id", userID,
			"error", err,
		)
		return true
	}

	if count > rateLimitMessages {
		r.log.Warn("rate limit exceeded",
			"user_id", userID,
			"count", count,
		)
		return false
	}
	return true
}
