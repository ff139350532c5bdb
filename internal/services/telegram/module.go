package telegram

import (
	"log/slog"

	"github.com/admin/tg-bots/veo-bot/internal/ports/cache"
	"github.com/admin/tg-bots/veo-bot/internal/ports/repository"
	"github.com/admin/tg-bots/veo-bot/internal/ports/telegram"
	"github.com/admin/tg-bots/veo-bot/internal/ports/usecase"
)

// Service роутит обновления Telegram в use case-ы: покупка кредитов,
// запуск генерации, админские операции
type Service struct {
	tg         telegram.IClient
	users      repository.IUserRepo
	billing    usecase.IBillingUseCase
	generation usecase.IGenerationUseCase
	admin      usecase.IAdminUseCase
	states     *StateStore
	limiter    *RateLimiter
	log        *slog.Logger
}

func New(
	tg telegram.IClient,
	users repository.IUserRepo,
	billing usecase.IBillingUseCase,
	generation usecase.IGenerationUseCase,
	admin usecase.IAdminUseCase,
	cache cache.Cache,
	log *slog.Logger,
) *Service {
	return &Service{
		tg:         tg,
		users:      users,
		billing:    billing,
		generation: generation,
		admin:      admin,
		states:     NewStateStore(cache),
		limiter:    NewRateLimiter(cache, log),
		log:        log,
	}
}
