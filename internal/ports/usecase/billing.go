package usecase

import (
	"context"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
	"github.com/google/uuid"
)

// IBillingUseCase интерфейс биллинга: покупка пакетов кредитов и зачисление
// платежей с обоих каналов (Stars, карта/СБП)
type IBillingUseCase interface {
	// Packages возвращает каталог пакетов кредитов
	Packages() []domain.CreditPackage
	GetPackage(id string) (*domain.CreditPackage, error)

	// CreateStarsInvoice отправляет пользователю invoice на оплату звёздами
	CreateStarsInvoice(ctx context.Context, user *domain.User, chatID int64, packageID string) error
	// ValidatePreCheckout проверяет pre_checkout_query перед подтверждением
	ValidatePreCheckout(ctx context.Context, query *domain.PreCheckoutQuery) error
	// SettleStarsPayment зачисляет successful_payment от Telegram
	SettleStarsPayment(ctx context.Context, payerID int64, payment *domain.SuccessfulPayment) (*SettleResult, error)

	// CreateCardPayment создаёт платёж в YooKassa и возвращает ссылку на оплату
	CreateCardPayment(ctx context.Context, user *domain.User, packageID string) (confirmationURL string, err error)
	// SettleCardPayment зачисляет подтверждённый провайдером платёж.
	// Вызывается и вебхуком, и фоновым сверщиком, повторный вызов no-op
	SettleCardPayment(ctx context.Context, paymentID uuid.UUID) (*SettleResult, error)
	// SyncCardPayment сверяет незакрытый платёж со статусом у провайдера
	SyncCardPayment(ctx context.Context, payment *domain.Payment) error
}

// SettleResult результат зачисления платежа
type SettleResult struct {
	CreditsAdded int64
	NewBalance   int64
	Duplicate    bool // платёж уже был проведён ранее
}
