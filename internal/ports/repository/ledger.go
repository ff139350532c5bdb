package repository

import (
	"context"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
)

// ILedgerRepo интерфейс журнала движений кредитов.
// Журнал append-only: баланс пользователя меняется ТОЛЬКО через ApplyDelta
type ILedgerRepo interface {
	// ApplyDelta атомарно записывает проводку и сдвигает баланс пользователя.
	// Возвращает domain.ErrInsufficientCredits если баланс ушёл бы в минус,
	// domain.ErrDuplicatePayment если payment_id уже проведён
	ApplyDelta(ctx context.Context, entry *domain.Transaction) (newBalance int64, err error)

	GetBalance(ctx context.Context, telegramID int64) (int64, error)
	// TotalCredits возвращает суммарный баланс всех пользователей
	TotalCredits(ctx context.Context) (int64, error)
	PaymentExists(ctx context.Context, paymentID string) (bool, error)
	ListByUser(ctx context.Context, telegramID int64, limit int) ([]domain.Transaction, error)
}
