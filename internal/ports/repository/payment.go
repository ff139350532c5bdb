package repository

import (
	"context"
	"time"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
	"github.com/google/uuid"
)

// IPaymentRepo интерфейс для работы с платёжными намерениями (карта/СБП).
// Stars сюда не пишутся: их рассчитывает сам Telegram
type IPaymentRepo interface {
	Create(ctx context.Context, payment *domain.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	GetByProviderID(ctx context.Context, providerID string) (*domain.Payment, error)
	SetProviderID(ctx context.Context, id uuid.UUID, providerID string) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus, errorMessage *string) error

	// ListPendingSince возвращает незакрытые платежи не старше порога для фонового сверщика
	ListPendingSince(ctx context.Context, since time.Time) ([]domain.Payment, error)
}
