package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"log/slog"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
	paymentPorts "github.com/admin/tg-bots/veo-bot/internal/ports/payment"
	"github.com/admin/tg-bots/veo-bot/internal/ports/repository"
	"github.com/admin/tg-bots/veo-bot/internal/ports/service"
	telegramPorts "github.com/admin/tg-bots/veo-bot/internal/ports/telegram"
	"github.com/admin/tg-bots/veo-bot/internal/ports/usecase"
)

// UseCase биллинг: каталог пакетов и зачисление платежей с обоих рейлов
type UseCase struct {
	ledger   repository.ILedgerRepo
	payments repository.IPaymentRepo
	provider paymentPorts.ICardPaymentProvider // nil, если карточный рейл не настроен
	tg       telegramPorts.IClient
	notifier service.INotifier
	catalog  *Catalog
	log      *slog.Logger
}

// New создаёт use case биллинга
func New(
	ledger repository.ILedgerRepo,
	payments repository.IPaymentRepo,
	provider paymentPorts.ICardPaymentProvider,
	tg telegramPorts.IClient,
	notifier service.INotifier,
	catalog *Catalog,
	log *slog.Logger,
) *UseCase {
	return &UseCase{
		ledger:   ledger,
		payments: payments,
		provider: provider,
		tg:       tg,
		notifier: notifier,
		catalog:  catalog,
		log:      log,
	}
}

// Packages возвращает каталог пакетов кредитов
func (u *UseCase) Packages() []domain.CreditPackage {
	return u.catalog.Packages()
}

// GetPackage возвращает пакет по id
func (u *UseCase) GetPackage(id string) (*domain.CreditPackage, error) {
	return u.catalog.Get(id)
}

// settle единая точка зачисления для обоих рейлов.
// Повтор платежа репозиторий отбивает как ErrDuplicatePayment, для вызывающего это no-op успех
func (u *UseCase) settle(ctx context.Context, s domain.Settlement, pkg *domain.CreditPackage) (*usecase.SettleResult, error) {
	credits := pkg.TotalCredits()
	method := s.Method
	paymentID := s.PaymentID

	entry := &domain.Transaction{
		UserID:        s.UserID,
		Type:          domain.TransactionTypePurchase,
		Amount:        credits,
		Description:   fmt.Sprintf("Покупка пакета %s", pkg.ID),
		PaymentMethod: &method,
		PaymentID:     &paymentID,
	}

	newBalance, err := u.ledger.ApplyDelta(ctx, entry)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicatePayment) {
			u.log.Info("payment already settled, skipping",
				"payment_id", s.PaymentID,
				"user_id", s.UserID,
				"method", s.Method,
			)
			return &usecase.SettleResult{Duplicate: true}, nil
		}
		return nil, fmt.Errorf("failed to settle payment: %w", err)
	}

	u.log.Info("payment settled",
		"payment_id", s.PaymentID,
		"user_id", s.UserID,
		"method", s.Method,
		"credits", credits,
		"new_balance", newBalance,
	)

	u.notifyPaymentSucceeded(ctx, s.UserID, credits, newBalance)

	return &usecase.SettleResult{
		CreditsAdded: credits,
		NewBalance:   newBalance,
	}, nil
}

// notifyPaymentSucceeded публикует уведомление после коммита зачисления.
// Сбой доставки только логируется: деньги уже проведены
func (u *UseCase) notifyPaymentSucceeded(ctx context.Context, userID, credits, newBalance int64) {
	event := domain.NotificationEvent{
		Kind:         domain.NotificationPaymentSucceeded,
		UserID:       userID,
		CreatedAt:    time.Now(),
		CreditsAdded: credits,
		NewBalance:   newBalance,
	}

	if err := u.notifier.Notify(ctx, event); err != nil {
		u.log.Warn("failed to publish payment notification",
			"error", err,
			"user_id", userID,
		)
	}
}

var _ usecase.IBillingUseCase = (*UseCase)(nil)
