package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/admin/tg-bots/veo-bot/internal/ports/repository"
	"github.com/admin/tg-bots/veo-bot/internal/ports/usecase"
)

const (
	paymentReconcilerName = "payment-reconciler"

	// reconcileInterval как часто сверяем незакрытые платежи с ЮКассой.
	// Webhook может не дойти (сеть, деплой, не-белый IP), поллер дочитывает
	reconcileInterval = 15 * time.Second

	// reconcileWindow платежи старше суток не сверяем: пользователь давно ушёл,
	// провайдер сам переводит брошенные платежи в canceled
	reconcileWindow = 24 * time.Hour
)

// PaymentReconciler джоба сверки pending-платежей со статусом у провайдера
type PaymentReconciler struct {
	payments repository.IPaymentRepo
	billing  usecase.IBillingUseCase
	log      *slog.Logger
}

func NewPaymentReconciler(
	payments repository.IPaymentRepo,
	billing usecase.IBillingUseCase,
	log *slog.Logger,
) *PaymentReconciler {
	return &PaymentReconciler{
		payments: payments,
		billing:  billing,
		log:      log,
	}
}

func (j *PaymentReconciler) Name() string {
	return paymentReconcilerName
}

// NextRun каждые 15 секунд
func (j *PaymentReconciler) NextRun(now time.Time) time.Time {
	return now.Add(reconcileInterval)
}

// RetrySchedule без ретраев: следующий тик через 15 секунд сам повторит сверку
func (j *PaymentReconciler) RetrySchedule() []time.Duration {
	return nil
}

// Run перебирает незакрытые платежи и дочитывает их статусы у провайдера.
// Ошибка сверки одного платежа не прерывает остальные: повторный webhook
// или следующий тик доведут его до конца
func (j *PaymentReconciler) Run(ctx context.Context) error {
	since := time.Now().Add(-reconcileWindow)

	pending, err := j.payments.ListPendingSince(ctx, since)
	if err != nil {
		return fmt.Errorf("failed to list pending payments: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	j.log.Debug("reconciling pending payments", "count", len(pending))

	var failed int
	for _, payment := range pending {
		if err := j.billing.SyncCardPayment(ctx, &payment); err != nil {
			failed++
			j.log.Warn("failed to sync payment with provider",
				"payment_id", payment.ID,
				"provider_id", payment.ProviderID,
				"error", err,
			)
		}
	}

	if failed > 0 {
		j.log.Warn("payment reconciliation finished with errors",
			"total", len(pending),
			"failed", failed,
		)
	}
	return nil
}
