package billing

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
	paymentPorts "github.com/admin/tg-bots/veo-bot/internal/ports/payment"
	"github.com/admin/tg-bots/veo-bot/internal/ports/usecase"
	"github.com/google/uuid"
)

// CreateCardPayment создаёт платёж в ЮКассе и возвращает ссылку на оплату.
// Intent пишется в БД ДО похода к провайдеру: фоновый сверщик дочитает статус,
// даже если процесс умрёт между созданием платежа и ответом пользователю
func (u *UseCase) CreateCardPayment(ctx context.Context, user *domain.User, packageID string) (string, error) {
	if u.provider == nil {
		return "", fmt.Errorf("card payments are not configured")
	}

	pkg, err := u.catalog.Get(packageID)
	if err != nil {
		return "", err
	}

	intent := &domain.Payment{
		ID:        uuid.New(),
		UserID:    user.TelegramID,
		PackageID: pkg.ID,
		Amount:    fmt.Sprintf("%d.00", pkg.PriceRub),
		Currency:  "RUB",
		Method:    domain.PaymentMethodYookassa,
		Status:    domain.PaymentStatusPending,
	}

	if err := u.payments.Create(ctx, intent); err != nil {
		return "", fmt.Errorf("failed to create payment intent: %w", err)
	}

	result, err := u.provider.CreatePayment(ctx, paymentPorts.CreatePaymentRequest{
		PaymentID:   intent.ID,
		UserID:      user.TelegramID,
		PackageID:   pkg.ID,
		Amount:      intent.Amount,
		Currency:    intent.Currency,
		Description: pkg.Title,
	})
	if err != nil {
		errMsg := err.Error()
		if updErr := u.payments.UpdateStatus(ctx, intent.ID, domain.PaymentStatusFailed, &errMsg); updErr != nil {
			u.log.Error("failed to mark payment failed",
				"error", updErr,
				"payment_id", intent.ID,
			)
		}
		return "", fmt.Errorf("failed to create provider payment: %w", err)
	}

	if err := u.payments.SetProviderID(ctx, intent.ID, result.ProviderID); err != nil {
		return "", fmt.Errorf("failed to store provider id: %w", err)
	}

	u.log.Info("card payment created",
		"payment_id", intent.ID,
		"provider_id", result.ProviderID,
		"user_id", user.TelegramID,
		"package_id", pkg.ID,
	)
	return result.ConfirmationURL, nil
}

// SettleCardPayment зачисляет платёж по intent-у. Телу вебхука не верим:
// статус всегда перечитывается из API провайдера. Повторный вызов no-op
func (u *UseCase) SettleCardPayment(ctx context.Context, paymentID uuid.UUID) (*usecase.SettleResult, error) {
	if u.provider == nil {
		return nil, fmt.Errorf("card payments are not configured")
	}

	intent, err := u.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if intent.Status == domain.PaymentStatusSucceeded {
		return &usecase.SettleResult{Duplicate: true}, nil
	}
	if intent.ProviderID == nil {
		return nil, fmt.Errorf("payment %s has no provider id", intent.ID)
	}

	info, err := u.provider.GetPayment(ctx, *intent.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch provider payment: %w", err)
	}

	switch info.Status {
	case "succeeded":
		if !info.Paid {
			return nil, fmt.Errorf("provider payment %s succeeded but not paid", info.ProviderID)
		}
	case "canceled":
		if err := u.payments.UpdateStatus(ctx, intent.ID, domain.PaymentStatusCanceled, nil); err != nil {
			return nil, err
		}
		u.log.Info("card payment canceled by provider",
			"payment_id", intent.ID,
			"provider_id", info.ProviderID,
		)
		return nil, nil
	default:
		// pending / waiting_for_capture, ждём дальше
		return nil, nil
	}

	// Сверка заявленного с фактическим: сумма и валюта провайдера против intent-а
	if !amountsEqual(info.Amount, intent.Amount) {
		u.log.Warn("card payment amount mismatch, not settled",
			"expected", intent.Amount,
			"actual", info.Amount,
			"payment_id", intent.ID,
		)
		return nil, domain.ErrAmountMismatch
	}
	if info.Currency != intent.Currency {
		return nil, domain.ErrCurrencyMismatch
	}

	pkg, err := u.catalog.Get(intent.PackageID)
	if err != nil {
		return nil, err
	}

	settlement := domain.Settlement{
		PaymentID: *intent.ProviderID,
		UserID:    intent.UserID,
		PackageID: intent.PackageID,
		Amount:    intent.Amount,
		Currency:  intent.Currency,
		Method:    domain.PaymentMethodYookassa,
	}

	result, err := u.settle(ctx, settlement, pkg)
	if err != nil {
		return nil, err
	}

	// Статус intent-а вторичен: повторное зачисление отобьёт журнал
	if err := u.payments.UpdateStatus(ctx, intent.ID, domain.PaymentStatusSucceeded, nil); err != nil {
		u.log.Error("failed to mark payment succeeded",
			"error", err,
			"payment_id", intent.ID,
		)
	}

	return result, nil
}

// amountsEqual сравнивает денежные суммы численно с допуском в копейку.
// Непарсящаяся сумма считается расхождением
func amountsEqual(a, b string) bool {
	av, err := strconv.ParseFloat(a, 64)
	if err != nil {
		return false
	}
	bv, err := strconv.ParseFloat(b, 64)
	if err != nil {
		return false
	}
	return math.Abs(av-bv) <= 0.01
}

// SyncCardPayment сверяет незакрытый платёж со статусом у провайдера.
// Вызывается фоновым сверщиком для pending-платежей
func (u *UseCase) SyncCardPayment(ctx context.Context, payment *domain.Payment) error {
	if payment.Status != domain.PaymentStatusPending {
		return nil
	}

	_, err := u.SettleCardPayment(ctx, payment.ID)
	return err
}
