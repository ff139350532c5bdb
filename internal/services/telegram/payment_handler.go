package telegram

import (
	"context"
	"errors"
	"fmt"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
)

// HandlePreCheckoutQuery обрабатывает pre_checkout_query от Telegram (платежи Stars).
// Telegram спишет звёзды только после нашего подтверждения, поэтому здесь
// последняя точка, где покупку можно отклонить
func (s *Service) HandlePreCheckoutQuery(ctx context.Context, query *domain.PreCheckoutQuery) error {
	if query == nil || query.From == nil {
		s.log.Error("pre_checkout_query is nil or has no from")
		return fmt.Errorf("invalid pre_checkout_query")
	}

	if err := s.billing.ValidatePreCheckout(ctx, query); err != nil {
		s.log.Warn("pre_checkout_query rejected",
			"query_id", query.ID,
			"telegram_id", query.From.ID,
			"payload", query.InvoicePayload,
			"error", err,
		)
		message := "Платёж не может быть обработан. Попробуйте оформить покупку заново."
		if answerErr := s.tg.AnswerPreCheckoutQuery(ctx, query.ID, false, &message); answerErr != nil {
			return fmt.Errorf("failed to answer pre_checkout_query: %w", answerErr)
		}
		return nil // платёж отклонён, но это не ошибка обработки
	}

	if err := s.tg.AnswerPreCheckoutQuery(ctx, query.ID, true, nil); err != nil {
		return fmt.Errorf("failed to answer pre_checkout_query: %w", err)
	}

	s.log.Info("pre_checkout_query confirmed",
		"query_id", query.ID,
		"telegram_id", query.From.ID,
		"amount", query.TotalAmount,
	)
	return nil
}

// HandleSuccessfulPayment обрабатывает successful_payment от Telegram (платежи Stars).
// Звёзды уже списаны, единственная допустимая реакция на ошибку здесь
// лог и алерт: возвращать платёж Telegram не умеет
func (s *Service) HandleSuccessfulPayment(ctx context.Context, user *domain.User, chatID int64, payment *domain.SuccessfulPayment) error {
	result, err := s.billing.SettleStarsPayment(ctx, user.TelegramID, payment)
	if err != nil {
		s.log.Error("failed to settle stars payment",
			"error", err,
			"telegram_id", user.TelegramID,
			"charge_id", payment.TelegramPaymentChargeID,
			"payload", payment.InvoicePayload,
		)
		if errors.Is(err, domain.ErrUnknownPackage) || errors.Is(err, domain.ErrPayerMismatch) {
			// Зачислить нечего: сообщаем пользователю и оставляем разбор оператору
			return s.tg.SendMessage(ctx, chatID,
				"❌ Не удалось зачислить платёж. Напишите в поддержку, мы разберёмся.")
		}
		return domain.WrapBusinessError(fmt.Errorf("failed to settle stars payment: %w", err))
	}

	if result.Duplicate {
		// Повторная доставка апдейта: кредиты уже начислены, не дублируем сообщение
		s.log.Info("duplicate stars payment ignored",
			"telegram_id", user.TelegramID,
			"charge_id", payment.TelegramPaymentChargeID,
		)
		return nil
	}

	s.log.Info("stars payment settled",
		"telegram_id", user.TelegramID,
		"charge_id", payment.TelegramPaymentChargeID,
		"credits_added", result.CreditsAdded,
		"new_balance", result.NewBalance,
	)
	return nil
}
