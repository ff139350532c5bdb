package billing

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
	"github.com/admin/tg-bots/veo-bot/internal/ports/usecase"
)

const starsPayloadPrefix = "credits_"

// StarsPayload строит payload invoice-а: "credits_<package>_<user>"
func StarsPayload(packageID string, userID int64) string {
	return fmt.Sprintf("%s%s_%d", starsPayloadPrefix, packageID, userID)
}

// ParseStarsPayload разбирает payload. Id пакета сам содержит подчёркивания,
// поэтому id пользователя отрезается по последнему "_"
func ParseStarsPayload(payload string) (packageID string, userID int64, err error) {
	if !strings.HasPrefix(payload, starsPayloadPrefix) {
		return "", 0, fmt.Errorf("unexpected payload format: %q", payload)
	}

	rest := strings.TrimPrefix(payload, starsPayloadPrefix)
	idx := strings.LastIndex(rest, "_")
	if idx <= 0 || idx == len(rest)-1 {
		return "", 0, fmt.Errorf("unexpected payload format: %q", payload)
	}

	userID, err = strconv.ParseInt(rest[idx+1:], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid user id in payload %q: %w", payload, err)
	}

	return rest[:idx], userID, nil
}

// CreateStarsInvoice отправляет пользователю invoice на оплату звёздами
func (u *UseCase) CreateStarsInvoice(ctx context.Context, user *domain.User, chatID int64, packageID string) error {
	pkg, err := u.catalog.Get(packageID)
	if err != nil {
		return err
	}

	payload := StarsPayload(pkg.ID, user.TelegramID)
	description := fmt.Sprintf("%d кредитов для генерации видео", pkg.TotalCredits())

	if _, err := u.tg.SendInvoice(ctx, chatID, pkg.Title, description, payload, pkg.PriceStars); err != nil {
		u.log.Error("failed to send stars invoice",
			"error", err,
			"user_id", user.TelegramID,
			"package_id", pkg.ID,
		)
		return fmt.Errorf("failed to send invoice: %w", err)
	}

	u.log.Info("stars invoice sent",
		"user_id", user.TelegramID,
		"package_id", pkg.ID,
		"stars", pkg.PriceStars,
	)
	return nil
}

// ValidatePreCheckout проверяет pre_checkout_query перед подтверждением.
// Любая ошибка означает отказ: Telegram не спишет звёзды без нашего ok
func (u *UseCase) ValidatePreCheckout(ctx context.Context, query *domain.PreCheckoutQuery) error {
	packageID, claimedUserID, err := ParseStarsPayload(query.InvoicePayload)
	if err != nil {
		return fmt.Errorf("pre_checkout payload rejected: %w", err)
	}

	pkg, err := u.catalog.Get(packageID)
	if err != nil {
		return err
	}

	if query.Currency != "XTR" {
		return domain.ErrCurrencyMismatch
	}
	if query.TotalAmount != pkg.PriceStars {
		u.log.Warn("pre_checkout amount mismatch",
			"expected", pkg.PriceStars,
			"actual", query.TotalAmount,
			"package_id", packageID,
		)
		return domain.ErrAmountMismatch
	}
	if query.From != nil && query.From.ID != claimedUserID {
		u.log.Warn("pre_checkout payer mismatch",
			"claimed", claimedUserID,
			"actual", query.From.ID,
		)
		return domain.ErrPayerMismatch
	}

	return nil
}

// SettleStarsPayment зачисляет successful_payment от Telegram.
// payerID реальный отправитель сообщения, заявленный в payload пользователь обязан с ним совпадать
func (u *UseCase) SettleStarsPayment(ctx context.Context, payerID int64, payment *domain.SuccessfulPayment) (*usecase.SettleResult, error) {
	packageID, claimedUserID, err := ParseStarsPayload(payment.InvoicePayload)
	if err != nil {
		return nil, fmt.Errorf("stars payload rejected: %w", err)
	}

	pkg, err := u.catalog.Get(packageID)
	if err != nil {
		return nil, err
	}

	if claimedUserID != payerID {
		u.log.Warn("stars payer mismatch, payment not settled",
			"claimed", claimedUserID,
			"payer", payerID,
			"charge_id", payment.TelegramPaymentChargeID,
		)
		return nil, domain.ErrPayerMismatch
	}
	if payment.Currency != "XTR" {
		return nil, domain.ErrCurrencyMismatch
	}
	if payment.TotalAmount != pkg.PriceStars {
		u.log.Warn("stars amount mismatch, payment not settled",
			"expected", pkg.PriceStars,
			"actual", payment.TotalAmount,
			"charge_id", payment.TelegramPaymentChargeID,
		)
		return nil, domain.ErrAmountMismatch
	}

	settlement := domain.Settlement{
		PaymentID: payment.TelegramPaymentChargeID,
		UserID:    payerID,
		PackageID: pkg.ID,
		Amount:    strconv.FormatInt(payment.TotalAmount, 10),
		Currency:  payment.Currency,
		Method:    domain.PaymentMethodTelegramStars,
	}

	return u.settle(ctx, settlement, pkg)
}
