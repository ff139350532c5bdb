package billing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
)

func TestParseStarsPayload(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		packageID string
		userID    int64
		wantErr   bool
	}{
		{
			name:      "simple package id",
			payload:   "credits_basic_42",
			packageID: "basic",
			userID:    42,
		},
		{
			// id пакета сам содержит подчёркивание, режем по последнему
			name:      "package id with underscore",
			payload:   "credits_package_10_123456789",
			packageID: "package_10",
			userID:    123456789,
		},
		{
			name:    "missing prefix",
			payload: "bonus_package_10_42",
			wantErr: true,
		},
		{
			name:      "no user id",
			payload:   "credits_package_10",
			packageID: "package",
			userID:    10,
		},
		{
			name:    "non-numeric user id",
			payload: "credits_package_10_abc",
			wantErr: true,
		},
		{
			name:    "empty payload",
			payload: "",
			wantErr: true,
		},
		{
			name:    "trailing underscore",
			payload: "credits_package_10_",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			packageID, userID, err := ParseStarsPayload(tt.payload)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.packageID, packageID)
			assert.Equal(t, tt.userID, userID)
		})
	}
}

func TestStarsPayloadRoundTrip(t *testing.T) {
	payload := StarsPayload("package_50", 987654321)
	packageID, userID, err := ParseStarsPayload(payload)
	require.NoError(t, err)
	assert.Equal(t, "package_50", packageID)
	assert.Equal(t, int64(987654321), userID)
}

func TestCreateStarsInvoice(t *testing.T) {
	f := newBillingFixture(t)

	err := f.uc.CreateStarsInvoice(context.Background(), testUser(42), 42, "package_10")
	require.NoError(t, err)

	require.Len(t, f.tg.invoices, 1)
	inv := f.tg.invoices[0]
	assert.Equal(t, int64(42), inv.chatID)
	assert.Equal(t, "credits_package_10_42", inv.payload)
	assert.Equal(t, int64(749), inv.stars)
}

func TestCreateStarsInvoice_UnknownPackage(t *testing.T) {
	f := newBillingFixture(t)

	err := f.uc.CreateStarsInvoice(context.Background(), testUser(42), 42, "package_999")
	require.ErrorIs(t, err, domain.ErrUnknownPackage)
	assert.Empty(t, f.tg.invoices)
}

func TestValidatePreCheckout(t *testing.T) {
	f := newBillingFixture(t)
	payer := &domain.TelegramUser{ID: 42}

	tests := []struct {
		name    string
		query   *domain.PreCheckoutQuery
		wantErr error
	}{
		{
			name: "valid query",
			query: &domain.PreCheckoutQuery{
				From:           payer,
				Currency:       "XTR",
				TotalAmount:    749,
				InvoicePayload: StarsPayload("package_10", 42),
			},
		},
		{
			name: "wrong currency",
			query: &domain.PreCheckoutQuery{
				From:           payer,
				Currency:       "RUB",
				TotalAmount:    749,
				InvoicePayload: StarsPayload("package_10", 42),
			},
			wantErr: domain.ErrCurrencyMismatch,
		},
		{
			name: "amount below catalog price",
			query: &domain.PreCheckoutQuery{
				From:           payer,
				Currency:       "XTR",
				TotalAmount:    1,
				InvoicePayload: StarsPayload("package_10", 42),
			},
			wantErr: domain.ErrAmountMismatch,
		},
		{
			// payload заявляет другого пользователя: отказ до списания звёзд
			name: "payer mismatch",
			query: &domain.PreCheckoutQuery{
				From:           payer,
				Currency:       "XTR",
				TotalAmount:    749,
				InvoicePayload: StarsPayload("package_10", 777),
			},
			wantErr: domain.ErrPayerMismatch,
		},
		{
			name: "unknown package",
			query: &domain.PreCheckoutQuery{
				From:           payer,
				Currency:       "XTR",
				TotalAmount:    749,
				InvoicePayload: StarsPayload("package_999", 42),
			},
			wantErr: domain.ErrUnknownPackage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.uc.ValidatePreCheckout(context.Background(), tt.query)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestSettleStarsPayment_Duplicate(t *testing.T) {
	f := newBillingFixture(t)

	payment := &domain.SuccessfulPayment{
		Currency:                "XTR",
		TotalAmount:             79,
		InvoicePayload:          StarsPayload("package_1", 42),
		TelegramPaymentChargeID: "charge-dup",
	}

	first, err := f.uc.SettleStarsPayment(context.Background(), 42, payment)
	require.NoError(t, err)
	assert.Equal(t, int64(10), first.NewBalance)

	// повторная доставка того же successful_payment идёт в no-op
	second, err := f.uc.SettleStarsPayment(context.Background(), 42, payment)
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.Zero(t, second.CreditsAdded)

	balance, _ := f.ledger.GetBalance(context.Background(), 42)
	assert.Equal(t, int64(10), balance)
	require.Len(t, f.notifier.events, 1)
}

func TestSettleStarsPayment_PayerMismatch(t *testing.T) {
	f := newBillingFixture(t)

	payment := &domain.SuccessfulPayment{
		Currency:                "XTR",
		TotalAmount:             79,
		InvoicePayload:          StarsPayload("package_1", 777),
		TelegramPaymentChargeID: "charge-1",
	}

	_, err := f.uc.SettleStarsPayment(context.Background(), 42, payment)
	require.ErrorIs(t, err, domain.ErrPayerMismatch)

	// ни одному из пользователей ничего не начислено
	for _, id := range []int64{42, 777} {
		balance, _ := f.ledger.GetBalance(context.Background(), id)
		assert.Zero(t, balance)
	}
}

func TestSettleStarsPayment_AmountMismatch(t *testing.T) {
	f := newBillingFixture(t)

	payment := &domain.SuccessfulPayment{
		Currency:                "XTR",
		TotalAmount:             1,
		InvoicePayload:          StarsPayload("package_1", 42),
		TelegramPaymentChargeID: "charge-1",
	}

	_, err := f.uc.SettleStarsPayment(context.Background(), 42, payment)
	require.ErrorIs(t, err, domain.ErrAmountMismatch)

	balance, _ := f.ledger.GetBalance(context.Background(), 42)
	assert.Zero(t, balance)
}
