package billing

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
	paymentPorts "github.com/admin/tg-bots/veo-bot/internal/ports/payment"
)

func TestCreateCardPayment(t *testing.T) {
	f := newBillingFixture(t)

	url, err := f.uc.CreateCardPayment(context.Background(), testUser(42), "package_10")
	require.NoError(t, err)
	assert.Equal(t, "https://yookassa.ru/pay/yk-1", url)

	// intent записан до похода к провайдеру и связан с его id
	require.Len(t, f.provider.created, 1)
	req := f.provider.created[0]
	assert.Equal(t, "749.00", req.Amount)
	assert.Equal(t, "RUB", req.Currency)

	intent, err := f.payments.GetByID(context.Background(), req.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, intent.Status)
	require.NotNil(t, intent.ProviderID)
	assert.Equal(t, "yk-1", *intent.ProviderID)
}

func TestCreateCardPayment_ProviderFailureMarksIntentFailed(t *testing.T) {
	f := newBillingFixture(t)
	f.provider.createErr = fmt.Errorf("yookassa: 503")

	_, err := f.uc.CreateCardPayment(context.Background(), testUser(42), "package_10")
	require.Error(t, err)

	require.Len(t, f.provider.created, 1)
	intent, err := f.payments.GetByID(context.Background(), f.provider.created[0].PaymentID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusFailed, intent.Status)
	require.NotNil(t, intent.ErrorMessage)
}

func TestCreateCardPayment_NoProvider(t *testing.T) {
	f := newBillingFixture(t)
	f.uc = New(f.ledger, f.payments, nil, f.tg, f.notifier, testCatalog(t), testLogger())

	_, err := f.uc.CreateCardPayment(context.Background(), testUser(42), "package_10")
	require.Error(t, err)
}

// createPendingIntent готовит intent со связанным provider id, как после CreateCardPayment
func createPendingIntent(t *testing.T, f *billingFixture, userID int64, packageID string) uuid.UUID {
	t.Helper()
	url, err := f.uc.CreateCardPayment(context.Background(), testUser(userID), packageID)
	require.NoError(t, err)
	require.NotEmpty(t, url)
	return f.provider.created[len(f.provider.created)-1].PaymentID
}

func TestSettleCardPayment_Succeeded(t *testing.T) {
	f := newBillingFixture(t)
	intentID := createPendingIntent(t, f, 42, "package_10")

	f.provider.info = &paymentPorts.PaymentInfo{
		Status:   "succeeded",
		Paid:     true,
		Amount:   "749.00",
		Currency: "RUB",
	}

	result, err := f.uc.SettleCardPayment(context.Background(), intentID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, int64(100), result.CreditsAdded)

	intent, err := f.payments.GetByID(context.Background(), intentID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusSucceeded, intent.Status)

	balance, _ := f.ledger.GetBalance(context.Background(), 42)
	assert.Equal(t, int64(100), balance)
}

func TestSettleCardPayment_SecondCallIsNoop(t *testing.T) {
	f := newBillingFixture(t)
	intentID := createPendingIntent(t, f, 42, "package_10")

	f.provider.info = &paymentPorts.PaymentInfo{
		Status:   "succeeded",
		Paid:     true,
		Amount:   "749.00",
		Currency: "RUB",
	}

	// webhook и сверщик могут прийти с одним и тем же платежом
	first, err := f.uc.SettleCardPayment(context.Background(), intentID)
	require.NoError(t, err)
	assert.False(t, first.Duplicate)

	second, err := f.uc.SettleCardPayment(context.Background(), intentID)
	require.NoError(t, err)
	assert.True(t, second.Duplicate)

	balance, _ := f.ledger.GetBalance(context.Background(), 42)
	assert.Equal(t, int64(100), balance)
	require.Len(t, f.notifier.events, 1)
}

func TestSettleCardPayment_PendingKeepsWaiting(t *testing.T) {
	f := newBillingFixture(t)
	intentID := createPendingIntent(t, f, 42, "package_10")

	f.provider.info = &paymentPorts.PaymentInfo{
		Status:   "pending",
		Amount:   "749.00",
		Currency: "RUB",
	}

	result, err := f.uc.SettleCardPayment(context.Background(), intentID)
	require.NoError(t, err)
	assert.Nil(t, result)

	intent, err := f.payments.GetByID(context.Background(), intentID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, intent.Status)

	balance, _ := f.ledger.GetBalance(context.Background(), 42)
	assert.Zero(t, balance)
}

func TestSettleCardPayment_Canceled(t *testing.T) {
	f := newBillingFixture(t)
	intentID := createPendingIntent(t, f, 42, "package_10")

	f.provider.info = &paymentPorts.PaymentInfo{
		Status:   "canceled",
		Amount:   "749.00",
		Currency: "RUB",
	}

	result, err := f.uc.SettleCardPayment(context.Background(), intentID)
	require.NoError(t, err)
	assert.Nil(t, result)

	intent, err := f.payments.GetByID(context.Background(), intentID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCanceled, intent.Status)

	balance, _ := f.ledger.GetBalance(context.Background(), 42)
	assert.Zero(t, balance)
}

func TestSettleCardPayment_AmountFormatTolerance(t *testing.T) {
	f := newBillingFixture(t)
	intentID := createPendingIntent(t, f, 42, "package_10")

	// провайдер отдаёт сумму без незначащего нуля: это тот же платёж
	f.provider.info = &paymentPorts.PaymentInfo{
		Status:   "succeeded",
		Paid:     true,
		Amount:   "749.0",
		Currency: "RUB",
	}

	result, err := f.uc.SettleCardPayment(context.Background(), intentID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, int64(100), result.CreditsAdded)
}

func TestSettleCardPayment_AmountMismatch(t *testing.T) {
	f := newBillingFixture(t)
	intentID := createPendingIntent(t, f, 42, "package_10")

	f.provider.info = &paymentPorts.PaymentInfo{
		Status:   "succeeded",
		Paid:     true,
		Amount:   "1.00",
		Currency: "RUB",
	}

	_, err := f.uc.SettleCardPayment(context.Background(), intentID)
	require.ErrorIs(t, err, domain.ErrAmountMismatch)

	balance, _ := f.ledger.GetBalance(context.Background(), 42)
	assert.Zero(t, balance)
}

func TestSyncCardPayment_SkipsNonPending(t *testing.T) {
	f := newBillingFixture(t)
	intentID := createPendingIntent(t, f, 42, "package_10")
	require.NoError(t, f.payments.UpdateStatus(context.Background(), intentID, domain.PaymentStatusCanceled, nil))

	payment, err := f.payments.GetByID(context.Background(), intentID)
	require.NoError(t, err)

	// провайдер не настроен отвечать: поход сверщика к нему уронил бы тест
	f.provider.getErr = fmt.Errorf("must not be called")
	require.NoError(t, f.uc.SyncCardPayment(context.Background(), payment))
}
