package billing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
	paymentPorts "github.com/admin/tg-bots/veo-bot/internal/ports/payment"
)

// ---------------------------------------------------------------------------
// In-memory мок журнала кредитов: повторяет контракт ApplyDelta,
// включая идемпотентность по payment_id и запрет ухода в минус
// ---------------------------------------------------------------------------

type mockLedger struct {
	balances map[int64]int64
	settled  map[string]bool
	entries  []*domain.Transaction
	applyErr error
}

func newMockLedger() *mockLedger {
	return &mockLedger{
		balances: make(map[int64]int64),
		settled:  make(map[string]bool),
	}
}

func (m *mockLedger) ApplyDelta(_ context.Context, entry *domain.Transaction) (int64, error) {
	if m.applyErr != nil {
		return 0, m.applyErr
	}
	if entry.PaymentID != nil {
		if m.settled[*entry.PaymentID] {
			return 0, domain.ErrDuplicatePayment
		}
		m.settled[*entry.PaymentID] = true
	}
	next := m.balances[entry.UserID] + entry.Amount
	if next < 0 {
		return 0, domain.ErrInsufficientCredits
	}
	m.balances[entry.UserID] = next
	m.entries = append(m.entries, entry)
	return next, nil
}

func (m *mockLedger) GetBalance(_ context.Context, telegramID int64) (int64, error) {
	return m.balances[telegramID], nil
}

func (m *mockLedger) TotalCredits(_ context.Context) (int64, error) {
	var total int64
	for _, b := range m.balances {
		total += b
	}
	return total, nil
}

func (m *mockLedger) PaymentExists(_ context.Context, paymentID string) (bool, error) {
	return m.settled[paymentID], nil
}

func (m *mockLedger) ListByUser(_ context.Context, _ int64, _ int) ([]domain.Transaction, error) {
	return nil, nil
}

// ---

type mockPaymentRepo struct {
	byID       map[uuid.UUID]*domain.Payment
	byProvider map[string]uuid.UUID
	createErr  error
}

func newMockPaymentRepo() *mockPaymentRepo {
	return &mockPaymentRepo{
		byID:       make(map[uuid.UUID]*domain.Payment),
		byProvider: make(map[string]uuid.UUID),
	}
}

func (m *mockPaymentRepo) Create(_ context.Context, payment *domain.Payment) error {
	if m.createErr != nil {
		return m.createErr
	}
	cp := *payment
	cp.CreatedAt = time.Now()
	m.byID[payment.ID] = &cp
	return nil
}

func (m *mockPaymentRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Payment, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("payment %s not found", id)
	}
	cp := *p
	return &cp, nil
}

func (m *mockPaymentRepo) GetByProviderID(_ context.Context, providerID string) (*domain.Payment, error) {
	id, ok := m.byProvider[providerID]
	if !ok {
		return nil, fmt.Errorf("payment with provider id %s not found", providerID)
	}
	return m.GetByID(context.Background(), id)
}

func (m *mockPaymentRepo) SetProviderID(_ context.Context, id uuid.UUID, providerID string) error {
	p, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("payment %s not found", id)
	}
	p.ProviderID = &providerID
	m.byProvider[providerID] = id
	return nil
}

func (m *mockPaymentRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.PaymentStatus, errorMessage *string) error {
	p, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("payment %s not found", id)
	}
	p.Status = status
	p.ErrorMessage = errorMessage
	return nil
}

func (m *mockPaymentRepo) ListPendingSince(_ context.Context, since time.Time) ([]domain.Payment, error) {
	var out []domain.Payment
	for _, p := range m.byID {
		if p.Status == domain.PaymentStatusPending && p.CreatedAt.After(since) {
			out = append(out, *p)
		}
	}
	return out, nil
}

// ---

type mockProvider struct {
	created    []paymentPorts.CreatePaymentRequest
	createErr  error
	confirmURL string
	providerID string

	info   *paymentPorts.PaymentInfo
	getErr error
}

func (m *mockProvider) CreatePayment(_ context.Context, req paymentPorts.CreatePaymentRequest) (*paymentPorts.CreatePaymentResult, error) {
	m.created = append(m.created, req)
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &paymentPorts.CreatePaymentResult{
		ProviderID:      m.providerID,
		ConfirmationURL: m.confirmURL,
		Status:          "pending",
	}, nil
}

func (m *mockProvider) GetPayment(_ context.Context, providerID string) (*paymentPorts.PaymentInfo, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	info := *m.info
	info.ProviderID = providerID
	return &info, nil
}

// ---

type sentInvoice struct {
	chatID  int64
	payload string
	stars   int64
}

type mockTgClient struct {
	invoices   []sentInvoice
	invoiceErr error
	messages   []string
}

func (m *mockTgClient) SendMessage(_ context.Context, _ int64, text string) error {
	m.messages = append(m.messages, text)
	return nil
}

func (m *mockTgClient) SendMessageWithKeyboard(_ context.Context, _ int64, text string, _ map[string]interface{}) error {
	m.messages = append(m.messages, text)
	return nil
}

func (m *mockTgClient) AnswerCallbackQuery(_ context.Context, _ string, _ string, _ bool) error {
	return nil
}

func (m *mockTgClient) SendInvoice(_ context.Context, chatID int64, _, _, payload string, stars int64) (int64, error) {
	if m.invoiceErr != nil {
		return 0, m.invoiceErr
	}
	m.invoices = append(m.invoices, sentInvoice{chatID: chatID, payload: payload, stars: stars})
	return int64(len(m.invoices)), nil
}

func (m *mockTgClient) AnswerPreCheckoutQuery(_ context.Context, _ string, _ bool, _ *string) error {
	return nil
}

func (m *mockTgClient) SendVideo(_ context.Context, _ int64, _ string, caption string) error {
	m.messages = append(m.messages, caption)
	return nil
}

func (m *mockTgClient) DownloadFile(_ context.Context, _ string) ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}

// ---

type mockNotifier struct {
	events []domain.NotificationEvent
	err    error
}

func (m *mockNotifier) Notify(_ context.Context, event domain.NotificationEvent) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	catalog, err := LoadCatalog("")
	require.NoError(t, err)
	return catalog
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type billingFixture struct {
	uc       *UseCase
	ledger   *mockLedger
	payments *mockPaymentRepo
	provider *mockProvider
	tg       *mockTgClient
	notifier *mockNotifier
}

func newBillingFixture(t *testing.T) *billingFixture {
	t.Helper()
	f := &billingFixture{
		ledger:   newMockLedger(),
		payments: newMockPaymentRepo(),
		provider: &mockProvider{providerID: "yk-1", confirmURL: "https://yookassa.ru/pay/yk-1"},
		tg:       &mockTgClient{},
		notifier: &mockNotifier{},
	}
	f.uc = New(f.ledger, f.payments, f.provider, f.tg, f.notifier, testCatalog(t), testLogger())
	return f
}

func testUser(id int64) *domain.User {
	name := "Тест"
	return &domain.User{
		TelegramID: id,
		FirstName:  &name,
		Status:     domain.UserStatusRegular,
	}
}

// ---------------------------------------------------------------------------
// Tests: общая точка зачисления
// ---------------------------------------------------------------------------

func TestSettle_PublishesNotificationAfterCredit(t *testing.T) {
	f := newBillingFixture(t)

	payment := &domain.SuccessfulPayment{
		Currency:                "XTR",
		TotalAmount:             749,
		InvoicePayload:          StarsPayload("package_10", 42),
		TelegramPaymentChargeID: "charge-1",
	}

	result, err := f.uc.SettleStarsPayment(context.Background(), 42, payment)
	require.NoError(t, err)
	assert.Equal(t, int64(100), result.CreditsAdded)
	assert.Equal(t, int64(100), result.NewBalance)
	assert.False(t, result.Duplicate)

	require.Len(t, f.notifier.events, 1)
	event := f.notifier.events[0]
	assert.Equal(t, domain.NotificationPaymentSucceeded, event.Kind)
	assert.Equal(t, int64(42), event.UserID)
	assert.Equal(t, int64(100), event.CreditsAdded)
	assert.Equal(t, int64(100), event.NewBalance)
}

func TestSettle_NotifierFailureDoesNotFailSettlement(t *testing.T) {
	f := newBillingFixture(t)
	f.notifier.err = fmt.Errorf("kafka is down")

	payment := &domain.SuccessfulPayment{
		Currency:                "XTR",
		TotalAmount:             79,
		InvoicePayload:          StarsPayload("package_1", 42),
		TelegramPaymentChargeID: "charge-1",
	}

	result, err := f.uc.SettleStarsPayment(context.Background(), 42, payment)
	require.NoError(t, err)
	assert.Equal(t, int64(10), result.NewBalance)

	balance, _ := f.ledger.GetBalance(context.Background(), 42)
	assert.Equal(t, int64(10), balance)
}
