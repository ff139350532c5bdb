package yookassaController

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
	"github.com/admin/tg-bots/veo-bot/internal/ports/usecase"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type stubPaymentRepo struct {
	byProvider map[string]*domain.Payment
}

func (s *stubPaymentRepo) Create(_ context.Context, _ *domain.Payment) error { return nil }

func (s *stubPaymentRepo) GetByID(_ context.Context, _ uuid.UUID) (*domain.Payment, error) {
	return nil, fmt.Errorf("payment not found: %w", sql.ErrNoRows)
}

func (s *stubPaymentRepo) GetByProviderID(_ context.Context, providerID string) (*domain.Payment, error) {
	p, ok := s.byProvider[providerID]
	if !ok {
		return nil, fmt.Errorf("payment not found: %w", sql.ErrNoRows)
	}
	return p, nil
}

func (s *stubPaymentRepo) SetProviderID(_ context.Context, _ uuid.UUID, _ string) error { return nil }

func (s *stubPaymentRepo) UpdateStatus(_ context.Context, _ uuid.UUID, _ domain.PaymentStatus, _ *string) error {
	return nil
}

func (s *stubPaymentRepo) ListPendingSince(_ context.Context, _ time.Time) ([]domain.Payment, error) {
	return nil, nil
}

// ---

type stubBilling struct {
	settled   []uuid.UUID
	settleErr error
}

func (s *stubBilling) Packages() []domain.CreditPackage { return nil }

func (s *stubBilling) GetPackage(_ string) (*domain.CreditPackage, error) {
	return nil, domain.ErrUnknownPackage
}

func (s *stubBilling) CreateStarsInvoice(_ context.Context, _ *domain.User, _ int64, _ string) error {
	return nil
}

func (s *stubBilling) ValidatePreCheckout(_ context.Context, _ *domain.PreCheckoutQuery) error {
	return nil
}

func (s *stubBilling) SettleStarsPayment(_ context.Context, _ int64, _ *domain.SuccessfulPayment) (*usecase.SettleResult, error) {
	return nil, nil
}

func (s *stubBilling) CreateCardPayment(_ context.Context, _ *domain.User, _ string) (string, error) {
	return "", nil
}

func (s *stubBilling) SettleCardPayment(_ context.Context, paymentID uuid.UUID) (*usecase.SettleResult, error) {
	if s.settleErr != nil {
		return nil, s.settleErr
	}
	s.settled = append(s.settled, paymentID)
	return &usecase.SettleResult{CreditsAdded: 100, NewBalance: 100}, nil
}

func (s *stubBilling) SyncCardPayment(_ context.Context, _ *domain.Payment) error { return nil }

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newTestRouter(t *testing.T, payments *stubPaymentRepo, billing *stubBilling) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	New(payments, billing, log).RegisterRoutes(router)
	return router
}

func postWebhook(router *gin.Engine, sourceIP, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook/yookassa", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", sourceIP)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func webhookBody(providerID string) string {
	return fmt.Sprintf(`{"type": "notification", "event": "payment.succeeded", "object": {"id": "%s", "status": "succeeded"}}`, providerID)
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestWebhook_TrustedSourceSettles(t *testing.T) {
	intentID := uuid.New()
	payments := &stubPaymentRepo{byProvider: map[string]*domain.Payment{
		"yk-1": {ID: intentID, UserID: 42, Status: domain.PaymentStatusPending},
	}}
	billing := &stubBilling{}
	router := newTestRouter(t, payments, billing)

	// официальный диапазон ЮКассы 185.71.76.0/27
	w := postWebhook(router, "185.71.76.10", webhookBody("yk-1"))

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, billing.settled, 1)
	assert.Equal(t, intentID, billing.settled[0])
}

func TestWebhook_UntrustedSourceRejected(t *testing.T) {
	billing := &stubBilling{}
	router := newTestRouter(t, &stubPaymentRepo{}, billing)

	for _, ip := range []string{"8.8.8.8", "185.71.76.200", "not-an-ip"} {
		w := postWebhook(router, ip, webhookBody("yk-1"))
		assert.Equal(t, http.StatusForbidden, w.Code, "ip=%s", ip)
	}
	assert.Empty(t, billing.settled)
}

func TestWebhook_ForwardedChainUsesFirstHop(t *testing.T) {
	billing := &stubBilling{}
	router := newTestRouter(t, &stubPaymentRepo{byProvider: map[string]*domain.Payment{
		"yk-1": {ID: uuid.New(), Status: domain.PaymentStatusPending},
	}}, billing)

	w := postWebhook(router, "185.71.77.5, 10.0.0.1", webhookBody("yk-1"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, billing.settled, 1)
}

func TestWebhook_InvalidJSON(t *testing.T) {
	router := newTestRouter(t, &stubPaymentRepo{}, &stubBilling{})

	w := postWebhook(router, "185.71.76.10", `{"event": `)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhook_UnknownPaymentStill200(t *testing.T) {
	billing := &stubBilling{}
	router := newTestRouter(t, &stubPaymentRepo{}, billing)

	// 200 гасит ретраи провайдера даже по незнакомому платежу
	w := postWebhook(router, "185.71.76.10", webhookBody("yk-unknown"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, billing.settled)
}

func TestWebhook_SettleFailureStill200(t *testing.T) {
	payments := &stubPaymentRepo{byProvider: map[string]*domain.Payment{
		"yk-1": {ID: uuid.New(), Status: domain.PaymentStatusPending},
	}}
	billing := &stubBilling{settleErr: fmt.Errorf("provider unreachable")}
	router := newTestRouter(t, payments, billing)

	// бизнес-ошибку дочитает поллер-сверка
	w := postWebhook(router, "185.71.76.10", webhookBody("yk-1"))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebhook_MissingPaymentIDIgnored(t *testing.T) {
	billing := &stubBilling{}
	router := newTestRouter(t, &stubPaymentRepo{}, billing)

	w := postWebhook(router, "185.71.76.10", `{"type": "notification", "event": "payment.succeeded", "object": {}}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, billing.settled)
}
