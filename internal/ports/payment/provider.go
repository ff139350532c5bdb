package payment

import (
	"context"

	"github.com/google/uuid"
)

// ICardPaymentProvider интерфейс карточного платёжного провайдера (YooKassa).
// Use case зависит только от этого интерфейса, не зная деталей реализации
type ICardPaymentProvider interface {
	// CreatePayment создаёт платёж у провайдера и возвращает ссылку на оплату
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResult, error)

	// GetPayment запрашивает актуальный статус платежа у провайдера
	GetPayment(ctx context.Context, providerID string) (*PaymentInfo, error)
}

// CreatePaymentRequest запрос на создание платежа
type CreatePaymentRequest struct {
	PaymentID   uuid.UUID // наш внутренний id, уходит в metadata и Idempotence-Key
	UserID      int64
	PackageID   string
	Amount      string // "749.00"
	Currency    string // "RUB"
	Description string
	ReturnURL   string
}

// CreatePaymentResult результат создания платежа
type CreatePaymentResult struct {
	ProviderID      string // id платежа в системе провайдера
	ConfirmationURL string // ссылка, по которой пользователь оплачивает
	Status          string
}

// PaymentInfo статус платежа в системе провайдера
type PaymentInfo struct {
	ProviderID string
	Status     string // pending / waiting_for_capture / succeeded / canceled
	Paid       bool
	Amount     string
	Currency   string
	Metadata   map[string]string
}
