package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus статус платёжного намерения карточного рейла
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"   // создан, ожидает оплаты
	PaymentStatusSucceeded PaymentStatus = "succeeded" // оплачен, кредиты начислены
	PaymentStatusCanceled  PaymentStatus = "canceled"  // отменён провайдером
	PaymentStatusFailed    PaymentStatus = "failed"    // не удалось создать платёж у провайдера
)

// Payment платёжное намерение в ЮКассе, создаётся до ухода пользователя на оплату
type Payment struct {
	ID           uuid.UUID     `json:"id" db:"id"`
	UserID       int64         `json:"user_id" db:"user_id"`
	PackageID    string        `json:"package_id" db:"package_id"`
	Amount       string        `json:"amount" db:"amount"`     // десятичная строка провайдера, "749.00"
	Currency     string        `json:"currency" db:"currency"` // "RUB"
	Method       PaymentMethod `json:"method" db:"method"`
	ProviderID   *string       `json:"provider_id,omitempty" db:"provider_id"` // id платежа в ЮКассе
	Status       PaymentStatus `json:"status" db:"status"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	SucceededAt  *time.Time    `json:"succeeded_at,omitempty" db:"succeeded_at"`
	ErrorMessage *string       `json:"error_message,omitempty" db:"error_message"`
}

// Settlement нормализованное событие «платёж прошёл», общий вход для обоих рейлов
// (webhook ЮКассы, поллер-сверка, successful_payment от Stars). Не персистится:
// долговечность «обработано или нет» живёт в уникальности transactions.payment_id
type Settlement struct {
	PaymentID string        // внешний id платежа (ключ идемпотентности)
	UserID    int64         // заявленный пользователь (для Stars сверен с реальным плательщиком)
	PackageID string        // заявленный пакет
	Amount    string        // заявленная сумма, десятичная строка
	Currency  string        // "RUB" или "XTR"
	Method    PaymentMethod
}
