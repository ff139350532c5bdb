package domain

import "time"

// TransactionType тип движения кредитов
type TransactionType string

const (
	TransactionTypePurchase   TransactionType = "credit_purchase" // покупка пакета
	TransactionTypeSpend      TransactionType = "credit_spend"    // списание за генерацию
	TransactionTypeRefund     TransactionType = "credit_refund"   // компенсация за неудавшуюся генерацию
	TransactionTypeAdminGrant TransactionType = "admin_grant"     // ручное начисление
)

// PaymentMethod способ оплаты
type PaymentMethod string

const (
	PaymentMethodTelegramStars PaymentMethod = "telegram_stars"
	PaymentMethodYookassa      PaymentMethod = "yookassa"
)

// Transaction запись в append-only журнале кредитов, корректировки только
// новыми записями с обратным знаком. PaymentID внешний идентификатор платежа,
// уникальность гарантирует constraint в БД
type Transaction struct {
	ID            int64           `json:"id" db:"id"`
	UserID        int64           `json:"user_id" db:"user_id"`
	Type          TransactionType `json:"type" db:"type"`
	Amount        int64           `json:"amount" db:"amount"` // положительное начисление, отрицательное списание
	Description   string          `json:"description" db:"description"`
	PaymentMethod *PaymentMethod  `json:"payment_method,omitempty" db:"payment_method"`
	PaymentID     *string         `json:"payment_id,omitempty" db:"payment_id"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}
