package yookassa

// Статусы платежа в ЮКассе
const (
	StatusPending           = "pending"
	StatusWaitingForCapture = "waiting_for_capture"
	StatusSucceeded         = "succeeded"
	StatusCanceled          = "canceled"
)

// Amount сумма платежа в формате провайдера
type Amount struct {
	Value    string `json:"value"`    // "749.00"
	Currency string `json:"currency"` // "RUB"
}

// Confirmation способ подтверждения платежа
type Confirmation struct {
	Type            string `json:"type"` // "redirect"
	ReturnURL       string `json:"return_url,omitempty"`
	ConfirmationURL string `json:"confirmation_url,omitempty"` // в ответе
}

// CreatePaymentRequest запрос POST /payments
type CreatePaymentRequest struct {
	Amount       Amount            `json:"amount"`
	Capture      bool              `json:"capture"`
	Confirmation Confirmation      `json:"confirmation"`
	Description  string            `json:"description,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// PaymentObject объект платежа в ответах API
type PaymentObject struct {
	ID           string            `json:"id"`
	Status       string            `json:"status"`
	Paid         bool              `json:"paid"`
	Amount       Amount            `json:"amount"`
	Confirmation *Confirmation     `json:"confirmation,omitempty"`
	Description  string            `json:"description,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    string            `json:"created_at,omitempty"`
}

// ErrorResponse ошибка API ЮКассы
type ErrorResponse struct {
	Type        string `json:"type"`
	ID          string `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// WebhookNotification тело вебхука о смене статуса платежа.
// Тело НЕ подписано: ЮКасса аутентифицирует вебхуки только IP-адресом источника,
// поэтому содержимому не верим: статус перечитывается через GET /payments/{id}
type WebhookNotification struct {
	Type   string        `json:"type"`  // "notification"
	Event  string        `json:"event"` // "payment.succeeded", "payment.canceled", ...
	Object PaymentObject `json:"object"`
}
