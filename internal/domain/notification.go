package domain

import "time"

// NotificationKind тип исходящего уведомления пользователю
type NotificationKind string

const (
	NotificationPaymentSucceeded   NotificationKind = "payment_succeeded"
	NotificationGenerationComplete NotificationKind = "generation_complete"
	NotificationGenerationFailed   NotificationKind = "generation_failed"
)

// NotificationEvent событие для диспетчера уведомлений. Публикуется в очередь
// ПОСЛЕ коммита финансовой мутации: сбой доставки никогда не откатывает
// и не дублирует движение кредитов
type NotificationEvent struct {
	Kind      NotificationKind `json:"kind"`
	UserID    int64            `json:"user_id"`
	CreatedAt time.Time        `json:"created_at"`

	// payment_succeeded
	CreditsAdded int64 `json:"credits_added,omitempty"`
	NewBalance   int64 `json:"new_balance,omitempty"`

	// generation_*
	TaskID   string `json:"task_id,omitempty"`
	VideoURL string `json:"video_url,omitempty"`
	Reason   string `json:"reason,omitempty"` // человекочитаемая причина ошибки
}
