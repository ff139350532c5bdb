package notify

import (
	"fmt"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
)

// RenderedNotification готовое к отправке уведомление
type RenderedNotification struct {
	Text     string
	VideoURL string // если не пуст, отправляется видео с Text в подписи
}

// Render собирает человекочитаемый текст уведомления из события.
// Используется и kafka-консьюмером, и прямой отправкой без очереди
func Render(event domain.NotificationEvent) (RenderedNotification, error) {
	switch event.Kind {
	case domain.NotificationPaymentSucceeded:
		text := fmt.Sprintf(
			"✅ Оплата прошла успешно!\n\n💎 Начислено кредитов: %d\n💰 Ваш баланс: %d",
			event.CreditsAdded,
			event.NewBalance,
		)
		return RenderedNotification{Text: text}, nil

	case domain.NotificationGenerationComplete:
		return RenderedNotification{
			Text:     "🎬 Ваше видео готово!",
			VideoURL: event.VideoURL,
		}, nil

	case domain.NotificationGenerationFailed:
		reason := event.Reason
		if reason == "" {
			reason = "Техническая ошибка сервиса. Попробуйте позже."
		}
		text := fmt.Sprintf(
			"❌ Не удалось создать видео.\n\n%s\n\n💎 Кредиты возвращены на баланс.",
			reason,
		)
		return RenderedNotification{Text: text}, nil

	default:
		return RenderedNotification{}, fmt.Errorf("unknown notification kind: %s", event.Kind)
	}
}
