package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"log/slog"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
	kafkaPorts "github.com/admin/tg-bots/veo-bot/internal/ports/kafka"
	"github.com/admin/tg-bots/veo-bot/internal/ports/telegram"
	"github.com/admin/tg-bots/veo-bot/internal/services/notify"
)

// NotificationHandler доставляет уведомления из очереди в Telegram.
// Ключ сообщения telegram_id: уведомления одного пользователя
// обрабатываются по порядку в рамках партиции
type NotificationHandler struct {
	Tg  telegram.IClient
	Log *slog.Logger
}

func NewNotificationHandler(tg telegram.IClient, log *slog.Logger) kafkaPorts.MessageHandler {
	return &NotificationHandler{
		Tg:  tg,
		Log: log,
	}
}

func (h *NotificationHandler) HandleMessage(ctx context.Context, key string, value []byte) error {
	var event domain.NotificationEvent
	if err := json.Unmarshal(value, &event); err != nil {
		// Кривое сообщение ретраить бессмысленно
		return domain.WrapBusinessError(fmt.Errorf("failed to unmarshal notification event: %w", err))
	}

	if event.UserID == 0 {
		return domain.WrapBusinessError(fmt.Errorf("notification event without user_id, kind=%s", event.Kind))
	}

	rendered, err := notify.Render(event)
	if err != nil {
		return domain.WrapBusinessError(fmt.Errorf("failed to render notification: %w", err))
	}

	h.Log.Debug("delivering notification",
		"kind", event.Kind,
		"user_id", event.UserID,
	)

	// В личных сообщениях chat_id совпадает с telegram_id
	if rendered.VideoURL != "" {
		if err := h.Tg.SendVideo(ctx, event.UserID, rendered.VideoURL, rendered.Text); err != nil {
			return fmt.Errorf("failed to send video notification: %w", err)
		}
		return nil
	}

	if err := h.Tg.SendMessage(ctx, event.UserID, rendered.Text); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	return nil
}
