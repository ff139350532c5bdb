package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
	"github.com/admin/tg-bots/veo-bot/internal/ports/service"
	"github.com/admin/tg-bots/veo-bot/internal/ports/telegram"
)

// DirectDispatcher отправляет уведомления в Telegram напрямую, минуя очередь.
// Используется когда Kafka не сконфигурирована (локальный запуск)
type DirectDispatcher struct {
	tg  telegram.IClient
	log *slog.Logger
}

func NewDirectDispatcher(tg telegram.IClient, log *slog.Logger) *DirectDispatcher {
	return &DirectDispatcher{
		tg:  tg,
		log: log,
	}
}

func (d *DirectDispatcher) Notify(ctx context.Context, event domain.NotificationEvent) error {
	rendered, err := Render(event)
	if err != nil {
		return fmt.Errorf("failed to render notification: %w", err)
	}

	// В личных сообщениях chat_id совпадает с telegram_id пользователя
	if rendered.VideoURL != "" {
		if err := d.tg.SendVideo(ctx, event.UserID, rendered.VideoURL, rendered.Text); err != nil {
			return fmt.Errorf("failed to send video notification: %w", err)
		}
		return nil
	}

	if err := d.tg.SendMessage(ctx, event.UserID, rendered.Text); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}

	d.log.Debug("notification sent directly",
		"kind", event.Kind,
		"user_id", event.UserID,
	)
	return nil
}

var _ service.INotifier = (*DirectDispatcher)(nil)
