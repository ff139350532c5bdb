package service

import (
	"context"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
)

// INotifier интерфейс диспетчера уведомлений. Вызывается после коммита
// финансовой мутации; сбой публикации логируется и не влияет на результат
type INotifier interface {
	Notify(ctx context.Context, event domain.NotificationEvent) error
}
