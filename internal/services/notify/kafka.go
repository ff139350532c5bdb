package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
	"github.com/admin/tg-bots/veo-bot/internal/ports/kafka"
	"github.com/admin/tg-bots/veo-bot/internal/ports/service"
)

// KafkaDispatcher публикует уведомления в Kafka с ключом telegram_id
// пользователя: все уведомления одного пользователя попадают в одну партицию
// и доставляются по порядку
type KafkaDispatcher struct {
	producer kafka.IKafkaProducer
	log      *slog.Logger
}

func NewKafkaDispatcher(producer kafka.IKafkaProducer, log *slog.Logger) *KafkaDispatcher {
	return &KafkaDispatcher{
		producer: producer,
		log:      log,
	}
}

// Notify сериализует событие и отправляет в очередь
func (d *KafkaDispatcher) Notify(ctx context.Context, event domain.NotificationEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal notification event: %w", err)
	}

	key := strconv.FormatInt(event.UserID, 10)
	if err := d.producer.Send(ctx, key, value); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	d.log.Debug("notification published",
		"kind", event.Kind,
		"user_id", event.UserID,
	)
	return nil
}

var _ service.INotifier = (*KafkaDispatcher)(nil)
