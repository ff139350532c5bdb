package repository

import (
	"context"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
)

// IAdminLogRepo интерфейс журнала административных действий
type IAdminLogRepo interface {
	Create(ctx context.Context, entry *domain.AdminLog) error
	ListRecent(ctx context.Context, limit int) ([]domain.AdminLog, error)
}
