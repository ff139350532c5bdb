package adminLogRepo

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
	"github.com/admin/tg-bots/veo-bot/internal/ports/persistence"
	ports "github.com/admin/tg-bots/veo-bot/internal/ports/repository"
)

type adminLogColumns struct {
	TableName    string
	ID           string
	AdminID      string
	Action       string
	TargetUserID string
	Details      string
	CreatedAt    string
}

type Repository struct {
	db      persistence.Persistence
	Log     *slog.Logger
	columns adminLogColumns
}

// New создаёт репозиторий журнала административных действий
func New(db persistence.Persistence, log *slog.Logger) ports.IAdminLogRepo {
	return &Repository{
		db:  db,
		Log: log,
		columns: adminLogColumns{
			TableName:    "admin_logs",
			ID:           "id",
			AdminID:      "admin_id",
			Action:       "action",
			TargetUserID: "target_user_id",
			Details:      "details",
			CreatedAt:    "created_at",
		},
	}
}

// Create пишет запись в журнал
func (r *Repository) Create(ctx context.Context, entry *domain.AdminLog) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		RETURNING %s, %s`,
		r.columns.TableName,
		r.columns.AdminID,
		r.columns.Action,
		r.columns.TargetUserID,
		r.columns.Details,
		r.columns.ID,
		r.columns.CreatedAt,
	)

	err := r.db.QueryRow(ctx, query,
		entry.AdminID,
		string(entry.Action),
		entry.TargetUserID,
		entry.Details,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		r.Log.Error("failed to create admin log entry",
			"error", err,
			"admin_id", entry.AdminID,
			"action", entry.Action,
		)
		return fmt.Errorf("failed to create admin log entry: %w", err)
	}

	return nil
}

// ListRecent возвращает последние записи журнала
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]domain.AdminLog, error) {
	var entries []domain.AdminLog

	query := fmt.Sprintf(`SELECT %s, %s, %s, %s, %s, %s FROM %s ORDER BY %s DESC LIMIT $1`,
		r.columns.ID,
		r.columns.AdminID,
		r.columns.Action,
		r.columns.TargetUserID,
		r.columns.Details,
		r.columns.CreatedAt,
		r.columns.TableName,
		r.columns.CreatedAt,
	)

	err := r.db.Select(ctx, &entries, query, limit)
	if err != nil {
		r.Log.Error("failed to list admin log entries", "error", err)
		return nil, fmt.Errorf("failed to list admin log entries: %w", err)
	}

	return entries, nil
}
