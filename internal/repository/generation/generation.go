package generationRepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"log/slog"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
	"github.com/admin/tg-bots/veo-bot/internal/ports/persistence"
	ports "github.com/admin/tg-bots/veo-bot/internal/ports/repository"
)

type generationColumns struct {
	TableName      string
	ID             string
	UserID         string
	TaskID         string
	VeoTaskID      string
	Prompt         string
	GenerationType string
	ImageURL       string
	Model          string
	AspectRatio    string
	Status         string
	VideoURL       string
	ErrorMessage   string
	CreditsSpent   string
	CreatedAt      string
	CompletedAt    string
}

type Repository struct {
	db      persistence.Persistence
	Log     *slog.Logger
	columns generationColumns
}

// New создаёт новый репозиторий задач генерации
func New(db persistence.Persistence, log *slog.Logger) ports.IGenerationRepo {
	return &Repository{
		db:  db,
		Log: log,
		columns: generationColumns{
			TableName:      "video_generations",
			ID:             "id",
			UserID:         "user_id",
			TaskID:         "task_id",
			VeoTaskID:      "veo_task_id",
			Prompt:         "prompt",
			GenerationType: "generation_type",
			ImageURL:       "image_url",
			Model:          "model",
			AspectRatio:    "aspect_ratio",
			Status:         "status",
			VideoURL:       "video_url",
			ErrorMessage:   "error_message",
			CreditsSpent:   "credits_spent",
			CreatedAt:      "created_at",
			CompletedAt:    "completed_at",
		},
	}
}

// allColumns возвращает строку со всеми колонками (15 полей)
func (r *Repository) allColumns() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
		r.columns.ID,
		r.columns.UserID,
		r.columns.TaskID,
		r.columns.VeoTaskID,
		r.columns.Prompt,
		r.columns.GenerationType,
		r.columns.ImageURL,
		r.columns.Model,
		r.columns.AspectRatio,
		r.columns.Status,
		r.columns.VideoURL,
		r.columns.ErrorMessage,
		r.columns.CreditsSpent,
		r.columns.CreatedAt,
		r.columns.CompletedAt,
	)
}

// Create создаёт задачу генерации в статусе pending
func (r *Repository) Create(ctx context.Context, gen *domain.Generation) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING %s, %s`,
		r.columns.TableName,
		r.columns.UserID,
		r.columns.TaskID,
		r.columns.Prompt,
		r.columns.GenerationType,
		r.columns.ImageURL,
		r.columns.Model,
		r.columns.AspectRatio,
		r.columns.Status,
		r.columns.CreditsSpent,
		r.columns.ID,
		r.columns.CreatedAt,
	)

	err := r.db.QueryRow(ctx, query,
		gen.UserID,
		gen.TaskID,
		gen.Prompt,
		string(gen.GenerationType),
		gen.ImageURL,
		gen.Model,
		gen.AspectRatio,
		string(gen.Status),
		gen.CreditsSpent,
	).Scan(&gen.ID, &gen.CreatedAt)
	if err != nil {
		r.Log.Error("failed to create generation",
			"error", err,
			"task_id", gen.TaskID,
			"user_id", gen.UserID,
		)
		return fmt.Errorf("failed to create generation: %w", err)
	}

	r.Log.Debug("generation created", "task_id", gen.TaskID, "user_id", gen.UserID)
	return nil
}

// GetByTaskID получает задачу по внутреннему task_id
func (r *Repository) GetByTaskID(ctx context.Context, taskID string) (*domain.Generation, error) {
	var gen domain.Generation

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.TaskID,
	)

	err := r.db.Get(ctx, &gen, query, taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrGenerationNotFound
		}
		r.Log.Error("failed to get generation",
			"error", err,
			"task_id", taskID,
		)
		return nil, fmt.Errorf("failed to get generation: %w", err)
	}

	return &gen, nil
}

// SetProcessing переводит задачу из pending в processing и сохраняет id провайдера
func (r *Repository) SetProcessing(ctx context.Context, taskID string, veoTaskID string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = $2 WHERE %s = $3 AND %s = $4`,
		r.columns.TableName,
		r.columns.Status,
		r.columns.VeoTaskID,
		r.columns.TaskID,
		r.columns.Status,
	)

	rows, err := r.db.ExecWithResult(ctx, query,
		string(domain.GenerationStatusProcessing),
		veoTaskID,
		taskID,
		string(domain.GenerationStatusPending),
	)
	if err != nil {
		r.Log.Error("failed to set generation processing",
			"error", err,
			"task_id", taskID,
		)
		return fmt.Errorf("failed to set generation processing: %w", err)
	}
	if rows == 0 {
		return domain.ErrGenerationNotFound
	}

	return nil
}

// MarkCompleted переводит задачу в completed. Возвращает true только если
// переход состоялся именно сейчас: уже терминальная запись не трогается
func (r *Repository) MarkCompleted(ctx context.Context, taskID string, videoURL string, completedAt time.Time) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $1, %s = $2, %s = $3
		WHERE %s = $4 AND %s NOT IN ($5, $6)`,
		r.columns.TableName,
		r.columns.Status,
		r.columns.VideoURL,
		r.columns.CompletedAt,
		r.columns.TaskID,
		r.columns.Status,
	)

	rows, err := r.db.ExecWithResult(ctx, query,
		string(domain.GenerationStatusCompleted),
		videoURL,
		completedAt,
		taskID,
		string(domain.GenerationStatusCompleted),
		string(domain.GenerationStatusFailed),
	)
	if err != nil {
		r.Log.Error("failed to mark generation completed",
			"error", err,
			"task_id", taskID,
		)
		return false, fmt.Errorf("failed to mark generation completed: %w", err)
	}

	return rows > 0, nil
}

// MarkFailed переводит задачу в failed. Семантика как у MarkCompleted
func (r *Repository) MarkFailed(ctx context.Context, taskID string, errorMessage string, completedAt time.Time) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $1, %s = $2, %s = $3
		WHERE %s = $4 AND %s NOT IN ($5, $6)`,
		r.columns.TableName,
		r.columns.Status,
		r.columns.ErrorMessage,
		r.columns.CompletedAt,
		r.columns.TaskID,
		r.columns.Status,
	)

	rows, err := r.db.ExecWithResult(ctx, query,
		string(domain.GenerationStatusFailed),
		errorMessage,
		completedAt,
		taskID,
		string(domain.GenerationStatusCompleted),
		string(domain.GenerationStatusFailed),
	)
	if err != nil {
		r.Log.Error("failed to mark generation failed",
			"error", err,
			"task_id", taskID,
		)
		return false, fmt.Errorf("failed to mark generation failed: %w", err)
	}

	return rows > 0, nil
}

// ListStuckProcessing возвращает задачи, зависшие в processing дольше порога.
// Используется recovery-свипом после рестарта
func (r *Repository) ListStuckProcessing(ctx context.Context, olderThan time.Time) ([]domain.Generation, error) {
	var gens []domain.Generation

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s = $1 AND %s IS NOT NULL AND %s < $2
		ORDER BY %s`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.Status,
		r.columns.VeoTaskID,
		r.columns.CreatedAt,
		r.columns.CreatedAt,
	)

	err := r.db.Select(ctx, &gens, query, string(domain.GenerationStatusProcessing), olderThan)
	if err != nil {
		r.Log.Error("failed to list stuck generations", "error", err)
		return nil, fmt.Errorf("failed to list stuck generations: %w", err)
	}

	return gens, nil
}

// Count возвращает общее количество задач генерации
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64

	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.columns.TableName)

	if err := r.db.Get(ctx, &count, query); err != nil {
		r.Log.Error("failed to count generations", "error", err)
		return 0, fmt.Errorf("failed to count generations: %w", err)
	}

	return count, nil
}

// CountByUser возвращает количество задач пользователя
func (r *Repository) CountByUser(ctx context.Context, telegramID int64) (int64, error) {
	var count int64

	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`,
		r.columns.TableName,
		r.columns.UserID,
	)

	if err := r.db.Get(ctx, &count, query, telegramID); err != nil {
		r.Log.Error("failed to count generations", "error", err, "user_id", telegramID)
		return 0, fmt.Errorf("failed to count generations: %w", err)
	}

	return count, nil
}
