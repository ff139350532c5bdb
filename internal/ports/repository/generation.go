package repository

import (
	"context"
	"time"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
)

// IGenerationRepo интерфейс для работы с задачами генерации видео
type IGenerationRepo interface {
	Create(ctx context.Context, gen *domain.Generation) error
	GetByTaskID(ctx context.Context, taskID string) (*domain.Generation, error)
	SetProcessing(ctx context.Context, taskID string, veoTaskID string) error

	// MarkCompleted / MarkFailed переводят задачу в терминальный статус.
	// Возвращают true только если переход состоялся именно сейчас:
	// уже терминальная запись не трогается и даёт false
	MarkCompleted(ctx context.Context, taskID string, videoURL string, completedAt time.Time) (bool, error)
	MarkFailed(ctx context.Context, taskID string, errorMessage string, completedAt time.Time) (bool, error)

	// ListStuckProcessing возвращает задачи, зависшие в processing дольше порога
	ListStuckProcessing(ctx context.Context, olderThan time.Time) ([]domain.Generation, error)
	Count(ctx context.Context) (int64, error)
	CountByUser(ctx context.Context, telegramID int64) (int64, error)
}
