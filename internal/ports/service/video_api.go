package service

import (
	"context"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
)

// IVideoAPI интерфейс внешнего API генерации видео (Veo)
type IVideoAPI interface {
	// Generate ставит задачу генерации и возвращает id задачи у провайдера
	Generate(ctx context.Context, req GenerateRequest) (string, error)
	// GetStatus возвращает нормализованный статус задачи.
	// Незнакомая форма ответа трактуется как "ещё обрабатывается"
	GetStatus(ctx context.Context, providerTaskID string) (*domain.GenerationStatusResult, error)
}

// GenerateRequest запрос на генерацию видео
type GenerateRequest struct {
	Prompt      string
	Model       string
	AspectRatio string
	ImageURL    string // непустой для image-to-video
}
