package usecase

import (
	"context"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
)

// IGenerationUseCase интерфейс жизненного цикла генерации видео
type IGenerationUseCase interface {
	// Start списывает кредиты, создаёт задачу и отправляет её провайдеру.
	// При сбое отправки списание компенсируется возвратом
	Start(ctx context.Context, req StartGenerationRequest) (*domain.Generation, error)

	// Poll опрашивает провайдера до терминального статуса и закрывает задачу.
	// Запускается в отдельной горутине после Start
	Poll(ctx context.Context, gen *domain.Generation)

	// HandleCallback закрывает задачу по callback-у провайдера.
	// Возвращает ErrGenerationNotFound, если task_id неизвестен
	HandleCallback(ctx context.Context, taskID string, result domain.GenerationStatusResult) error

	// RecoverStuck подхватывает задачи, зависшие в processing после рестарта
	RecoverStuck(ctx context.Context) error
}

// StartGenerationRequest запрос на запуск генерации
type StartGenerationRequest struct {
	User           *domain.User
	ChatID         int64
	Prompt         string
	GenerationType domain.GenerationType
	PhotoFileID    string // file_id фото в Telegram для image-to-video
}
