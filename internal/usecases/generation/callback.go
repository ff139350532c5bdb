package generation

import (
	"context"
	"fmt"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
)

// HandleCallback обрабатывает входящий callback провайдера по внутреннему task_id.
// Может прийти параллельно с поллером, терминальные guard-ы в
// complete/failAndRefund дают не более одного закрытия и возврата
func (u *UseCase) HandleCallback(ctx context.Context, taskID string, result domain.GenerationStatusResult) error {
	gen, err := u.generations.GetByTaskID(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to get generation by task_id: %w", err)
	}

	switch result.Outcome {
	case domain.OutcomeSuccess:
		if result.VideoURL == "" {
			// Успех без ссылки на видео не закрываем, пусть дорешает поллер
			u.log.Warn("callback reported success without video url, ignoring",
				"task_id", taskID,
			)
			return nil
		}
		u.complete(ctx, gen, result.VideoURL)

	case domain.OutcomeFailure:
		errorMessage := result.ErrorMessage
		if errorMessage == "" {
			errorMessage = "generation failed"
		}
		u.failAndRefund(ctx, gen, errorMessage)

	case domain.OutcomeProcessing:
		// промежуточный статус, ничего не меняем
	}

	return nil
}
