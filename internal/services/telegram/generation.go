package telegram

import (
	"context"
	"errors"
	"fmt"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
	"github.com/admin/tg-bots/veo-bot/internal/ports/usecase"
	generationUsecase "github.com/admin/tg-bots/veo-bot/internal/usecases/generation"
)

// startGeneration запускает генерацию видео и отвечает пользователю.
// Списание и компенсация при сбое на стороне use case, здесь только диалог
func (s *Service) startGeneration(
	ctx context.Context,
	user *domain.User,
	chatID int64,
	prompt string,
	generationType domain.GenerationType,
	photoFileID string,
) error {
	gen, err := s.generation.Start(ctx, usecase.StartGenerationRequest{
		User:           user,
		ChatID:         chatID,
		Prompt:         prompt,
		GenerationType: generationType,
		PhotoFileID:    photoFileID,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInsufficientCredits):
			return s.tg.SendMessageWithKeyboard(ctx, chatID, fmt.Sprintf(
				"❌ Недостаточно кредитов! Нужно %d кредитов.",
				generationUsecase.CreditsPerGeneration,
			), paymentMethodKeyboard())
		default:
			s.log.Error("failed to start generation",
				"error", err,
				"telegram_id", user.TelegramID,
				"generation_type", generationType,
			)
			return s.tg.SendMessageWithKeyboard(ctx, chatID,
				"❌ Ошибка генерации видео\n\nКредиты возвращены на ваш счет. Попробуйте еще раз.",
				backToMenuKeyboard())
		}
	}

	// Поллер живёт дольше обработки обновления
	go s.generation.Poll(context.WithoutCancel(ctx), gen)

	promptPreview := prompt
	if len([]rune(promptPreview)) > 100 {
		promptPreview = string([]rune(promptPreview)[:100]) + "..."
	}

	text := fmt.Sprintf(
		"🎬 Генерируем ваше видео...\n\n"+
			"📝 Промпт: %s\n"+
			"💰 Списано кредитов: %d\n"+
			"💳 Остаток: %d кредитов\n\n"+
			"⏳ Процесс займет 1-5 минут. Мы уведомим вас о готовности!",
		promptPreview,
		gen.CreditsSpent,
		user.Credits-gen.CreditsSpent,
	)
	return s.tg.SendMessageWithKeyboard(ctx, chatID, text, afterGenerationKeyboard())
}
