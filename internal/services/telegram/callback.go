package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
	generationUsecase "github.com/admin/tg-bots/veo-bot/internal/usecases/generation"
)

// HandleCallbackQuery обрабатывает нажатия inline-кнопок
func (s *Service) HandleCallbackQuery(ctx context.Context, query *domain.CallbackQuery, updateID int64) error {
	if query == nil || query.From == nil {
		return fmt.Errorf("invalid callback_query")
	}
	if query.Data == nil || query.Message == nil || query.Message.Chat == nil {
		// Кнопка из пересланного/устаревшего сообщения, просто гасим "часики"
		return s.tg.AnswerCallbackQuery(ctx, query.ID, "", false)
	}

	user, err := s.getOrCreateUser(ctx, query.From)
	if err != nil {
		return fmt.Errorf("failed to get or create user: %w", err)
	}

	if user.IsBanned() {
		return s.tg.AnswerCallbackQuery(ctx, query.ID, "", false)
	}

	data := *query.Data
	chatID := query.Message.Chat.ID

	if _, navigation := navigationCallbacks[data]; !navigation && !s.limiter.Allow(ctx, user.TelegramID) {
		return s.tg.AnswerCallbackQuery(ctx, query.ID,
			"Превышен лимит запросов, подождите минуту", true)
	}

	if err := s.routeCallback(ctx, user, chatID, data); err != nil {
		s.log.Error("failed to handle callback",
			"error", err,
			"callback_data", data,
			"telegram_id", user.TelegramID,
			"update_id", updateID,
		)
		// Пользователю нейтральный ответ, детали в логах
		return s.tg.AnswerCallbackQuery(ctx, query.ID, "Произошла ошибка, попробуйте позже", true)
	}

	return s.tg.AnswerCallbackQuery(ctx, query.ID, "", false)
}

func (s *Service) routeCallback(ctx context.Context, user *domain.User, chatID int64, data string) error {
	switch {
	case data == "main_menu":
		s.states.Clear(ctx, user.TelegramID)
		return s.sendMainMenu(ctx, user, chatID, false)

	case data == "help":
		return s.sendHelp(ctx, chatID)

	case data == "generate_video":
		if user.Credits < generationUsecase.CreditsPerGeneration {
			return s.tg.SendMessageWithKeyboard(ctx, chatID, fmt.Sprintf(
				"❌ Недостаточно кредитов! Нужно %d кредитов.\n\n💰 Ваш баланс: %d",
				generationUsecase.CreditsPerGeneration, user.Credits,
			), paymentMethodKeyboard())
		}
		return s.tg.SendMessageWithKeyboard(ctx, chatID,
			"🎬 Выберите тип генерации:", generateMenuKeyboard())

	case data == "text_to_video":
		if err := s.states.Set(ctx, user.TelegramID, StateWaitingTextPrompt); err != nil {
			return fmt.Errorf("failed to set dialog state: %w", err)
		}
		return s.tg.SendMessage(ctx, chatID,
			"📝 Отправьте текстовое описание видео.\n\nЧем подробнее описание, тем лучше результат!")

	case data == "image_to_video":
		if err := s.states.Set(ctx, user.TelegramID, StateWaitingImage); err != nil {
			return fmt.Errorf("failed to set dialog state: %w", err)
		}
		return s.tg.SendMessage(ctx, chatID,
			"🖼 Отправьте изображение, которое нужно оживить.")

	case data == "buy_credits":
		return s.tg.SendMessageWithKeyboard(ctx, chatID,
			"💰 Выберите способ оплаты:", paymentMethodKeyboard())

	case data == "pay_stars":
		return s.tg.SendMessageWithKeyboard(ctx, chatID,
			"⭐️ Выберите пакет кредитов:", packagesKeyboard(s.billing.Packages(), "stars"))

	case data == "pay_card":
		return s.tg.SendMessageWithKeyboard(ctx, chatID,
			"💳 Выберите пакет кредитов:", packagesKeyboard(s.billing.Packages(), "card"))

	case strings.HasPrefix(data, "buy_stars_"):
		packageID := strings.TrimPrefix(data, "buy_stars_")
		return s.buyWithStars(ctx, user, chatID, packageID)

	case strings.HasPrefix(data, "buy_card_"):
		packageID := strings.TrimPrefix(data, "buy_card_")
		return s.buyWithCard(ctx, user, chatID, packageID)

	default:
		s.log.Warn("unknown callback_data", "callback_data", data)
		return nil
	}
}

func (s *Service) buyWithStars(ctx context.Context, user *domain.User, chatID int64, packageID string) error {
	if err := s.billing.CreateStarsInvoice(ctx, user, chatID, packageID); err != nil {
		if errors.Is(err, domain.ErrUnknownPackage) {
			return s.tg.SendMessage(ctx, chatID, "❌ Такого пакета больше нет. Выберите другой.")
		}
		return fmt.Errorf("failed to create stars invoice: %w", err)
	}
	return nil
}

func (s *Service) buyWithCard(ctx context.Context, user *domain.User, chatID int64, packageID string) error {
	confirmationURL, err := s.billing.CreateCardPayment(ctx, user, packageID)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownPackage) {
			return s.tg.SendMessage(ctx, chatID, "❌ Такого пакета больше нет. Выберите другой.")
		}
		return fmt.Errorf("failed to create card payment: %w", err)
	}

	return s.tg.SendMessageWithKeyboard(ctx, chatID,
		"💳 Счёт создан!\n\nПерейдите по кнопке ниже для оплаты. "+
			"Кредиты будут зачислены автоматически после подтверждения платежа.",
		payURLKeyboard(confirmationURL))
}
