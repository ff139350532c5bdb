package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
)

// navigationCallbacks не троттлим: навигация по меню дешёвая и частая
var navigationCallbacks = map[string]struct{}{
	"main_menu":      {},
	"buy_credits":    {},
	"pay_stars":      {},
	"pay_card":       {},
	"generate_video": {},
	"text_to_video":  {},
	"image_to_video": {},
	"help":           {},
}

// HandleUpdate основной метод для обработки всех типов обновлений
func (s *Service) HandleUpdate(ctx context.Context, update *domain.Update) error {
	if update == nil {
		return fmt.Errorf("update is nil")
	}

	if update.PreCheckoutQuery != nil {
		return s.HandlePreCheckoutQuery(ctx, update.PreCheckoutQuery)
	}

	if update.CallbackQuery != nil {
		return s.HandleCallbackQuery(ctx, update.CallbackQuery, update.UpdateID)
	}

	if update.Message != nil {
		return s.HandleMessage(ctx, update.Message, update.UpdateID)
	}

	return nil
}

// HandleMessage обрабатывает входящее сообщение - роутинг в usecase
func (s *Service) HandleMessage(ctx context.Context, message *domain.Message, updateID int64) error {
	if message == nil {
		return fmt.Errorf("message is nil")
	}

	if message.From == nil || message.From.IsBot {
		s.log.Debug("ignoring message from bot", "update_id", updateID)
		return nil
	}

	if message.Chat != nil && message.Chat.Type != "private" {
		s.log.Warn("ignoring message from group/chat",
			"update_id", updateID,
			"chat_type", message.Chat.Type,
			"chat_id", message.Chat.ID,
		)
		return nil
	}

	user, err := s.getOrCreateUser(ctx, message.From)
	if err != nil {
		s.log.Error("failed to get or create user",
			"error", err,
			"telegram_user_id", message.From.ID,
			"update_id", updateID,
		)
		return fmt.Errorf("failed to get or create user: %w", err)
	}

	if user.IsBanned() {
		s.log.Warn("ignoring message from banned user", "telegram_id", user.TelegramID)
		return nil
	}

	chatID := message.Chat.ID

	// successful_payment приходит сервисным сообщением после оплаты Stars
	if message.SuccessfulPayment != nil {
		return s.HandleSuccessfulPayment(ctx, user, chatID, message.SuccessfulPayment)
	}

	// Диалоговые шаги не троттлим: пользователь в середине сценария генерации
	state := s.states.Get(ctx, user.TelegramID)
	if state == StateNone && !s.limiter.Allow(ctx, user.TelegramID) {
		return s.tg.SendMessage(ctx, chatID,
			"🚫 Превышен лимит запросов. Попробуйте через минуту.")
	}

	if message.Text != nil && IsCommand(*message.Text) {
		s.states.Clear(ctx, user.TelegramID)
		command, args := ParseCommand(*message.Text)
		return s.handleCommand(ctx, user, chatID, command, args)
	}

	switch state {
	case StateWaitingTextPrompt:
		if message.Text == nil {
			return s.tg.SendMessage(ctx, chatID, "❌ Пожалуйста, отправьте текстовое описание видео.")
		}
		s.states.Clear(ctx, user.TelegramID)
		return s.startGeneration(ctx, user, chatID, *message.Text, domain.GenerationTypeTextToVideo, "")

	case StateWaitingImage:
		if len(message.Photo) == 0 {
			return s.tg.SendMessage(ctx, chatID, "❌ Пожалуйста, отправьте изображение.")
		}
		// Telegram отдаёт фото в нескольких размерах, берём самый крупный
		fileID := message.Photo[len(message.Photo)-1].FileID
		if err := s.states.SetPhoto(ctx, user.TelegramID, fileID); err != nil {
			return fmt.Errorf("failed to save photo file_id: %w", err)
		}
		if err := s.states.Set(ctx, user.TelegramID, StateWaitingImagePrompt); err != nil {
			return fmt.Errorf("failed to set dialog state: %w", err)
		}
		return s.tg.SendMessage(ctx, chatID,
			"🖼 Изображение получено!\n\nТеперь отправьте текстовое описание: что должно происходить в видео?")

	case StateWaitingImagePrompt:
		if message.Text == nil {
			return s.tg.SendMessage(ctx, chatID, "❌ Пожалуйста, отправьте текстовое описание.")
		}
		fileID := s.states.GetPhoto(ctx, user.TelegramID)
		if fileID == "" {
			s.states.Clear(ctx, user.TelegramID)
			return s.tg.SendMessage(ctx, chatID, "❌ Изображение потеряно. Начните сначала.")
		}
		s.states.Clear(ctx, user.TelegramID)
		return s.startGeneration(ctx, user, chatID, *message.Text, domain.GenerationTypeImageToVideo, fileID)
	}

	// Сообщение вне сценария, показываем меню
	return s.sendMainMenu(ctx, user, chatID, false)
}

// getOrCreateUser апсертит пользователя по данным из обновления
func (s *Service) getOrCreateUser(ctx context.Context, from *domain.TelegramUser) (*domain.User, error) {
	return s.users.GetOrCreate(ctx, &domain.User{
		TelegramID: from.ID,
		Username:   from.Username,
		FirstName:  &from.FirstName,
		LastName:   from.LastName,
		Status:     domain.UserStatusRegular,
	})
}

// ParseCommand разбирает "/cmd@bot arg1 arg2" на имя команды и аргументы
func ParseCommand(text string) (command string, args string) {
	text = strings.TrimPrefix(text, "/")

	if idx := strings.Index(text, " "); idx != -1 {
		args = strings.TrimSpace(text[idx+1:])
		text = text[:idx]
	}

	if idx := strings.Index(text, "@"); idx != -1 {
		text = text[:idx]
	}

	return text, args
}

func IsCommand(text string) bool {
	return len(text) > 0 && text[0] == '/'
}
