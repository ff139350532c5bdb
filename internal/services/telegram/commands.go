package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
	generationUsecase "github.com/admin/tg-bots/veo-bot/internal/usecases/generation"
)

// handleCommand роутит команды бота
func (s *Service) handleCommand(ctx context.Context, user *domain.User, chatID int64, command, args string) error {
	switch command {
	case "start":
		// deep-link возврата с платёжной страницы: /start payment_success
		return s.sendMainMenu(ctx, user, chatID, args == "payment_success")
	case "balance":
		return s.sendBalance(ctx, user, chatID)
	case "buy":
		return s.tg.SendMessageWithKeyboard(ctx, chatID,
			"💰 Выберите способ оплаты:", paymentMethodKeyboard())
	case "generate":
		return s.tg.SendMessageWithKeyboard(ctx, chatID,
			"🎬 Выберите тип генерации:", generateMenuKeyboard())
	case "help":
		return s.sendHelp(ctx, chatID)
	case "admin":
		return s.sendAdminStats(ctx, user, chatID)
	case "grant":
		return s.handleGrant(ctx, user, chatID, args)
	default:
		return s.tg.SendMessage(ctx, chatID,
			"Неизвестная команда. Отправьте /help для списка команд.")
	}
}

// sendMainMenu приветствие с балансом и главным меню
func (s *Service) sendMainMenu(ctx context.Context, user *domain.User, chatID int64, afterPayment bool) error {
	name := "друг"
	if user.FirstName != nil && *user.FirstName != "" {
		name = *user.FirstName
	}

	var text string
	if afterPayment {
		text = fmt.Sprintf(
			"✅ Добро пожаловать обратно!\n\nПривет, %s! 👋\n\n"+
				"💰 Ваш текущий баланс: %d кредитов\n\n"+
				"Если вы только что совершили оплату, кредиты будут зачислены в течение нескольких минут.\n\n"+
				"Выберите действие из меню ниже:",
			name, user.Credits,
		)
	} else {
		text = fmt.Sprintf(
			"🎬 Добро пожаловать в AI Video Generator!\n\nПривет, %s! 👋\n\n"+
				"Этот бот поможет вам создавать видео с помощью Veo 3.\n\n"+
				"💰 Ваш баланс: %d кредитов\n\n"+
				"Выберите действие из меню ниже:",
			name, user.Credits,
		)
	}

	return s.tg.SendMessageWithKeyboard(ctx, chatID, text, mainMenuKeyboard())
}

func (s *Service) sendBalance(ctx context.Context, user *domain.User, chatID int64) error {
	text := fmt.Sprintf(
		"💰 Ваш баланс: %d кредитов\n\n🎬 Одна генерация видео стоит %d кредитов.",
		user.Credits, generationUsecase.CreditsPerGeneration,
	)
	return s.tg.SendMessageWithKeyboard(ctx, chatID, text, backToMenuKeyboard())
}

func (s *Service) sendHelp(ctx context.Context, chatID int64) error {
	text := "📖 Как пользоваться ботом:\n\n" +
		"1️⃣ Купите кредиты (⭐️ Stars или 💳 карта/СБП)\n" +
		"2️⃣ Выберите «Генерировать видео»\n" +
		"3️⃣ Отправьте описание — или изображение и описание\n" +
		"4️⃣ Дождитесь готового видео (1-5 минут)\n\n" +
		fmt.Sprintf("💎 Стоимость генерации: %d кредитов\n\n", generationUsecase.CreditsPerGeneration) +
		"Команды:\n" +
		"/start — главное меню\n" +
		"/balance — баланс кредитов\n" +
		"/buy — купить кредиты\n" +
		"/generate — создать видео"
	return s.tg.SendMessageWithKeyboard(ctx, chatID, text, backToMenuKeyboard())
}

// sendAdminStats сводка для админа. Не-админу отвечаем как на неизвестную команду,
// не раскрывая существование админки
func (s *Service) sendAdminStats(ctx context.Context, user *domain.User, chatID int64) error {
	stats, err := s.admin.Stats(ctx, user.TelegramID)
	if err != nil {
		if errors.Is(err, domain.ErrNotAdmin) || errors.Is(err, domain.ErrAdminDisabled) {
			return s.tg.SendMessage(ctx, chatID,
				"Неизвестная команда. Отправьте /help для списка команд.")
		}
		return fmt.Errorf("failed to get admin stats: %w", err)
	}

	text := fmt.Sprintf(
		"📊 Статистика\n\n👥 Пользователей: %d\n💎 Кредитов в обороте: %d\n🎬 Генераций: %d",
		stats.TotalUsers, stats.TotalCredits, stats.TotalGenerations,
	)
	return s.tg.SendMessageWithKeyboard(ctx, chatID, text, backToMenuKeyboard())
}

// handleGrant ручное начисление кредитов: /grant <telegram_id> <amount>
func (s *Service) handleGrant(ctx context.Context, user *domain.User, chatID int64, args string) error {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return s.tg.SendMessage(ctx, chatID, "Формат: /grant <telegram_id> <amount>")
	}

	targetID, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return s.tg.SendMessage(ctx, chatID, "❌ Некорректный telegram_id.")
	}
	amount, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return s.tg.SendMessage(ctx, chatID, "❌ Некорректная сумма.")
	}

	newBalance, err := s.admin.GrantCredits(ctx, user.TelegramID, targetID, amount)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotAdmin), errors.Is(err, domain.ErrAdminDisabled):
			return s.tg.SendMessage(ctx, chatID,
				"Неизвестная команда. Отправьте /help для списка команд.")
		case errors.Is(err, domain.ErrUserNotFound):
			return s.tg.SendMessage(ctx, chatID, "❌ Пользователь не найден.")
		case errors.Is(err, domain.ErrInvalidGrantAmount):
			return s.tg.SendMessage(ctx, chatID, "❌ Недопустимая сумма начисления.")
		default:
			return fmt.Errorf("failed to grant credits: %w", err)
		}
	}

	return s.tg.SendMessage(ctx, chatID, fmt.Sprintf(
		"✅ Начислено %d кредитов пользователю %d.\nНовый баланс: %d", amount, targetID, newBalance))
}
