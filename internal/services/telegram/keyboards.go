package telegram

import (
	"fmt"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
)

// Кнопки и callback_data главных меню. Формат reply_markup:
// https://core.telegram.org/bots/api#inlinekeyboardmarkup

func button(text, callbackData string) map[string]interface{} {
	return map[string]interface{}{
		"text":          text,
		"callback_data": callbackData,
	}
}

func urlButton(text, url string) map[string]interface{} {
	return map[string]interface{}{
		"text": text,
		"url":  url,
	}
}

func inlineKeyboard(rows ...[]map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"inline_keyboard": rows,
	}
}

func mainMenuKeyboard() map[string]interface{} {
	return inlineKeyboard(
		[]map[string]interface{}{button("🎬 Генерировать видео", "generate_video")},
		[]map[string]interface{}{button("💰 Купить кредиты", "buy_credits")},
		[]map[string]interface{}{button("📖 Помощь", "help")},
	)
}

func generateMenuKeyboard() map[string]interface{} {
	return inlineKeyboard(
		[]map[string]interface{}{button("📝 Видео из текста", "text_to_video")},
		[]map[string]interface{}{button("🖼 Видео из изображения", "image_to_video")},
		[]map[string]interface{}{button("🔙 Назад в меню", "main_menu")},
	)
}

func paymentMethodKeyboard() map[string]interface{} {
	return inlineKeyboard(
		[]map[string]interface{}{button("⭐️ Telegram Stars", "pay_stars")},
		[]map[string]interface{}{button("💳 Банковская карта / СБП", "pay_card")},
		[]map[string]interface{}{button("🔙 Назад в меню", "main_menu")},
	)
}

// packagesKeyboard строит список пакетов для выбранного способа оплаты.
// callback_data: buy_<method>_<package_id>
func packagesKeyboard(packages []domain.CreditPackage, method string) map[string]interface{} {
	rows := make([][]map[string]interface{}, 0, len(packages)+1)
	for _, pkg := range packages {
		var price string
		if method == "stars" {
			price = fmt.Sprintf("%d ⭐️", pkg.PriceStars)
		} else {
			price = fmt.Sprintf("%d ₽", pkg.PriceRub)
		}

		text := fmt.Sprintf("%s — %s", pkg.Title, price)
		if pkg.Popular {
			text = "🔥 " + text
		}
		rows = append(rows, []map[string]interface{}{
			button(text, fmt.Sprintf("buy_%s_%s", method, pkg.ID)),
		})
	}
	rows = append(rows, []map[string]interface{}{button("🔙 Назад", "buy_credits")})
	return inlineKeyboard(rows...)
}

func payURLKeyboard(confirmationURL string) map[string]interface{} {
	return inlineKeyboard(
		[]map[string]interface{}{urlButton("💳 Перейти к оплате", confirmationURL)},
		[]map[string]interface{}{button("🔙 Главное меню", "main_menu")},
	)
}

func backToMenuKeyboard() map[string]interface{} {
	return inlineKeyboard(
		[]map[string]interface{}{button("🔙 Главное меню", "main_menu")},
	)
}

func afterGenerationKeyboard() map[string]interface{} {
	return inlineKeyboard(
		[]map[string]interface{}{button("🎬 Создать еще видео", "generate_video")},
		[]map[string]interface{}{button("🔙 Главное меню", "main_menu")},
	)
}
