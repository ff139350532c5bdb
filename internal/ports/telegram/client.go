package telegram

import (
	"context"
)

// IClient интерфейс для клиента Telegram Bot API
type IClient interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendMessageWithKeyboard(ctx context.Context, chatID int64, text string, keyboard map[string]interface{}) error
	AnswerCallbackQuery(ctx context.Context, callbackID string, text string, showAlert bool) error

	// Telegram Stars
	SendInvoice(ctx context.Context, chatID int64, title, description, payload string, stars int64) (int64, error)
	AnswerPreCheckoutQuery(ctx context.Context, queryID string, ok bool, errorMessage *string) error

	// Доставка результата генерации
	SendVideo(ctx context.Context, chatID int64, videoURL string, caption string) error
	// DownloadFile скачивает файл из Telegram по file_id (фото для image-to-video)
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
}
