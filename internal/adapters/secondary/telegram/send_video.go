package telegram

import (
	"context"
)

// SendVideoRequest запрос на отправку видео по URL.
// Telegram сам скачивает файл до 20 МБ, результаты Veo в лимит укладываются
type SendVideoRequest struct {
	ChatID  int64  `json:"chat_id"`
	Video   string `json:"video"` // URL или file_id
	Caption string `json:"caption,omitempty"`
}

// SendVideo отправляет пользователю готовое видео
func (c *Client) SendVideo(ctx context.Context, chatID int64, videoURL string, caption string) error {
	req := SendVideoRequest{
		ChatID:  chatID,
		Video:   videoURL,
		Caption: caption,
	}

	if err := c.postJSON(ctx, "sendVideo", req, nil); err != nil {
		return err
	}

	c.log.Debug("video sent successfully", "chat_id", chatID)
	return nil
}
