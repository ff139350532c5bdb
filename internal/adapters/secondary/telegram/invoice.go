package telegram

import (
	"context"
)

// LabeledPrice представляет цену в invoice
type LabeledPrice struct {
	Label  string `json:"label"`
	Amount int64  `json:"amount"` // для Stars количество звёзд
}

// SendInvoiceRequest запрос на отправку invoice (Telegram Stars).
// Документация: https://core.telegram.org/bots/api#sendinvoice
type SendInvoiceRequest struct {
	ChatID        int64          `json:"chat_id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Payload       string         `json:"payload"`                  // уникальный payload для идентификации платежа
	ProviderToken string         `json:"provider_token,omitempty"` // не нужен для Stars
	Currency      string         `json:"currency"`                 // "XTR" для Stars
	Prices        []LabeledPrice `json:"prices"`
}

// SendInvoiceResult результат отправки invoice
type SendInvoiceResult struct {
	MessageID int64 `json:"message_id"`
}

// SendInvoiceResponse ответ от Telegram API на sendInvoice
type SendInvoiceResponse struct {
	APIResponse
	Result SendInvoiceResult `json:"result"`
}

// SendInvoice отправляет invoice на оплату звёздами
func (c *Client) SendInvoice(ctx context.Context, chatID int64, title, description, payload string, stars int64) (int64, error) {
	req := SendInvoiceRequest{
		ChatID:      chatID,
		Title:       title,
		Description: description,
		Payload:     payload,
		Currency:    "XTR",
		Prices: []LabeledPrice{
			{Label: title, Amount: stars},
		},
	}

	var resp SendInvoiceResponse
	if err := c.postJSON(ctx, "sendInvoice", req, &resp); err != nil {
		return 0, err
	}

	c.log.Debug("invoice sent successfully",
		"chat_id", chatID,
		"message_id", resp.Result.MessageID,
		"payload", payload,
	)
	return resp.Result.MessageID, nil
}

// AnswerPreCheckoutQueryRequest запрос на ответ pre_checkout_query
type AnswerPreCheckoutQueryRequest struct {
	PreCheckoutQueryID string  `json:"pre_checkout_query_id"`
	OK                 bool    `json:"ok"`
	ErrorMessage       *string `json:"error_message,omitempty"` // сообщение об ошибке (если ok=false)
}

// AnswerPreCheckoutQuery подтверждает или отклоняет платёж.
// Telegram ждёт ответ не больше 10 секунд
func (c *Client) AnswerPreCheckoutQuery(ctx context.Context, queryID string, ok bool, errorMessage *string) error {
	req := AnswerPreCheckoutQueryRequest{
		PreCheckoutQueryID: queryID,
		OK:                 ok,
		ErrorMessage:       errorMessage,
	}

	if err := c.postJSON(ctx, "answerPreCheckoutQuery", req, nil); err != nil {
		return err
	}

	c.log.Debug("pre_checkout_query answered",
		"query_id", queryID,
		"ok", ok,
	)
	return nil
}
