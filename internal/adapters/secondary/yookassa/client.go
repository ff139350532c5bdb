package yookassa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/admin/tg-bots/veo-bot/internal/ports/payment"
)

// Client клиент API ЮКассы. Реализует payment.ICardPaymentProvider
type Client struct {
	cfg        *Config
	HTTPClient *http.Client
	Log        *slog.Logger
}

// NewClient создаёт новый клиент ЮКассы
func NewClient(cfg *Config, log *slog.Logger) *Client {
	return &Client{
		cfg: cfg,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		Log: log,
	}
}

// buildURL собирает полный URL endpoint-а
func (c *Client) buildURL(endpoint string) string {
	return strings.TrimSuffix(c.cfg.BaseURL, "/") + "/" + strings.TrimPrefix(endpoint, "/")
}

// setHeaders устанавливает заголовки запроса. Idempotence-Key обязателен для POST:
// ретрай с тем же ключом не создаст второй платёж
func (c *Client) setHeaders(req *http.Request, idempotenceKey string) {
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.cfg.ShopID, c.cfg.SecretKey)
	if idempotenceKey != "" {
		req.Header.Set("Idempotence-Key", idempotenceKey)
	}
}

// CreatePayment создаёт платёж и возвращает ссылку на оплату
func (c *Client) CreatePayment(ctx context.Context, req payment.CreatePaymentRequest) (*payment.CreatePaymentResult, error) {
	apiReq := CreatePaymentRequest{
		Amount: Amount{
			Value:    req.Amount,
			Currency: req.Currency,
		},
		Capture: true,
		Confirmation: Confirmation{
			Type:      "redirect",
			ReturnURL: req.ReturnURL,
		},
		Description: req.Description,
		Metadata: map[string]string{
			"payment_id": req.PaymentID.String(),
			"user_id":    fmt.Sprintf("%d", req.UserID),
			"package_id": req.PackageID,
		},
	}
	if apiReq.Confirmation.ReturnURL == "" {
		apiReq.Confirmation.ReturnURL = c.cfg.ReturnURL
	}

	jsonData, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("yookassa marshal failed: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL("payments"), bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("yookassa create request failed: %w", err)
	}
	// Внутренний id платежа и есть ключ идемпотентности создания
	c.setHeaders(httpReq, req.PaymentID.String())

	obj, err := c.doPayment(httpReq)
	if err != nil {
		c.Log.Error("yookassa create payment failed",
			"error", err,
			"payment_id", req.PaymentID,
			"user_id", req.UserID,
		)
		return nil, err
	}

	confirmationURL := ""
	if obj.Confirmation != nil {
		confirmationURL = obj.Confirmation.ConfirmationURL
	}
	if confirmationURL == "" {
		return nil, fmt.Errorf("yookassa returned no confirmation_url [provider_id=%s]", obj.ID)
	}

	c.Log.Info("yookassa payment created",
		"payment_id", req.PaymentID,
		"provider_id", obj.ID,
		"amount", req.Amount,
	)

	return &payment.CreatePaymentResult{
		ProviderID:      obj.ID,
		ConfirmationURL: confirmationURL,
		Status:          obj.Status,
	}, nil
}

// GetPayment запрашивает актуальный статус платежа
func (c *Client) GetPayment(ctx context.Context, providerID string) (*payment.PaymentInfo, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL("payments/"+providerID), nil)
	if err != nil {
		return nil, fmt.Errorf("yookassa create request failed: %w", err)
	}
	c.setHeaders(httpReq, "")

	obj, err := c.doPayment(httpReq)
	if err != nil {
		return nil, err
	}

	return &payment.PaymentInfo{
		ProviderID: obj.ID,
		Status:     obj.Status,
		Paid:       obj.Paid,
		Amount:     obj.Amount.Value,
		Currency:   obj.Amount.Currency,
		Metadata:   obj.Metadata,
	}, nil
}

// doPayment выполняет запрос и разбирает объект платежа либо ошибку API
func (c *Client) doPayment(httpReq *http.Request) (*PaymentObject, error) {
	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("yookassa request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yookassa read body failed [status=%d]: %w", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr ErrorResponse
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Description != "" {
			return nil, fmt.Errorf("yookassa API error [status=%d, code=%s]: %s",
				resp.StatusCode, apiErr.Code, apiErr.Description)
		}
		return nil, fmt.Errorf("yookassa API error [status=%d]: %s",
			resp.StatusCode, truncateString(string(body), 200))
	}

	var obj PaymentObject
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, fmt.Errorf("yookassa unmarshal failed [status=%d]: %w", resp.StatusCode, err)
	}

	return &obj, nil
}

// truncateString обрезает строку для логов
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

var _ payment.ICardPaymentProvider = (*Client)(nil)
