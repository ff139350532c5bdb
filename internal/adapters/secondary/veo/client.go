package veo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"log/slog"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
	"github.com/admin/tg-bots/veo-bot/internal/ports/service"
)

const (
	generateEndpoint   = "/api/v1/veo/generate"
	recordInfoEndpoint = "/api/v1/veo/record-info"
	statusEndpoint     = "/api/v1/veo/status/"
)

// Client клиент API генерации видео. Реализует service.IVideoAPI
type Client struct {
	cfg        *Config
	HTTPClient *http.Client
	Log        *slog.Logger
}

// NewClient создаёт новый клиент Veo API
func NewClient(cfg *Config, log *slog.Logger) *Client {
	return &Client{
		cfg: cfg,
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		Log: log,
	}
}

// buildURL собирает полный URL endpoint-а
func (c *Client) buildURL(endpoint string) string {
	return strings.TrimSuffix(c.cfg.BaseURL, "/") + endpoint
}

// setHeaders устанавливает стандартные заголовки для запросов к API
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.ApiKey)
}

// Generate ставит задачу генерации и возвращает id задачи у провайдера
func (c *Client) Generate(ctx context.Context, req service.GenerateRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = c.cfg.Model
	}

	apiReq := generateRequest{
		Prompt:         req.Prompt,
		Model:          model,
		AspectRatio:    req.AspectRatio,
		EnableFallback: true,
	}
	if req.ImageURL != "" {
		apiReq.ImageURLs = []string{req.ImageURL}
	}

	jsonData, err := json.Marshal(apiReq)
	if err != nil {
		return "", fmt.Errorf("veo marshal failed: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(generateEndpoint), bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("veo create request failed: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("veo request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("veo read body failed [status=%d]: %w", resp.StatusCode, err)
	}

	var apiResp generateResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		c.Log.Error("veo generate response unmarshal failed",
			"error", err,
			"status_code", resp.StatusCode,
			"body_preview", truncateString(string(body), 200),
		)
		return "", fmt.Errorf("veo unmarshal failed [status=%d]: %w", resp.StatusCode, err)
	}

	if apiResp.Code != 200 || apiResp.Data.TaskID == "" {
		c.Log.Error("veo generate rejected",
			"code", apiResp.Code,
			"msg", apiResp.Msg,
			"status_code", resp.StatusCode,
		)
		return "", fmt.Errorf("veo API error [code=%d]: %s", apiResp.Code, apiResp.Msg)
	}

	c.Log.Info("veo task created",
		"veo_task_id", apiResp.Data.TaskID,
		"model", model,
	)
	return apiResp.Data.TaskID, nil
}

// GetStatus возвращает нормализованный статус задачи. Сначала основной endpoint,
// при его недоступности запасной со старой схемой. Сетевые ошибки поднимаются наверх
func (c *Client) GetStatus(ctx context.Context, providerTaskID string) (*domain.GenerationStatusResult, error) {
	primaryURL := c.buildURL(recordInfoEndpoint) + "?taskId=" + url.QueryEscape(providerTaskID)

	body, status, err := c.get(ctx, primaryURL)
	if err == nil && status == http.StatusOK {
		return normalizeRecordInfo(body), nil
	}

	c.Log.Warn("veo record-info unavailable, falling back to status endpoint",
		"error", err,
		"http_status", status,
		"veo_task_id", providerTaskID,
	)

	fallbackURL := c.buildURL(statusEndpoint) + url.PathEscape(providerTaskID)
	body, status, err = c.get(ctx, fallbackURL)
	if err != nil {
		return nil, fmt.Errorf("veo status request failed [task=%s]: %w", providerTaskID, err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("veo status request failed [task=%s, status=%d]", providerTaskID, status)
	}

	return normalizeStatus(body), nil
}

// get выполняет GET и возвращает тело и HTTP статус
func (c *Client) get(ctx context.Context, fullURL string) ([]byte, int, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("veo create request failed: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("veo read body failed: %w", err)
	}

	return body, resp.StatusCode, nil
}

// truncateString обрезает строку для логов
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

var _ service.IVideoAPI = (*Client)(nil)
