package yookassaController

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"net/netip"
	"strings"

	"github.com/gin-gonic/gin"

	yookassaClient "github.com/admin/tg-bots/veo-bot/internal/adapters/secondary/yookassa"
	"github.com/admin/tg-bots/veo-bot/internal/ports/repository"
	"github.com/admin/tg-bots/veo-bot/internal/ports/usecase"
)

// Официальные диапазоны, с которых ЮКасса шлёт вебхуки:
// https://yookassa.ru/developers/using-api/webhooks#ip
var yookassaRanges = []string{
	"185.71.76.0/27",
	"185.71.77.0/27",
	"77.75.153.0/25",
	"77.75.154.0/25",
	"77.75.156.11/32",
	"77.75.156.35/32",
	"2a02:5180:0:1509::/64",
	"2a02:5180:0:2655::/64",
}

// WebhookController принимает вебхуки ЮКассы о смене статуса платежа.
// Тело не подписано, аутентификация только по IP источника
type WebhookController struct {
	payments repository.IPaymentRepo
	billing  usecase.IBillingUseCase
	allowed  []netip.Prefix
	log      *slog.Logger
}

func New(
	payments repository.IPaymentRepo,
	billing usecase.IBillingUseCase,
	log *slog.Logger,
) *WebhookController {
	allowed := make([]netip.Prefix, 0, len(yookassaRanges))
	for _, cidr := range yookassaRanges {
		prefix, err := netip.ParsePrefix(cidr)
		if err != nil {
			// Список статический, ошибка здесь означает опечатку в коде
			panic("invalid yookassa cidr: " + cidr)
		}
		allowed = append(allowed, prefix)
	}

	return &WebhookController{
		payments: payments,
		billing:  billing,
		allowed:  allowed,
		log:      log,
	}
}

func (c *WebhookController) RegisterRoutes(r *gin.Engine) {
	r.POST("/webhook/yookassa", c.handleWebhook)
}

func (c *WebhookController) handleWebhook(ctx *gin.Context) {
	clientIP := realIP(ctx)

	if !c.isTrustedSource(clientIP) {
		c.log.Warn("webhook from untrusted source rejected",
			"client_ip", clientIP,
			"path", ctx.Request.URL.Path,
		)
		ctx.String(http.StatusForbidden, "Forbidden")
		return
	}

	var notification yookassaClient.WebhookNotification
	if err := ctx.ShouldBindJSON(&notification); err != nil {
		c.log.Error("invalid webhook JSON", "error", err, "client_ip", clientIP)
		ctx.String(http.StatusBadRequest, "Invalid JSON")
		return
	}

	c.log.Info("yookassa webhook received",
		"event", notification.Event,
		"provider_payment_id", notification.Object.ID,
	)

	// Бизнес-ошибки не транслируем в статус: 200 гасит ретраи провайдера,
	// недообработанное дочитает поллер-сверка
	c.process(ctx, &notification)
	ctx.String(http.StatusOK, "OK")
}

func (c *WebhookController) process(ctx *gin.Context, notification *yookassaClient.WebhookNotification) {
	providerID := notification.Object.ID
	if providerID == "" {
		c.log.Warn("webhook without payment id ignored", "event", notification.Event)
		return
	}

	payment, err := c.payments.GetByProviderID(ctx, providerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Вебхук о платеже, которого мы не создавали
			c.log.Warn("webhook for unknown payment ignored", "provider_payment_id", providerID)
			return
		}
		c.log.Error("failed to look up payment for webhook",
			"error", err,
			"provider_payment_id", providerID,
		)
		return
	}

	// Статус всё равно перечитывается у провайдера внутри SettleCardPayment
	if _, err := c.billing.SettleCardPayment(ctx, payment.ID); err != nil {
		c.log.Error("failed to settle card payment from webhook",
			"error", err,
			"payment_id", payment.ID,
			"provider_payment_id", providerID,
		)
	}
}

func (c *WebhookController) isTrustedSource(clientIP string) bool {
	// Локальные запросы пропускаем (healthcheck-и и ручная отладка)
	if clientIP == "127.0.0.1" || clientIP == "::1" {
		return true
	}

	addr, err := netip.ParseAddr(clientIP)
	if err != nil {
		c.log.Warn("failed to parse client ip", "client_ip", clientIP, "error", err)
		return false
	}
	addr = addr.Unmap()

	for _, prefix := range c.allowed {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// realIP извлекает IP источника с учётом прокси: X-Forwarded-For может
// содержать цепочку, первым стоит исходный клиент
func realIP(ctx *gin.Context) string {
	if forwarded := ctx.GetHeader("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if real := ctx.GetHeader("X-Real-IP"); real != "" {
		return real
	}
	return ctx.RemoteIP()
}
