package veoController

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
	"github.com/admin/tg-bots/veo-bot/internal/ports/usecase"
)

// callbackRequest тело callback-а о готовности генерации.
// Провайдер присылал ссылку на видео под разными именами полей
type callbackRequest struct {
	Status       string `json:"status"`
	VideoURL     string `json:"video_url"`
	VideoURLAlt  string `json:"videoUrl"`
	URL          string `json:"url"`
	Error        string `json:"error"`
	ErrorMessage string `json:"message"`
}

func (r *callbackRequest) videoURL() string {
	switch {
	case r.VideoURL != "":
		return r.VideoURL
	case r.VideoURLAlt != "":
		return r.VideoURLAlt
	default:
		return r.URL
	}
}

func (r *callbackRequest) errorMessage() string {
	if r.Error != "" {
		return r.Error
	}
	return r.ErrorMessage
}

// CallbackController принимает callback-и провайдера генерации.
// Тот же терминальный переход умеет делать поллер
type CallbackController struct {
	generation usecase.IGenerationUseCase
	log        *slog.Logger
}

func New(generation usecase.IGenerationUseCase, log *slog.Logger) *CallbackController {
	return &CallbackController{
		generation: generation,
		log:        log,
	}
}

func (c *CallbackController) RegisterRoutes(r *gin.Engine) {
	r.POST("/webhook/veo-complete/:task_id", c.handleCallback)
}

func (c *CallbackController) handleCallback(ctx *gin.Context) {
	taskID := ctx.Param("task_id")
	if taskID == "" {
		ctx.String(http.StatusBadRequest, "Missing task_id")
		return
	}

	var req callbackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.log.Error("invalid veo callback JSON", "error", err, "task_id", taskID)
		ctx.String(http.StatusBadRequest, "Invalid JSON")
		return
	}

	c.log.Info("veo callback received",
		"task_id", taskID,
		"status", req.Status,
	)

	result := normalizeCallback(&req)
	if err := c.generation.HandleCallback(ctx, taskID, result); err != nil {
		if errors.Is(err, domain.ErrGenerationNotFound) {
			c.log.Warn("veo callback for unknown task", "task_id", taskID)
			ctx.String(http.StatusBadRequest, "Task not found")
			return
		}
		c.log.Error("failed to handle veo callback",
			"error", err,
			"task_id", taskID,
		)
		ctx.String(http.StatusInternalServerError, "Internal error")
		return
	}

	ctx.String(http.StatusOK, "OK")
}

// normalizeCallback приводит тело callback-а к общему виду статуса генерации
func normalizeCallback(req *callbackRequest) domain.GenerationStatusResult {
	switch req.Status {
	case "completed", "success":
		return domain.GenerationStatusResult{
			Outcome:  domain.OutcomeSuccess,
			VideoURL: req.videoURL(),
		}
	case "failed", "error":
		return domain.GenerationStatusResult{
			Outcome:      domain.OutcomeFailure,
			ErrorMessage: req.errorMessage(),
		}
	default:
		return domain.GenerationStatusResult{Outcome: domain.OutcomeProcessing}
	}
}
