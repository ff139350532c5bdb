package admin

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
	"github.com/admin/tg-bots/veo-bot/internal/ports/usecase"
)

// Controller ручки админки. Авторизация по роли admin в БД,
// сама ручка включена только в production-окружении
type Controller struct {
	Admin usecase.IAdminUseCase
	Log   *slog.Logger
}

func New(admin usecase.IAdminUseCase, log *slog.Logger) *Controller {
	return &Controller{
		Admin: admin,
		Log:   log,
	}
}

func (c *Controller) RegisterRoutes(router *gin.Engine) {
	admin := router.Group("/admin")
	{
		admin.POST("/credits/grant", c.grantCredits)
		admin.GET("/credits", c.userCredits)
		admin.GET("/stats", c.stats)
	}
}

// GrantCreditsRequest запрос на ручное начисление кредитов
type GrantCreditsRequest struct {
	AdminID      int64 `json:"admin_id" binding:"required"`
	TargetUserID int64 `json:"target_user_id" binding:"required"`
	Amount       int64 `json:"amount" binding:"required"`
}

// GrantCreditsResponse ответ на начисление
type GrantCreditsResponse struct {
	Success      bool   `json:"success"`
	NewBalance   int64  `json:"new_balance,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

func (c *Controller) grantCredits(ctx *gin.Context) {
	var req GrantCreditsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.Log.Warn("failed to bind grant credits request", "error", err)
		ctx.JSON(http.StatusBadRequest, GrantCreditsResponse{
			Success:      false,
			ErrorMessage: "invalid request",
		})
		return
	}

	newBalance, err := c.Admin.GrantCredits(ctx.Request.Context(), req.AdminID, req.TargetUserID, req.Amount)
	if err != nil {
		status, message := adminErrorStatus(err)
		c.Log.Warn("grant credits rejected",
			"error", err,
			"admin_id", req.AdminID,
			"target_user_id", req.TargetUserID,
			"amount", req.Amount,
		)
		ctx.JSON(status, GrantCreditsResponse{
			Success:      false,
			ErrorMessage: message,
		})
		return
	}

	ctx.JSON(http.StatusOK, GrantCreditsResponse{
		Success:    true,
		NewBalance: newBalance,
	})
}

// UserCreditsResponse баланс произвольного пользователя
type UserCreditsResponse struct {
	UserID  int64 `json:"user_id"`
	Credits int64 `json:"credits"`
}

func (c *Controller) userCredits(ctx *gin.Context) {
	adminID, err := strconv.ParseInt(ctx.Query("admin_id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid admin_id"})
		return
	}
	userID, err := strconv.ParseInt(ctx.Query("user_id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return
	}

	credits, err := c.Admin.GetUserCredits(ctx.Request.Context(), adminID, userID)
	if err != nil {
		status, message := adminErrorStatus(err)
		ctx.JSON(status, gin.H{"error": message})
		return
	}

	ctx.JSON(http.StatusOK, UserCreditsResponse{
		UserID:  userID,
		Credits: credits,
	})
}

// StatsResponse сводка для админ-панели
type StatsResponse struct {
	TotalUsers       int64 `json:"total_users"`
	TotalCredits     int64 `json:"total_credits"`
	TotalGenerations int64 `json:"total_generations"`
}

func (c *Controller) stats(ctx *gin.Context) {
	adminID, err := strconv.ParseInt(ctx.Query("admin_id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid admin_id"})
		return
	}

	stats, err := c.Admin.Stats(ctx.Request.Context(), adminID)
	if err != nil {
		status, message := adminErrorStatus(err)
		ctx.JSON(status, gin.H{"error": message})
		return
	}

	ctx.JSON(http.StatusOK, StatsResponse{
		TotalUsers:       stats.TotalUsers,
		TotalCredits:     stats.TotalCredits,
		TotalGenerations: stats.TotalGenerations,
	})
}

// adminErrorStatus транслирует ошибки админ-usecase в HTTP-статусы.
// Отказ в доступе не детализируем
func adminErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrAdminDisabled), errors.Is(err, domain.ErrNotAdmin):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrInvalidGrantAmount):
		return http.StatusBadRequest, "invalid amount"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
