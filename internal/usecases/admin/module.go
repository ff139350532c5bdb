package admin

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
	"github.com/admin/tg-bots/veo-bot/internal/ports/repository"
	"github.com/admin/tg-bots/veo-bot/internal/ports/usecase"
)

// MaxGrantAmount потолок разового ручного начисления
const MaxGrantAmount = 1000

// UseCase административные операции.
// Включаются только на production-окружении, на локальном запуске ручные начисления выключены
type UseCase struct {
	users     repository.IUserRepo
	ledger    repository.ILedgerRepo
	gens      repository.IGenerationRepo
	adminLogs repository.IAdminLogRepo
	enabled   bool
	log       *slog.Logger
}

// New создаёт use case административных операций
func New(
	users repository.IUserRepo,
	ledger repository.ILedgerRepo,
	gens repository.IGenerationRepo,
	adminLogs repository.IAdminLogRepo,
	environment string,
	log *slog.Logger,
) *UseCase {
	return &UseCase{
		users:     users,
		ledger:    ledger,
		gens:      gens,
		adminLogs: adminLogs,
		enabled:   environment == "production",
		log:       log,
	}
}

// authorize проверяет право на админ-операции, ошибка чтения пользователя трактуется как «не админ»
func (u *UseCase) authorize(ctx context.Context, adminID int64) error {
	if !u.enabled {
		return domain.ErrAdminDisabled
	}

	user, err := u.users.GetByTelegramID(ctx, adminID)
	if err != nil {
		u.log.Warn("admin check failed, denying",
			"error", err,
			"admin_id", adminID,
		)
		return domain.ErrNotAdmin
	}
	if !user.IsAdmin() {
		return domain.ErrNotAdmin
	}

	return nil
}

// GrantCredits начисляет кредиты пользователю от имени администратора
func (u *UseCase) GrantCredits(ctx context.Context, adminID, targetID, amount int64) (int64, error) {
	if err := u.authorize(ctx, adminID); err != nil {
		return 0, err
	}

	if amount <= 0 || amount > MaxGrantAmount {
		return 0, fmt.Errorf("%w: must be in 1..%d, got %d", domain.ErrInvalidGrantAmount, MaxGrantAmount, amount)
	}

	entry := &domain.Transaction{
		UserID:      targetID,
		Type:        domain.TransactionTypeAdminGrant,
		Amount:      amount,
		Description: fmt.Sprintf("Начисление администратором %d", adminID),
	}

	newBalance, err := u.ledger.ApplyDelta(ctx, entry)
	if err != nil {
		return 0, fmt.Errorf("failed to grant credits: %w", err)
	}

	auditEntry := &domain.AdminLog{
		AdminID:      adminID,
		Action:       domain.AdminActionGrantCredits,
		TargetUserID: targetID,
		Details:      fmt.Sprintf("amount=%d new_balance=%d", amount, newBalance),
	}
	if err := u.adminLogs.Create(ctx, auditEntry); err != nil {
		// Начисление уже проведено, аудит его не откатывает
		u.log.Error("failed to write admin audit log",
			"error", err,
			"admin_id", adminID,
			"target_id", targetID,
		)
	}

	u.log.Info("admin granted credits",
		"admin_id", adminID,
		"target_id", targetID,
		"amount", amount,
		"new_balance", newBalance,
	)
	return newBalance, nil
}

// GetUserCredits возвращает баланс произвольного пользователя
func (u *UseCase) GetUserCredits(ctx context.Context, adminID, targetID int64) (int64, error) {
	if err := u.authorize(ctx, adminID); err != nil {
		return 0, err
	}

	balance, err := u.ledger.GetBalance(ctx, targetID)
	if err != nil {
		return 0, fmt.Errorf("failed to get user credits: %w", err)
	}
	return balance, nil
}

// Stats возвращает сводку по пользователям, кредитам и генерациям
func (u *UseCase) Stats(ctx context.Context, adminID int64) (*usecase.AdminStats, error) {
	if err := u.authorize(ctx, adminID); err != nil {
		return nil, err
	}

	users, err := u.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	credits, err := u.ledger.TotalCredits(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum credits: %w", err)
	}

	gens, err := u.gens.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count generations: %w", err)
	}

	return &usecase.AdminStats{
		TotalUsers:       users,
		TotalCredits:     credits,
		TotalGenerations: gens,
	}, nil
}

var _ usecase.IAdminUseCase = (*UseCase)(nil)
