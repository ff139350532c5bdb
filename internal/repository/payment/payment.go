package paymentRepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"log/slog"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
	"github.com/admin/tg-bots/veo-bot/internal/ports/persistence"
	ports "github.com/admin/tg-bots/veo-bot/internal/ports/repository"
	"github.com/google/uuid"
)

type paymentColumns struct {
	TableName    string
	ID           string
	UserID       string
	PackageID    string
	Amount       string
	Currency     string
	Method       string
	ProviderID   string
	Status       string
	ErrorMessage string
	CreatedAt    string
	SucceededAt  string
}

type Repository struct {
	db      persistence.Persistence
	Log     *slog.Logger
	columns paymentColumns
}

// New создаёт новый репозиторий платёжных намерений
func New(db persistence.Persistence, log *slog.Logger) ports.IPaymentRepo {
	return &Repository{
		db:  db,
		Log: log,
		columns: paymentColumns{
			TableName:    "payments",
			ID:           "id",
			UserID:       "user_id",
			PackageID:    "package_id",
			Amount:       "amount",
			Currency:     "currency",
			Method:       "method",
			ProviderID:   "provider_id",
			Status:       "status",
			ErrorMessage: "error_message",
			CreatedAt:    "created_at",
			SucceededAt:  "succeeded_at",
		},
	}
}

// allColumns возвращает строку со всеми колонками (11 полей)
func (r *Repository) allColumns() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
		r.columns.ID,
		r.columns.UserID,
		r.columns.PackageID,
		r.columns.Amount,
		r.columns.Currency,
		r.columns.Method,
		r.columns.ProviderID,
		r.columns.Status,
		r.columns.ErrorMessage,
		r.columns.CreatedAt,
		r.columns.SucceededAt,
	)
}

// Create создаёт новое платёжное намерение
func (r *Repository) Create(ctx context.Context, payment *domain.Payment) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s`,
		r.columns.TableName,
		r.columns.ID,
		r.columns.UserID,
		r.columns.PackageID,
		r.columns.Amount,
		r.columns.Currency,
		r.columns.Method,
		r.columns.Status,
		r.columns.CreatedAt,
	)

	err := r.db.QueryRow(ctx, query,
		payment.ID,
		payment.UserID,
		payment.PackageID,
		payment.Amount,
		payment.Currency,
		string(payment.Method),
		string(payment.Status),
	).Scan(&payment.CreatedAt)
	if err != nil {
		r.Log.Error("failed to create payment",
			"error", err,
			"payment_id", payment.ID,
			"user_id", payment.UserID,
		)
		return fmt.Errorf("failed to create payment: %w", err)
	}

	r.Log.Debug("payment created",
		"payment_id", payment.ID,
		"user_id", payment.UserID,
		"amount", payment.Amount,
	)
	return nil
}

// GetByID получает платёж по внутреннему ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	var payment domain.Payment

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.ID,
	)

	err := r.db.Get(ctx, &payment, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.Log.Warn("payment not found", "payment_id", id)
			return nil, fmt.Errorf("payment not found: %w", err)
		}
		r.Log.Error("failed to get payment",
			"error", err,
			"payment_id", id,
		)
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return &payment, nil
}

// GetByProviderID получает платёж по ID провайдера
func (r *Repository) GetByProviderID(ctx context.Context, providerID string) (*domain.Payment, error) {
	var payment domain.Payment

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.ProviderID,
	)

	err := r.db.Get(ctx, &payment, query, providerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.Log.Warn("payment not found by provider_id", "provider_id", providerID)
			return nil, fmt.Errorf("payment not found: %w", err)
		}
		r.Log.Error("failed to get payment by provider_id",
			"error", err,
			"provider_id", providerID,
		)
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return &payment, nil
}

// SetProviderID сохраняет id платежа, выданный провайдером
func (r *Repository) SetProviderID(ctx context.Context, id uuid.UUID, providerID string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1 WHERE %s = $2`,
		r.columns.TableName,
		r.columns.ProviderID,
		r.columns.ID,
	)

	err := r.db.Exec(ctx, query, providerID, id)
	if err != nil {
		r.Log.Error("failed to set provider_id",
			"error", err,
			"payment_id", id,
			"provider_id", providerID,
		)
		return fmt.Errorf("failed to set provider_id: %w", err)
	}

	return nil
}

// UpdateStatus обновляет статус платежа
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus, errorMessage *string) error {
	var succeededAt *time.Time
	if status == domain.PaymentStatusSucceeded {
		now := time.Now()
		succeededAt = &now
	}

	query := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = COALESCE($2, %s), %s = $3 WHERE %s = $4`,
		r.columns.TableName,
		r.columns.Status,
		r.columns.SucceededAt, r.columns.SucceededAt,
		r.columns.ErrorMessage,
		r.columns.ID,
	)

	err := r.db.Exec(ctx, query, string(status), succeededAt, errorMessage, id)
	if err != nil {
		r.Log.Error("failed to update payment status",
			"error", err,
			"payment_id", id,
			"status", status,
		)
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	r.Log.Debug("payment status updated",
		"payment_id", id,
		"status", status,
	)
	return nil
}

// ListPendingSince возвращает незакрытые платежи не старше порога.
// Платежи без provider_id пропускаются: их ещё нечего сверять
func (r *Repository) ListPendingSince(ctx context.Context, since time.Time) ([]domain.Payment, error) {
	var payments []domain.Payment

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s = $1 AND %s IS NOT NULL AND %s > $2
		ORDER BY %s`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.Status,
		r.columns.ProviderID,
		r.columns.CreatedAt,
		r.columns.CreatedAt,
	)

	err := r.db.Select(ctx, &payments, query, string(domain.PaymentStatusPending), since)
	if err != nil {
		r.Log.Error("failed to list pending payments", "error", err)
		return nil, fmt.Errorf("failed to list pending payments: %w", err)
	}

	return payments, nil
}
