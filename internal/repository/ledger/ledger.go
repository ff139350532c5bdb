package ledgerRepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"log/slog"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
	"github.com/admin/tg-bots/veo-bot/internal/ports/persistence"
	ports "github.com/admin/tg-bots/veo-bot/internal/ports/repository"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolationCode = "23505"
const foreignKeyViolationCode = "23503"

type ledgerColumns struct {
	TableName     string
	ID            string
	UserID        string
	Type          string
	Amount        string
	Description   string
	PaymentMethod string
	PaymentID     string
	CreatedAt     string
}

type usersColumns struct {
	TableName  string
	TelegramID string
	Credits    string
	UpdatedAt  string
}

// DB объединяет доступ к БД и открытие транзакций:
// проводка и сдвиг баланса обязаны коммититься вместе
type DB interface {
	persistence.Persistence
	persistence.TxManager
}

type Repository struct {
	db      DB
	Log     *slog.Logger
	columns ledgerColumns
	users   usersColumns
}

// New создаёт новый репозиторий журнала кредитов
func New(db DB, log *slog.Logger) ports.ILedgerRepo {
	return &Repository{
		db:  db,
		Log: log,
		columns: ledgerColumns{
			TableName:     "transactions",
			ID:            "id",
			UserID:        "user_id",
			Type:          "type",
			Amount:        "amount",
			Description:   "description",
			PaymentMethod: "payment_method",
			PaymentID:     "payment_id",
			CreatedAt:     "created_at",
		},
		users: usersColumns{
			TableName:  "users",
			TelegramID: "telegram_id",
			Credits:    "credits",
			UpdatedAt:  "updated_at",
		},
	}
}

// allColumns возвращает строку со всеми колонками (8 полей)
func (r *Repository) allColumns() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s",
		r.columns.ID,
		r.columns.UserID,
		r.columns.Type,
		r.columns.Amount,
		r.columns.Description,
		r.columns.PaymentMethod,
		r.columns.PaymentID,
		r.columns.CreatedAt,
	)
}

// ApplyDelta атомарно записывает проводку и сдвигает баланс пользователя.
// Повтор payment_id валится на уникальном индексе и возвращается как
// domain.ErrDuplicatePayment, недостаток средств ловится условием в UPDATE
func (r *Repository) ApplyDelta(ctx context.Context, entry *domain.Transaction) (int64, error) {
	var newBalance int64

	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx persistence.Transaction) error {
		insertQuery := fmt.Sprintf(
			`INSERT INTO %s (%s, %s, %s, %s, %s, %s) VALUES ($1, $2, $3, $4, $5, $6) RETURNING %s, %s`,
			r.columns.TableName,
			r.columns.UserID,
			r.columns.Type,
			r.columns.Amount,
			r.columns.Description,
			r.columns.PaymentMethod,
			r.columns.PaymentID,
			r.columns.ID,
			r.columns.CreatedAt,
		)

		err := tx.QueryRow(ctx, insertQuery,
			entry.UserID,
			string(entry.Type),
			entry.Amount,
			entry.Description,
			entry.PaymentMethod,
			entry.PaymentID,
		).Scan(&entry.ID, &entry.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert ledger entry: %w", err)
		}

		updateQuery := fmt.Sprintf(
			`UPDATE %s SET %s = %s + $1, %s = NOW() WHERE %s = $2 AND %s + $1 >= 0 RETURNING %s`,
			r.users.TableName,
			r.users.Credits, r.users.Credits,
			r.users.UpdatedAt,
			r.users.TelegramID,
			r.users.Credits,
			r.users.Credits,
		)

		err = tx.QueryRow(ctx, updateQuery, entry.Amount, entry.UserID).Scan(&newBalance)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				// Либо пользователя нет, либо баланс ушёл бы в минус
				var exists bool
				existsQuery := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`,
					r.users.TableName, r.users.TelegramID)
				if checkErr := tx.Get(ctx, &exists, existsQuery, entry.UserID); checkErr != nil {
					return fmt.Errorf("failed to check user existence: %w", checkErr)
				}
				if !exists {
					return domain.ErrUserNotFound
				}
				return domain.ErrInsufficientCredits
			}
			return fmt.Errorf("failed to update balance: %w", err)
		}

		return nil
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case uniqueViolationCode:
				r.Log.Warn("duplicate payment rejected by ledger",
					"user_id", entry.UserID,
					"payment_id", entry.PaymentID,
				)
				return 0, domain.ErrDuplicatePayment
			case foreignKeyViolationCode:
				return 0, domain.ErrUserNotFound
			}
		}
		if errors.Is(err, domain.ErrInsufficientCredits) || errors.Is(err, domain.ErrUserNotFound) {
			return 0, err
		}
		r.Log.Error("failed to apply ledger delta",
			"error", err,
			"user_id", entry.UserID,
			"amount", entry.Amount,
		)
		return 0, fmt.Errorf("failed to apply ledger delta: %w", err)
	}

	r.Log.Debug("ledger delta applied",
		"user_id", entry.UserID,
		"amount", entry.Amount,
		"type", entry.Type,
		"new_balance", newBalance,
	)
	return newBalance, nil
}

// GetBalance возвращает текущий баланс пользователя
func (r *Repository) GetBalance(ctx context.Context, telegramID int64) (int64, error) {
	var balance int64

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		r.users.Credits,
		r.users.TableName,
		r.users.TelegramID,
	)

	err := r.db.Get(ctx, &balance, query, telegramID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrUserNotFound
		}
		r.Log.Error("failed to get balance",
			"error", err,
			"user_id", telegramID,
		)
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}

	return balance, nil
}

// TotalCredits возвращает суммарный баланс всех пользователей
func (r *Repository) TotalCredits(ctx context.Context) (int64, error) {
	var total int64

	query := fmt.Sprintf(`SELECT COALESCE(SUM(%s), 0) FROM %s`,
		r.users.Credits,
		r.users.TableName,
	)

	err := r.db.Get(ctx, &total, query)
	if err != nil {
		r.Log.Error("failed to sum credits", "error", err)
		return 0, fmt.Errorf("failed to sum credits: %w", err)
	}

	return total, nil
}

// PaymentExists проверяет, был ли платёж уже проведён.
// Только оптимизация для быстрого ответа: гарантию даёт уникальный индекс
func (r *Repository) PaymentExists(ctx context.Context, paymentID string) (bool, error) {
	var exists bool

	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`,
		r.columns.TableName,
		r.columns.PaymentID,
	)

	err := r.db.Get(ctx, &exists, query, paymentID)
	if err != nil {
		r.Log.Error("failed to check payment existence",
			"error", err,
			"payment_id", paymentID,
		)
		return false, fmt.Errorf("failed to check payment existence: %w", err)
	}

	return exists, nil
}

// ListByUser возвращает последние проводки пользователя
func (r *Repository) ListByUser(ctx context.Context, telegramID int64, limit int) ([]domain.Transaction, error) {
	var entries []domain.Transaction

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s DESC LIMIT $2`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.UserID,
		r.columns.CreatedAt,
	)

	err := r.db.Select(ctx, &entries, query, telegramID, limit)
	if err != nil {
		r.Log.Error("failed to list ledger entries",
			"error", err,
			"user_id", telegramID,
		)
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}

	return entries, nil
}
