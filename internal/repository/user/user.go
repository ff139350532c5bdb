package userRepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"log/slog"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
	"github.com/admin/tg-bots/veo-bot/internal/ports/persistence"
	ports "github.com/admin/tg-bots/veo-bot/internal/ports/repository"
)

type userColumns struct {
	TableName  string
	TelegramID string
	Username   string
	FirstName  string
	LastName   string
	Credits    string
	Status     string
	CreatedAt  string
	UpdatedAt  string
}

type Repository struct {
	db      persistence.Persistence
	Log     *slog.Logger
	columns userColumns
}

// New создаёт новый репозиторий для работы с пользователями
func New(db persistence.Persistence, log *slog.Logger) ports.IUserRepo {
	return &Repository{
		db:  db,
		Log: log,
		columns: userColumns{
			TableName:  "users",
			TelegramID: "telegram_id",
			Username:   "username",
			FirstName:  "first_name",
			LastName:   "last_name",
			Credits:    "credits",
			Status:     "status",
			CreatedAt:  "created_at",
			UpdatedAt:  "updated_at",
		},
	}
}

// allColumns возвращает строку со всеми колонками (8 полей)
func (r *Repository) allColumns() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s",
		r.columns.TelegramID,
		r.columns.Username,
		r.columns.FirstName,
		r.columns.LastName,
		r.columns.Credits,
		r.columns.Status,
		r.columns.CreatedAt,
		r.columns.UpdatedAt,
	)
}

// Create создаёт нового пользователя
func (r *Repository) Create(ctx context.Context, user *domain.User) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s) VALUES ($1, $2, $3, $4, $5)`,
		r.columns.TableName,
		r.columns.TelegramID,
		r.columns.Username,
		r.columns.FirstName,
		r.columns.LastName,
		r.columns.Status,
	)

	err := r.db.Exec(ctx, query,
		user.TelegramID,
		user.Username,
		user.FirstName,
		user.LastName,
		string(user.Status),
	)
	if err != nil {
		r.Log.Error("failed to create user",
			"error", err,
			"telegram_id", user.TelegramID,
		)
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.Log.Debug("user created successfully", "telegram_id", user.TelegramID)
	return nil
}

// GetByTelegramID получает пользователя по Telegram ID
func (r *Repository) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	var user domain.User

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.TelegramID,
	)

	err := r.db.Get(ctx, &user, query, telegramID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		r.Log.Error("failed to get user",
			"error", err,
			"telegram_id", telegramID,
		)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// GetOrCreate возвращает пользователя, создавая запись при первом обращении.
// Профильные поля обновляются на каждом обращении: username в Telegram мутабелен
func (r *Repository) GetOrCreate(ctx context.Context, user *domain.User) (*domain.User, error) {
	var result domain.User

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (%s) DO UPDATE SET
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = NOW()
		RETURNING %s`,
		r.columns.TableName,
		r.columns.TelegramID,
		r.columns.Username,
		r.columns.FirstName,
		r.columns.LastName,
		r.columns.TelegramID,
		r.columns.Username, r.columns.Username,
		r.columns.FirstName, r.columns.FirstName,
		r.columns.LastName, r.columns.LastName,
		r.columns.UpdatedAt,
		r.allColumns(),
	)

	err := r.db.Get(ctx, &result, query,
		user.TelegramID,
		user.Username,
		user.FirstName,
		user.LastName,
	)
	if err != nil {
		r.Log.Error("failed to get or create user",
			"error", err,
			"telegram_id", user.TelegramID,
		)
		return nil, fmt.Errorf("failed to get or create user: %w", err)
	}

	return &result, nil
}

// UpdateProfile обновляет профильные поля пользователя
func (r *Repository) UpdateProfile(ctx context.Context, user *domain.User) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = $2, %s = $3, %s = NOW() WHERE %s = $4`,
		r.columns.TableName,
		r.columns.Username,
		r.columns.FirstName,
		r.columns.LastName,
		r.columns.UpdatedAt,
		r.columns.TelegramID,
	)

	err := r.db.Exec(ctx, query,
		user.Username,
		user.FirstName,
		user.LastName,
		user.TelegramID,
	)
	if err != nil {
		r.Log.Error("failed to update user profile",
			"error", err,
			"telegram_id", user.TelegramID,
		)
		return fmt.Errorf("failed to update user profile: %w", err)
	}

	return nil
}

// SetStatus меняет статус пользователя (regular/admin/banned)
func (r *Repository) SetStatus(ctx context.Context, telegramID int64, status domain.UserStatus) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = NOW() WHERE %s = $2`,
		r.columns.TableName,
		r.columns.Status,
		r.columns.UpdatedAt,
		r.columns.TelegramID,
	)

	rows, err := r.db.ExecWithResult(ctx, query, string(status), telegramID)
	if err != nil {
		r.Log.Error("failed to set user status",
			"error", err,
			"telegram_id", telegramID,
			"status", status,
		)
		return fmt.Errorf("failed to set user status: %w", err)
	}
	if rows == 0 {
		return domain.ErrUserNotFound
	}

	r.Log.Info("user status changed",
		"telegram_id", telegramID,
		"status", status,
	)
	return nil
}

// Count возвращает общее количество пользователей
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64

	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.columns.TableName)

	if err := r.db.Get(ctx, &count, query); err != nil {
		r.Log.Error("failed to count users", "error", err)
		return 0, fmt.Errorf("failed to count users: %w", err)
	}

	return count, nil
}

// GetByTelegramIDTx получает пользователя в открытой транзакции
func (r *Repository) GetByTelegramIDTx(ctx context.Context, tx persistence.Transaction, telegramID int64) (*domain.User, error) {
	var user domain.User

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.TelegramID,
	)

	err := tx.Get(ctx, &user, query, telegramID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user in tx: %w", err)
	}

	return &user, nil
}
