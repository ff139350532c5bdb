package domain

import "time"

// UserStatus статус пользователя в системе
type UserStatus string

const (
	UserStatusRegular UserStatus = "regular"
	UserStatusAdmin   UserStatus = "admin"
	UserStatusBanned  UserStatus = "banned"
)

func (s UserStatus) IsValid() bool {
	switch s {
	case UserStatusRegular, UserStatusAdmin, UserStatusBanned:
		return true
	default:
		return false
	}
}

// User пользователь бота, идентификатором служит Telegram ID.
// Credits меняется только через ledger.ApplyDelta
type User struct {
	TelegramID int64      `json:"telegram_id" db:"telegram_id"`
	Username   *string    `json:"username,omitempty" db:"username"`
	FirstName  *string    `json:"first_name,omitempty" db:"first_name"`
	LastName   *string    `json:"last_name,omitempty" db:"last_name"`
	Credits    int64      `json:"credits" db:"credits"`
	Status     UserStatus `json:"status" db:"status"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Status == UserStatusAdmin
}

func (u *User) IsBanned() bool {
	return u != nil && u.Status == UserStatusBanned
}
