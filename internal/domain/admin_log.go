package domain

import "time"

// AdminAction тип административного действия
type AdminAction string

const (
	AdminActionGrantCredits AdminAction = "grant_credits"
	AdminActionSetStatus    AdminAction = "set_status"
)

// AdminLog запись журнала административных действий
type AdminLog struct {
	ID           int64       `db:"id"`
	AdminID      int64       `db:"admin_id"`
	Action       AdminAction `db:"action"`
	TargetUserID int64       `db:"target_user_id"`
	Details      string      `db:"details"`
	CreatedAt    time.Time   `db:"created_at"`
}
