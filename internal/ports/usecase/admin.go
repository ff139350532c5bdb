package usecase

import (
	"context"
)

// IAdminUseCase интерфейс административных операций.
// Любая операция начинается с проверки роли по БД, при сомнении отказ
type IAdminUseCase interface {
	// GrantCredits начисляет кредиты пользователю от имени администратора
	GrantCredits(ctx context.Context, adminID, targetID, amount int64) (newBalance int64, err error)
	// GetUserCredits возвращает баланс произвольного пользователя
	GetUserCredits(ctx context.Context, adminID, targetID int64) (int64, error)
	// Stats возвращает сводку по пользователям, кредитам и генерациям
	Stats(ctx context.Context, adminID int64) (*AdminStats, error)
}

// AdminStats сводка для админ-панели
type AdminStats struct {
	TotalUsers       int64
	TotalCredits     int64
	TotalGenerations int64
}
