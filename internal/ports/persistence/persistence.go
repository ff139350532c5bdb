package persistence

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Persistence интерфейс доступа к базе данных. Реализуется и подключением,
// и открытой транзакцией, поэтому репозитории могут работать поверх обоих
type Persistence interface {
	Get(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Select(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Exec(ctx context.Context, query string, args ...interface{}) error
	ExecWithResult(ctx context.Context, query string, args ...interface{}) (int64, error)
	NamedExec(ctx context.Context, query string, arg interface{}) error
	NamedExecWithResult(ctx context.Context, query string, arg interface{}) (int64, error)
	QueryRow(ctx context.Context, query string, args ...interface{}) *sqlx.Row
}

// Transaction открытая транзакция БД
type Transaction interface {
	Persistence
	Commit() error
	Rollback() error
}

// TxManager умеет открывать транзакции и выполнять функции в транзакции
// с автоматическим commit/rollback
type TxManager interface {
	BeginTx(ctx context.Context) (Transaction, error)
	WithTransaction(ctx context.Context, fn func(context.Context, Transaction) error) error
}
