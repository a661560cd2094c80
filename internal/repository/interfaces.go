package repository

import (
	"context"

	"github.com/St1cky1/roster/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX - общий интерфейс для *pgxpool.Pool и pgx.Tx.
// Репозитории не держат соединение, его передает вызывающий (unit of work).
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxManager открывает новую транзакцию на каждый вызов WithinTx.
// fn вернул nil - commit, ошибка или panic - rollback.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, q DBTX) error) error
}

// IPersonRepository - интерфейс для PersonRepository
type IPersonRepository interface {
	Create(ctx context.Context, q DBTX, person *entity.Person) (*entity.Person, error)
	GetByID(ctx context.Context, q DBTX, id int64) (*entity.Person, error)
	Update(ctx context.Context, q DBTX, person *entity.Person) (*entity.Person, error)
	Delete(ctx context.Context, q DBTX, id int64) error
	List(ctx context.Context, q DBTX, page entity.PageRequest) (entity.Page[entity.Person], error)
}

// ITaskRepository - интерфейс для TaskRepository
type ITaskRepository interface {
	Create(ctx context.Context, q DBTX, task *entity.Task) (*entity.Task, error)
	GetByID(ctx context.Context, q DBTX, id int64) (*entity.Task, error)
	Update(ctx context.Context, q DBTX, task *entity.Task) (*entity.Task, error)
	Delete(ctx context.Context, q DBTX, id int64) error
	List(ctx context.Context, q DBTX, page entity.PageRequest) (entity.Page[entity.Task], error)
}

// IAuditRepository - интерфейс для AuditRepository
type IAuditRepository interface {
	Create(ctx context.Context, q DBTX, audit *entity.Audit) error
	ListByEntity(ctx context.Context, q DBTX, entityType entity.EntityType, entityID int64) ([]entity.Audit, error)
}
