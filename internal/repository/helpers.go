package repository

import (
	"errors"
	"strconv"

	"github.com/St1cky1/roster/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pageClause возвращает LIMIT/OFFSET. Берем на одну строку больше, чтобы узнать HasNext.
func pageClause(page entity.PageRequest, argIndex int) (string, []any) {
	if page.Unpaged() {
		return "", nil
	}
	return " LIMIT $" + strconv.Itoa(argIndex) + " OFFSET $" + strconv.Itoa(argIndex+1),
		[]any{page.Size + 1, page.Offset()}
}

func buildPage[T any](items []T, page entity.PageRequest) entity.Page[T] {
	result := entity.Page[T]{
		Number: page.Page,
		Size:   page.Size,
	}
	if !page.Unpaged() && len(items) > page.Size {
		items = items[:page.Size]
		result.HasNext = true
	}
	if items == nil {
		items = []T{}
	}
	result.Items = items
	return result
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// ответственный удален или не существует
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
