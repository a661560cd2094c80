package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/St1cky1/roster/internal/entity"
	"github.com/jackc/pgx/v5"
)

type PersonRepository struct{}

func NewPersonRepository() *PersonRepository {
	return &PersonRepository{}
}

func (r *PersonRepository) Create(ctx context.Context, q DBTX, person *entity.Person) (*entity.Person, error) {
	query := `
	INSERT INTO person (last_name, first_name, national_id)
	VALUES ($1, $2, $3)
	RETURNING id, last_name, first_name, national_id
	`

	var created entity.Person
	err := q.QueryRow(ctx, query,
		person.LastName,
		person.FirstName,
		person.NationalID,
	).Scan(
		&created.ID,
		&created.LastName,
		&created.FirstName,
		&created.NationalID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert person: %w", err)
	}

	return &created, nil
}

func (r *PersonRepository) GetByID(ctx context.Context, q DBTX, id int64) (*entity.Person, error) {
	query := `
	SELECT id, last_name, first_name, national_id
	FROM person
	WHERE id = $1
	`

	var person entity.Person
	err := q.QueryRow(ctx, query, id).Scan(
		&person.ID,
		&person.LastName,
		&person.FirstName,
		&person.NationalID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrPersonNotFound
		}
		return nil, fmt.Errorf("get person %d: %w", id, err)
	}

	return &person, nil
}

// Update - перезаписываем запись целиком по id
func (r *PersonRepository) Update(ctx context.Context, q DBTX, person *entity.Person) (*entity.Person, error) {
	query := `
	UPDATE person
	SET last_name = $1, first_name = $2, national_id = $3
	WHERE id = $4
	RETURNING id, last_name, first_name, national_id
	`

	var updated entity.Person
	err := q.QueryRow(ctx, query,
		person.LastName,
		person.FirstName,
		person.NationalID,
		person.ID,
	).Scan(
		&updated.ID,
		&updated.LastName,
		&updated.FirstName,
		&updated.NationalID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrPersonNotFound
		}
		return nil, fmt.Errorf("update person %d: %w", person.ID, err)
	}

	return &updated, nil
}

// Delete - задачи этого человека остаются без ответственного (ON DELETE SET NULL)
func (r *PersonRepository) Delete(ctx context.Context, q DBTX, id int64) error {
	tag, err := q.Exec(ctx, `DELETE FROM person WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete person %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrPersonNotFound
	}
	return nil
}

func (r *PersonRepository) List(ctx context.Context, q DBTX, page entity.PageRequest) (entity.Page[entity.Person], error) {
	page = page.Normalize()

	orderBy, err := page.OrderBy(entity.PersonSortable, "id")
	if err != nil {
		return entity.Page[entity.Person]{}, err
	}

	limit, args := pageClause(page, 1)
	query := `
	SELECT id, last_name, first_name, national_id
	FROM person
	ORDER BY ` + orderBy + limit

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return entity.Page[entity.Person]{}, fmt.Errorf("list persons: %w", err)
	}
	defer rows.Close()

	var persons []entity.Person
	for rows.Next() {
		var p entity.Person
		if err := rows.Scan(&p.ID, &p.LastName, &p.FirstName, &p.NationalID); err != nil {
			return entity.Page[entity.Person]{}, fmt.Errorf("scan person: %w", err)
		}
		persons = append(persons, p)
	}
	if err := rows.Err(); err != nil {
		return entity.Page[entity.Person]{}, fmt.Errorf("list persons: %w", err)
	}

	return buildPage(persons, page), nil
}
