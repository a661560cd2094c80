package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/St1cky1/roster/internal/entity"
	"github.com/jackc/pgx/v5"
)

const taskSelect = `
	SELECT t.id, t.description, t.created_at, t.due_date, t.done,
	       p.id, p.last_name, p.first_name, p.national_id
	FROM task t
	LEFT JOIN person p ON p.id = t.person_id
`

type TaskRepository struct{}

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{}
}

func (r *TaskRepository) Create(ctx context.Context, q DBTX, task *entity.Task) (*entity.Task, error) {
	query := `
	INSERT INTO task (description, created_at, due_date, done, person_id)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, created_at
	`

	created := *task
	err := q.QueryRow(ctx, query,
		task.Description,
		task.CreatedAt,
		task.DueDate,
		task.Done,
		task.PersonID(),
	).Scan(
		&created.ID,
		&created.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, entity.ErrPersonNotFound
		}
		return nil, fmt.Errorf("insert task: %w", err)
	}

	return &created, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, q DBTX, id int64) (*entity.Task, error) {
	task, err := scanTask(q.QueryRow(ctx, taskSelect+` WHERE t.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return task, nil
}

// Update - полная перезапись по id. created_at не меняется никогда.
func (r *TaskRepository) Update(ctx context.Context, q DBTX, task *entity.Task) (*entity.Task, error) {
	query := `
	UPDATE task
	SET description = $1, due_date = $2, done = $3, person_id = $4
	WHERE id = $5
	RETURNING created_at
	`

	updated := *task
	err := q.QueryRow(ctx, query,
		task.Description,
		task.DueDate,
		task.Done,
		task.PersonID(),
		task.ID,
	).Scan(&updated.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrTaskNotFound
		}
		if isForeignKeyViolation(err) {
			return nil, entity.ErrPersonNotFound
		}
		return nil, fmt.Errorf("update task %d: %w", task.ID, err)
	}

	return &updated, nil
}

// Delete - удаление задачи
func (r *TaskRepository) Delete(ctx context.Context, q DBTX, id int64) error {
	tag, err := q.Exec(ctx, `DELETE FROM task WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrTaskNotFound
	}
	return nil
}

// List - страница задач вместе с ответственными
func (r *TaskRepository) List(ctx context.Context, q DBTX, page entity.PageRequest) (entity.Page[entity.Task], error) {
	page = page.Normalize()

	orderBy, err := page.OrderBy(entity.TaskSortable, "t.id")
	if err != nil {
		return entity.Page[entity.Task]{}, err
	}

	limit, args := pageClause(page, 1)
	rows, err := q.Query(ctx, taskSelect+` ORDER BY `+orderBy+limit, args...)
	if err != nil {
		return entity.Page[entity.Task]{}, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []entity.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return entity.Page[entity.Task]{}, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return entity.Page[entity.Task]{}, fmt.Errorf("list tasks: %w", err)
	}

	return buildPage(tasks, page), nil
}

func scanTask(row pgx.Row) (*entity.Task, error) {
	var (
		task       entity.Task
		personID   *int64
		lastName   *string
		firstName  *string
		nationalID *string
	)
	err := row.Scan(
		&task.ID,
		&task.Description,
		&task.CreatedAt,
		&task.DueDate,
		&task.Done,
		&personID,
		&lastName,
		&firstName,
		&nationalID,
	)
	if err != nil {
		return nil, err
	}

	if personID != nil {
		task.Person = &entity.Person{
			ID:         *personID,
			LastName:   deref(lastName),
			FirstName:  deref(firstName),
			NationalID: deref(nationalID),
		}
	}
	return &task, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
