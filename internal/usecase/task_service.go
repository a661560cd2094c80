package usecase

import (
	"context"
	"time"

	"github.com/St1cky1/roster/internal/entity"
	"github.com/St1cky1/roster/internal/repository"
	"github.com/sirupsen/logrus"
)

// failDescription - описание, на котором CreateTask всегда падает.
// Нужно, чтобы проверить отображение ошибок в интерфейсе.
const failDescription = "fail"

type TaskService struct {
	tx    repository.TxManager
	tasks repository.ITaskRepository
	clock Clock
	audit *auditor
	log   logrus.FieldLogger
}

func NewTaskService(
	tx repository.TxManager,
	tasks repository.ITaskRepository,
	publisher AuditPublisher,
	clock Clock,
	log logrus.FieldLogger,
) *TaskService {
	return &TaskService{
		tx:    tx,
		tasks: tasks,
		clock: clock,
		audit: newAuditor(publisher, clock, log),
		log:   log,
	}
}

// CreateTask - person и dueDate необязательны
func (s *TaskService) CreateTask(ctx context.Context, person *entity.Person, description string, dueDate *time.Time) (*entity.Task, error) {
	if description == failDescription {
		observe("task", "create", entity.ErrIntentionalFailure)
		return nil, entity.ErrIntentionalFailure
	}

	task := &entity.Task{
		Person:      person,
		Description: description,
		CreatedAt:   s.clock.Now().Truncate(time.Microsecond), // точность timestamptz
		DueDate:     normalizeDate(dueDate),
		Done:        false,
	}
	if err := entity.ValidateTask(task); err != nil {
		observe("task", "create", err)
		return nil, err
	}

	var created *entity.Task
	err := s.tx.WithinTx(ctx, func(ctx context.Context, q repository.DBTX) error {
		var err error
		created, err = s.tasks.Create(ctx, q, task)
		return err
	})
	observe("task", "create", err)
	if err != nil {
		return nil, err
	}

	s.log.WithField("task_id", created.ID).Info("task created")
	s.audit.send(entity.ActionCreate, entity.EntityTask, created.ID, nil, taskValues(created))
	return created, nil
}

// UpdateTask - полная перезапись по id, дата создания сохраняется
func (s *TaskService) UpdateTask(ctx context.Context, task *entity.Task) (*entity.Task, error) {
	if err := entity.ValidateTask(task); err != nil {
		observe("task", "update", err)
		return nil, err
	}

	next := *task
	next.DueDate = normalizeDate(task.DueDate)

	var old, updated *entity.Task
	err := s.tx.WithinTx(ctx, func(ctx context.Context, q repository.DBTX) error {
		var err error
		if old, err = s.tasks.GetByID(ctx, q, task.ID); err != nil {
			return err
		}
		updated, err = s.tasks.Update(ctx, q, &next)
		return err
	})
	observe("task", "update", err)
	if err != nil {
		return nil, err
	}

	s.audit.send(entity.ActionUpdate, entity.EntityTask, updated.ID, taskValues(old), taskValues(updated))
	return updated, nil
}

// SetDone переключает только флаг done, остальные поля не меняются
func (s *TaskService) SetDone(ctx context.Context, id int64, done bool) (*entity.Task, error) {
	var old, updated *entity.Task
	err := s.tx.WithinTx(ctx, func(ctx context.Context, q repository.DBTX) error {
		var err error
		if old, err = s.tasks.GetByID(ctx, q, id); err != nil {
			return err
		}
		next := *old
		next.Done = done
		updated, err = s.tasks.Update(ctx, q, &next)
		return err
	})
	observe("task", "update", err)
	if err != nil {
		return nil, err
	}

	s.audit.send(entity.ActionUpdate, entity.EntityTask, id, taskValues(old), taskValues(updated))
	return updated, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id int64) error {
	var old *entity.Task
	err := s.tx.WithinTx(ctx, func(ctx context.Context, q repository.DBTX) error {
		var err error
		if old, err = s.tasks.GetByID(ctx, q, id); err != nil {
			return err
		}
		return s.tasks.Delete(ctx, q, id)
	})
	observe("task", "delete", err)
	if err != nil {
		return err
	}

	s.log.WithField("task_id", id).Info("task deleted")
	s.audit.send(entity.ActionDelete, entity.EntityTask, id, taskValues(old), nil)
	return nil
}

// GetTask нужен для диалога подтверждения удаления
func (s *TaskService) GetTask(ctx context.Context, id int64) (*entity.Task, error) {
	var task *entity.Task
	err := s.tx.WithinTx(ctx, func(ctx context.Context, q repository.DBTX) error {
		var err error
		task, err = s.tasks.GetByID(ctx, q, id)
		return err
	})
	return task, err
}

func (s *TaskService) List(ctx context.Context, page entity.PageRequest) (entity.Page[entity.Task], error) {
	var result entity.Page[entity.Task]
	err := s.tx.WithinTx(ctx, func(ctx context.Context, q repository.DBTX) error {
		var err error
		result, err = s.tasks.List(ctx, q, page)
		return err
	})
	return result, err
}

func (s *TaskService) Wait() {
	s.audit.wait()
}

func normalizeDate(d *time.Time) *time.Time {
	if d == nil {
		return nil
	}
	date := entity.DateOf(*d)
	return &date
}
