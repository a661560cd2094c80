package usecase

import (
	"context"

	"github.com/St1cky1/roster/internal/entity"
	"github.com/St1cky1/roster/internal/repository"
	"github.com/sirupsen/logrus"
)

// PersonService - каждая операция выполняется в своей новой транзакции
type PersonService struct {
	tx      repository.TxManager
	persons repository.IPersonRepository
	audit   *auditor
	log     logrus.FieldLogger
}

func NewPersonService(
	tx repository.TxManager,
	persons repository.IPersonRepository,
	publisher AuditPublisher,
	clock Clock,
	log logrus.FieldLogger,
) *PersonService {
	return &PersonService{
		tx:      tx,
		persons: persons,
		audit:   newAuditor(publisher, clock, log),
		log:     log,
	}
}

// CreatePerson - уникальность DNI не проверяется
func (s *PersonService) CreatePerson(ctx context.Context, lastName, firstName, nationalID string) (*entity.Person, error) {
	person := &entity.Person{
		LastName:   lastName,
		FirstName:  firstName,
		NationalID: nationalID,
	}
	if err := entity.ValidatePerson(person); err != nil {
		observe("person", "create", err)
		return nil, err
	}

	var created *entity.Person
	err := s.tx.WithinTx(ctx, func(ctx context.Context, q repository.DBTX) error {
		var err error
		created, err = s.persons.Create(ctx, q, person)
		return err
	})
	observe("person", "create", err)
	if err != nil {
		return nil, err
	}

	s.log.WithField("person_id", created.ID).Info("person created")
	s.audit.send(entity.ActionCreate, entity.EntityPerson, created.ID, nil, personValues(created))
	return created, nil
}

func (s *PersonService) UpdatePerson(ctx context.Context, person *entity.Person) (*entity.Person, error) {
	if err := entity.ValidatePerson(person); err != nil {
		observe("person", "update", err)
		return nil, err
	}

	var old, updated *entity.Person
	err := s.tx.WithinTx(ctx, func(ctx context.Context, q repository.DBTX) error {
		var err error
		if old, err = s.persons.GetByID(ctx, q, person.ID); err != nil {
			return err
		}
		updated, err = s.persons.Update(ctx, q, person)
		return err
	})
	observe("person", "update", err)
	if err != nil {
		return nil, err
	}

	s.audit.send(entity.ActionUpdate, entity.EntityPerson, updated.ID, personValues(old), personValues(updated))
	return updated, nil
}

// DeletePerson - задачи удаленного человека остаются без ответственного
func (s *PersonService) DeletePerson(ctx context.Context, id int64) error {
	var old *entity.Person
	err := s.tx.WithinTx(ctx, func(ctx context.Context, q repository.DBTX) error {
		var err error
		if old, err = s.persons.GetByID(ctx, q, id); err != nil {
			return err
		}
		return s.persons.Delete(ctx, q, id)
	})
	observe("person", "delete", err)
	if err != nil {
		return err
	}

	s.log.WithField("person_id", id).Info("person deleted")
	s.audit.send(entity.ActionDelete, entity.EntityPerson, id, personValues(old), nil)
	return nil
}

func (s *PersonService) List(ctx context.Context, page entity.PageRequest) (entity.Page[entity.Person], error) {
	var result entity.Page[entity.Person]
	err := s.tx.WithinTx(ctx, func(ctx context.Context, q repository.DBTX) error {
		var err error
		result, err = s.persons.List(ctx, q, page)
		return err
	})
	return result, err
}

// Wait дожидается отправки аудита (graceful shutdown)
func (s *PersonService) Wait() {
	s.audit.wait()
}
