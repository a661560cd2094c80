package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/St1cky1/roster/internal/entity"
	"github.com/St1cky1/roster/internal/repository"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

// fakeTx - TxManager без базы, считает commit/rollback
type fakeTx struct {
	begun      int
	committed  int
	rolledBack int
}

var _ repository.TxManager = (*fakeTx)(nil)

func (f *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context, q repository.DBTX) error) error {
	f.begun++
	if err := fn(ctx, nil); err != nil {
		f.rolledBack++
		return err
	}
	f.committed++
	return nil
}

// MockTaskRepository - мок для ITaskRepository
type MockTaskRepository struct {
	CreateFunc  func(ctx context.Context, task *entity.Task) (*entity.Task, error)
	GetByIDFunc func(ctx context.Context, id int64) (*entity.Task, error)
	UpdateFunc  func(ctx context.Context, task *entity.Task) (*entity.Task, error)
	DeleteFunc  func(ctx context.Context, id int64) error
	ListFunc    func(ctx context.Context, page entity.PageRequest) (entity.Page[entity.Task], error)
}

var _ repository.ITaskRepository = (*MockTaskRepository)(nil)

func (m *MockTaskRepository) Create(ctx context.Context, _ repository.DBTX, task *entity.Task) (*entity.Task, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, task)
	}
	return nil, nil
}

func (m *MockTaskRepository) GetByID(ctx context.Context, _ repository.DBTX, id int64) (*entity.Task, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, entity.ErrTaskNotFound
}

func (m *MockTaskRepository) Update(ctx context.Context, _ repository.DBTX, task *entity.Task) (*entity.Task, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, task)
	}
	return nil, nil
}

func (m *MockTaskRepository) Delete(ctx context.Context, _ repository.DBTX, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockTaskRepository) List(ctx context.Context, _ repository.DBTX, page entity.PageRequest) (entity.Page[entity.Task], error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, page)
	}
	return entity.Page[entity.Task]{}, nil
}

// MockPersonRepository - мок для IPersonRepository
type MockPersonRepository struct {
	CreateFunc  func(ctx context.Context, person *entity.Person) (*entity.Person, error)
	GetByIDFunc func(ctx context.Context, id int64) (*entity.Person, error)
	UpdateFunc  func(ctx context.Context, person *entity.Person) (*entity.Person, error)
	DeleteFunc  func(ctx context.Context, id int64) error
	ListFunc    func(ctx context.Context, page entity.PageRequest) (entity.Page[entity.Person], error)
}

var _ repository.IPersonRepository = (*MockPersonRepository)(nil)

func (m *MockPersonRepository) Create(ctx context.Context, _ repository.DBTX, person *entity.Person) (*entity.Person, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, person)
	}
	return nil, nil
}

func (m *MockPersonRepository) GetByID(ctx context.Context, _ repository.DBTX, id int64) (*entity.Person, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, entity.ErrPersonNotFound
}

func (m *MockPersonRepository) Update(ctx context.Context, _ repository.DBTX, person *entity.Person) (*entity.Person, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, person)
	}
	return nil, nil
}

func (m *MockPersonRepository) Delete(ctx context.Context, _ repository.DBTX, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockPersonRepository) List(ctx context.Context, _ repository.DBTX, page entity.PageRequest) (entity.Page[entity.Person], error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, page)
	}
	return entity.Page[entity.Person]{}, nil
}

// memPersonRepo хранит записи в памяти в порядке вставки
type memPersonRepo struct {
	nextID int64
	rows   map[int64]entity.Person
}

func newMemPersonRepo() *memPersonRepo {
	return &memPersonRepo{rows: map[int64]entity.Person{}}
}

func (r *memPersonRepo) Create(_ context.Context, _ repository.DBTX, p *entity.Person) (*entity.Person, error) {
	r.nextID++
	created := *p
	created.ID = r.nextID
	r.rows[created.ID] = created
	return &created, nil
}

func (r *memPersonRepo) GetByID(_ context.Context, _ repository.DBTX, id int64) (*entity.Person, error) {
	p, ok := r.rows[id]
	if !ok {
		return nil, entity.ErrPersonNotFound
	}
	return &p, nil
}

func (r *memPersonRepo) Update(_ context.Context, _ repository.DBTX, p *entity.Person) (*entity.Person, error) {
	if _, ok := r.rows[p.ID]; !ok {
		return nil, entity.ErrPersonNotFound
	}
	r.rows[p.ID] = *p
	updated := *p
	return &updated, nil
}

func (r *memPersonRepo) Delete(_ context.Context, _ repository.DBTX, id int64) error {
	if _, ok := r.rows[id]; !ok {
		return entity.ErrPersonNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *memPersonRepo) List(_ context.Context, _ repository.DBTX, page entity.PageRequest) (entity.Page[entity.Person], error) {
	ids := make([]int64, 0, len(r.rows))
	for id := range r.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	items := make([]entity.Person, 0, len(ids))
	for _, id := range ids {
		items = append(items, r.rows[id])
	}
	return slicePage(items, page), nil
}

// memTaskRepo повторяет поведение базы: Update не трогает created_at
type memTaskRepo struct {
	nextID int64
	rows   map[int64]entity.Task
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{rows: map[int64]entity.Task{}}
}

func (r *memTaskRepo) Create(_ context.Context, _ repository.DBTX, t *entity.Task) (*entity.Task, error) {
	r.nextID++
	created := *t
	created.ID = r.nextID
	r.rows[created.ID] = created
	return &created, nil
}

func (r *memTaskRepo) GetByID(_ context.Context, _ repository.DBTX, id int64) (*entity.Task, error) {
	t, ok := r.rows[id]
	if !ok {
		return nil, entity.ErrTaskNotFound
	}
	return &t, nil
}

func (r *memTaskRepo) Update(_ context.Context, _ repository.DBTX, t *entity.Task) (*entity.Task, error) {
	stored, ok := r.rows[t.ID]
	if !ok {
		return nil, entity.ErrTaskNotFound
	}
	updated := *t
	updated.CreatedAt = stored.CreatedAt
	r.rows[t.ID] = updated
	return &updated, nil
}

func (r *memTaskRepo) Delete(_ context.Context, _ repository.DBTX, id int64) error {
	if _, ok := r.rows[id]; !ok {
		return entity.ErrTaskNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *memTaskRepo) List(_ context.Context, _ repository.DBTX, page entity.PageRequest) (entity.Page[entity.Task], error) {
	ids := make([]int64, 0, len(r.rows))
	for id := range r.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	items := make([]entity.Task, 0, len(ids))
	for _, id := range ids {
		items = append(items, r.rows[id])
	}
	return slicePage(items, page), nil
}

func slicePage[T any](items []T, page entity.PageRequest) entity.Page[T] {
	page = page.Normalize()
	if page.Unpaged() {
		return entity.Page[T]{Items: items, Number: page.Page, Size: page.Size}
	}
	start := page.Offset()
	if start > len(items) {
		start = len(items)
	}
	end := start + page.Size
	hasNext := end < len(items)
	if end > len(items) {
		end = len(items)
	}
	return entity.Page[T]{Items: items[start:end], Number: page.Page, Size: page.Size, HasNext: hasNext}
}

// recordingPublisher - мок для AuditPublisher
type recordingPublisher struct {
	mu       sync.Mutex
	err      error
	messages []*entity.AuditMessage
}

func (p *recordingPublisher) PublishAuditMessage(_ context.Context, msg *entity.AuditMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return p.err
}

func (p *recordingPublisher) all() []*entity.AuditMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*entity.AuditMessage(nil), p.messages...)
}

var errDB = errors.New("connection reset")

var testNow = time.Date(2024, time.December, 20, 15, 4, 5, 0, time.UTC)

func newTestLogger(t *testing.T) (logrus.FieldLogger, *logtest.Hook) {
	t.Helper()
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return log, hook
}
