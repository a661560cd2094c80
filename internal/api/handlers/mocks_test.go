package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/St1cky1/roster/internal/entity"
	"github.com/go-chi/chi/v5"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

type MockPersonService struct {
	CreatePersonFunc func(ctx context.Context, lastName, firstName, nationalID string) (*entity.Person, error)
	DeletePersonFunc func(ctx context.Context, id int64) error
	ListFunc         func(ctx context.Context, page entity.PageRequest) (entity.Page[entity.Person], error)
}

func (m *MockPersonService) CreatePerson(ctx context.Context, lastName, firstName, nationalID string) (*entity.Person, error) {
	if m.CreatePersonFunc != nil {
		return m.CreatePersonFunc(ctx, lastName, firstName, nationalID)
	}
	return &entity.Person{ID: 1, LastName: lastName, FirstName: firstName, NationalID: nationalID}, nil
}

func (m *MockPersonService) DeletePerson(ctx context.Context, id int64) error {
	if m.DeletePersonFunc != nil {
		return m.DeletePersonFunc(ctx, id)
	}
	return nil
}

func (m *MockPersonService) List(ctx context.Context, page entity.PageRequest) (entity.Page[entity.Person], error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, page)
	}
	return entity.Page[entity.Person]{Number: page.Page, Size: page.Size}, nil
}

type MockTaskService struct {
	CreateTaskFunc func(ctx context.Context, person *entity.Person, description string, dueDate *time.Time) (*entity.Task, error)
	SetDoneFunc    func(ctx context.Context, id int64, done bool) (*entity.Task, error)
	DeleteTaskFunc func(ctx context.Context, id int64) error
	GetTaskFunc    func(ctx context.Context, id int64) (*entity.Task, error)
	ListFunc       func(ctx context.Context, page entity.PageRequest) (entity.Page[entity.Task], error)
}

func (m *MockTaskService) CreateTask(ctx context.Context, person *entity.Person, description string, dueDate *time.Time) (*entity.Task, error) {
	if m.CreateTaskFunc != nil {
		return m.CreateTaskFunc(ctx, person, description, dueDate)
	}
	return &entity.Task{ID: 1, Description: description, DueDate: dueDate, Person: person}, nil
}

func (m *MockTaskService) SetDone(ctx context.Context, id int64, done bool) (*entity.Task, error) {
	if m.SetDoneFunc != nil {
		return m.SetDoneFunc(ctx, id, done)
	}
	return &entity.Task{ID: id, Done: done}, nil
}

func (m *MockTaskService) DeleteTask(ctx context.Context, id int64) error {
	if m.DeleteTaskFunc != nil {
		return m.DeleteTaskFunc(ctx, id)
	}
	return nil
}

func (m *MockTaskService) GetTask(ctx context.Context, id int64) (*entity.Task, error) {
	if m.GetTaskFunc != nil {
		return m.GetTaskFunc(ctx, id)
	}
	return nil, entity.ErrTaskNotFound
}

func (m *MockTaskService) List(ctx context.Context, page entity.PageRequest) (entity.Page[entity.Task], error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, page)
	}
	return entity.Page[entity.Task]{Number: page.Page, Size: page.Size}, nil
}

var testNow = time.Date(2025, time.January, 15, 10, 30, 0, 0, time.UTC)

// testRouter повторяет маршруты api.NewRouter без middleware
func testRouter(t *testing.T, persons PersonService, tasks TaskService) http.Handler {
	t.Helper()
	log, _ := logtest.NewNullLogger()
	v, err := NewViews(persons, tasks, log, Options{
		PageSize: 20,
		Location: time.UTC,
		Now:      func() time.Time { return testNow },
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Get("/", v.Main)
	r.Route("/person-list", func(r chi.Router) {
		r.Get("/", v.PersonList)
		r.Post("/", v.CreatePerson)
		r.Post("/{id}/delete", v.DeletePerson)
	})
	r.Route("/task-list", func(r chi.Router) {
		r.Get("/", v.TaskList)
		r.Post("/", v.CreateTask)
		r.Post("/{id}/done", v.ToggleDone)
		r.Get("/{id}/delete", v.ConfirmDeleteTask)
		r.Post("/{id}/delete", v.DeleteTask)
	})
	return r
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func postForm(t *testing.T, h http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// redirect разбирает Location после 303
func redirect(t *testing.T, rec *httptest.ResponseRecorder) *url.URL {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, rec.Code)
	u, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	return u
}
