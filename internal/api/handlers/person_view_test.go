package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/St1cky1/roster/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMainPage(t *testing.T) {
	h := testRouter(t, &MockPersonService{}, &MockTaskService{})

	rec := get(t, h, "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Lista de estudiantes")
	assert.Contains(t, rec.Body.String(), "Lista de tareas")
}

func TestPersonListViewingMode(t *testing.T) {
	persons := &MockPersonService{
		ListFunc: func(_ context.Context, page entity.PageRequest) (entity.Page[entity.Person], error) {
			return entity.Page[entity.Person]{
				Items:  []entity.Person{{ID: 7, LastName: "Gomez", FirstName: "Ana", NationalID: "123"}},
				Number: page.Page,
				Size:   page.Size,
			}, nil
		},
	}
	h := testRouter(t, persons, &MockTaskService{})

	rec := get(t, h, "/person-list")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<td>Gomez</td>")
	assert.Contains(t, body, "/person-list/7/delete")
	assert.Contains(t, body, "disabled>Guardar")
}

func TestPersonListEditMode(t *testing.T) {
	h := testRouter(t, &MockPersonService{}, &MockTaskService{})

	rec := get(t, h, "/person-list?mode=edit")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disabled>Guardar")
}

func TestPersonListPaging(t *testing.T) {
	var got entity.PageRequest
	persons := &MockPersonService{
		ListFunc: func(_ context.Context, page entity.PageRequest) (entity.Page[entity.Person], error) {
			got = page
			return entity.Page[entity.Person]{Number: page.Page, Size: page.Size, HasNext: true}, nil
		},
	}
	h := testRouter(t, persons, &MockTaskService{})

	rec := get(t, h, "/person-list?page=2&size=5")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, 5, got.Size)
	assert.Contains(t, rec.Body.String(), "Anterior")
	assert.Contains(t, rec.Body.String(), "Siguiente")
}

func TestPersonListShowsNoticeFromQuery(t *testing.T) {
	h := testRouter(t, &MockPersonService{}, &MockTaskService{})

	rec := get(t, h, "/person-list?notice=Persona+eliminada&level=success")

	assert.Contains(t, rec.Body.String(), `class="notice success"`)
	assert.Contains(t, rec.Body.String(), "Persona eliminada")
}

func TestPersonListServiceError(t *testing.T) {
	persons := &MockPersonService{
		ListFunc: func(context.Context, entity.PageRequest) (entity.Page[entity.Person], error) {
			return entity.Page[entity.Person]{}, errors.New("connection refused")
		},
	}
	h := testRouter(t, persons, &MockTaskService{})

	rec := get(t, h, "/person-list")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error al cargar la lista: connection refused")
}

func TestCreatePersonBlankField(t *testing.T) {
	called := false
	persons := &MockPersonService{
		CreatePersonFunc: func(context.Context, string, string, string) (*entity.Person, error) {
			called = true
			return nil, nil
		},
	}
	h := testRouter(t, persons, &MockTaskService{})

	rec := postForm(t, h, "/person-list", url.Values{
		"last_name":   {"Gomez"},
		"first_name":  {"   "},
		"national_id": {"123"},
	})

	loc := redirect(t, rec)
	assert.Equal(t, "/person-list", loc.Path)
	assert.Equal(t, "edit", loc.Query().Get("mode"))
	assert.Equal(t, "Todos los campos son obligatorios", loc.Query().Get("notice"))
	assert.Equal(t, "error", loc.Query().Get("level"))
	assert.False(t, called)
}

func TestCreatePersonSuccess(t *testing.T) {
	var gotLast, gotFirst, gotID string
	persons := &MockPersonService{
		CreatePersonFunc: func(_ context.Context, lastName, firstName, nationalID string) (*entity.Person, error) {
			gotLast, gotFirst, gotID = lastName, firstName, nationalID
			return &entity.Person{ID: 1, LastName: lastName, FirstName: firstName, NationalID: nationalID}, nil
		},
	}
	h := testRouter(t, persons, &MockTaskService{})

	rec := postForm(t, h, "/person-list", url.Values{
		"last_name":   {"Gomez"},
		"first_name":  {"Ana"},
		"national_id": {"123"},
	})

	loc := redirect(t, rec)
	assert.Equal(t, "/person-list", loc.Path)
	assert.Empty(t, loc.Query().Get("mode"))
	assert.Equal(t, "Persona guardada con éxito", loc.Query().Get("notice"))
	assert.Equal(t, "success", loc.Query().Get("level"))
	assert.Equal(t, []string{"Gomez", "Ana", "123"}, []string{gotLast, gotFirst, gotID})
}

func TestCreatePersonFailure(t *testing.T) {
	persons := &MockPersonService{
		CreatePersonFunc: func(context.Context, string, string, string) (*entity.Person, error) {
			return nil, errors.New("db down")
		},
	}
	h := testRouter(t, persons, &MockTaskService{})

	rec := postForm(t, h, "/person-list", url.Values{
		"last_name":   {"Gomez"},
		"first_name":  {"Ana"},
		"national_id": {"123"},
	})

	loc := redirect(t, rec)
	assert.Equal(t, "Error al guardar la persona: db down", loc.Query().Get("notice"))
	assert.Equal(t, "error", loc.Query().Get("level"))
}

func TestDeletePerson(t *testing.T) {
	var deleted int64
	persons := &MockPersonService{
		DeletePersonFunc: func(_ context.Context, id int64) error {
			deleted = id
			return nil
		},
	}
	h := testRouter(t, persons, &MockTaskService{})

	rec := postForm(t, h, "/person-list/7/delete", url.Values{})

	loc := redirect(t, rec)
	assert.Equal(t, int64(7), deleted)
	assert.Equal(t, "Persona eliminada", loc.Query().Get("notice"))
}

func TestDeletePersonNotFound(t *testing.T) {
	persons := &MockPersonService{
		DeletePersonFunc: func(context.Context, int64) error {
			return entity.ErrPersonNotFound
		},
	}
	h := testRouter(t, persons, &MockTaskService{})

	rec := postForm(t, h, "/person-list/99/delete", url.Values{})

	loc := redirect(t, rec)
	assert.Equal(t, "error", loc.Query().Get("level"))
	assert.Contains(t, loc.Query().Get("notice"), entity.ErrPersonNotFound.Error())
}

func TestDeletePersonInvalidID(t *testing.T) {
	called := false
	persons := &MockPersonService{
		DeletePersonFunc: func(context.Context, int64) error {
			called = true
			return nil
		},
	}
	h := testRouter(t, persons, &MockTaskService{})

	rec := postForm(t, h, "/person-list/abc/delete", url.Values{})

	loc := redirect(t, rec)
	assert.Equal(t, "error", loc.Query().Get("level"))
	assert.False(t, called)
}

func TestCreatePersonFailureKeepsFormEditable(t *testing.T) {
	persons := &MockPersonService{
		CreatePersonFunc: func(context.Context, string, string, string) (*entity.Person, error) {
			return nil, errors.New("db down")
		},
	}
	h := testRouter(t, persons, &MockTaskService{})

	rec := postForm(t, h, "/person-list", url.Values{
		"last_name":   {"Gomez"},
		"first_name":  {"Ana"},
		"national_id": {"123"},
	})

	loc := redirect(t, rec)
	assert.Equal(t, "edit", loc.Query().Get("mode"))
	assert.Equal(t, "Gomez", loc.Query().Get("last_name"))

	page := get(t, h, loc.RequestURI())
	require.Equal(t, http.StatusOK, page.Code)
	body := page.Body.String()
	assert.Contains(t, body, `value="Gomez"`)
	assert.Contains(t, body, `value="Ana"`)
	assert.Contains(t, body, `value="123"`)
	assert.NotContains(t, body, "disabled>Guardar")
	assert.Contains(t, body, "Error al guardar la persona: db down")
}

func TestCreatePersonBlankFieldKeepsValues(t *testing.T) {
	h := testRouter(t, &MockPersonService{}, &MockTaskService{})

	rec := postForm(t, h, "/person-list", url.Values{
		"last_name":   {"Gomez"},
		"first_name":  {""},
		"national_id": {"123"},
	})

	loc := redirect(t, rec)
	page := get(t, h, loc.RequestURI())
	assert.Contains(t, page.Body.String(), `value="Gomez"`)
	assert.Contains(t, page.Body.String(), `value="123"`)
}

func TestPersonDeleteFormReturnsToCurrentPage(t *testing.T) {
	persons := &MockPersonService{
		ListFunc: func(_ context.Context, page entity.PageRequest) (entity.Page[entity.Person], error) {
			return entity.Page[entity.Person]{
				Items:  []entity.Person{{ID: 11, LastName: "Gomez", FirstName: "Ana", NationalID: "123"}},
				Number: page.Page,
				Size:   page.Size,
			}, nil
		},
	}
	h := testRouter(t, persons, &MockTaskService{})

	page := get(t, h, "/person-list?page=2&size=5")
	assert.Contains(t, page.Body.String(), `name="back" value="/person-list?page=2&amp;size=5"`)

	rec := postForm(t, h, "/person-list/11/delete", url.Values{"back": {"/person-list?page=2&size=5"}})

	loc := redirect(t, rec)
	assert.Equal(t, "/person-list", loc.Path)
	assert.Equal(t, "2", loc.Query().Get("page"))
	assert.Equal(t, "Persona eliminada", loc.Query().Get("notice"))
}
