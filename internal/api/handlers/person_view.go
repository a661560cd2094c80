package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/St1cky1/roster/internal/entity"
	"github.com/go-chi/chi/v5"
)

const personListPath = "/person-list"

type personForm struct {
	LastName   string
	FirstName  string
	NationalID string
	Editing    bool
}

type personListBody struct {
	Form    personForm
	Persons []entity.Person
	Pager   pager
	Back    string
}

// editURL - форма в режиме редактирования с уже введенными значениями
func (f personForm) editURL() string {
	q := url.Values{}
	q.Set("mode", "edit")
	q.Set("last_name", f.LastName)
	q.Set("first_name", f.FirstName)
	q.Set("national_id", f.NationalID)
	return personListPath + "?" + q.Encode()
}

func formFromQuery(r *http.Request) personForm {
	q := r.URL.Query()
	if q.Get("mode") != "edit" {
		return personForm{}
	}
	return personForm{
		LastName:   q.Get("last_name"),
		FirstName:  q.Get("first_name"),
		NationalID: q.Get("national_id"),
		Editing:    true,
	}
}

// PersonList - форма (только чтение до нажатия "Nuevo") и таблица студентов
func (v *Views) PersonList(w http.ResponseWriter, r *http.Request) {
	page, err := v.persons.List(r.Context(), v.pageRequest(r))
	if err != nil {
		v.requestLog(r).WithError(err).Error("list persons failed")
		v.render(w, r, http.StatusInternalServerError, "person_list.html", pageData{
			Title:  "Registro de estudiantes",
			Active: "persons",
			Notice: &notice{Text: "Error al cargar la lista: " + err.Error(), Level: "error"},
			Body:   personListBody{},
		})
		return
	}

	pg := newPager(r, personListPath, page)
	v.render(w, r, http.StatusOK, "person_list.html", pageData{
		Title:  "Registro de estudiantes",
		Active: "persons",
		Body: personListBody{
			Form:    formFromQuery(r),
			Persons: page.Items,
			Pager:   pg,
			Back:    pg.link(pg.Page),
		},
	})
}

// CreatePerson - "Guardar". После ошибки форма остается открытой с введенными значениями.
func (v *Views) CreatePerson(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWithNotice(w, r, personListPath+"?mode=edit", "Error al guardar la persona: "+err.Error(), "error")
		return
	}
	form := personForm{
		LastName:   r.PostFormValue("last_name"),
		FirstName:  r.PostFormValue("first_name"),
		NationalID: r.PostFormValue("national_id"),
	}

	if isBlank(form.LastName) || isBlank(form.FirstName) || isBlank(form.NationalID) {
		redirectWithNotice(w, r, form.editURL(), "Todos los campos son obligatorios", "error")
		return
	}

	v.mutateTo(w, r, personListPath, form.editURL(), "Persona guardada con éxito", "Error al guardar la persona", func(ctx context.Context) error {
		_, err := v.persons.CreatePerson(ctx, form.LastName, form.FirstName, form.NationalID)
		return err
	})
}

// DeletePerson - "Eliminar" в строке таблицы
func (v *Views) DeletePerson(w http.ResponseWriter, r *http.Request) {
	back := personListPath
	if ref := r.PostFormValue("back"); strings.HasPrefix(ref, personListPath) {
		back = ref
	}

	v.mutate(w, r, back, "Persona eliminada", "Error al eliminar la persona", func(ctx context.Context) error {
		id, err := parseID(chi.URLParam(r, "id"))
		if err != nil {
			return err
		}
		return v.persons.DeletePerson(ctx, id)
	})
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
