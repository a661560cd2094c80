package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/St1cky1/roster/internal/entity"
	"github.com/go-chi/chi/v5"
)

const taskListPath = "/task-list"

type taskListBody struct {
	Persons []entity.Person
	Tasks   []entity.Task
	Pager   pager
	Back    string
}

// TaskList - панель создания задачи и таблица задач
func (v *Views) TaskList(w http.ResponseWriter, r *http.Request) {
	body := taskListBody{Back: r.URL.RequestURI()}

	// в списке выбора все люди, без пагинации
	persons, err := v.persons.List(r.Context(), entity.Unpaged())
	if err == nil {
		body.Persons = persons.Items
		var tasks entity.Page[entity.Task]
		tasks, err = v.tasks.List(r.Context(), v.pageRequest(r))
		body.Tasks = tasks.Items
		body.Pager = newPager(r, taskListPath, tasks)
	}
	if err != nil {
		v.requestLog(r).WithError(err).Error("list tasks failed")
		v.render(w, r, http.StatusInternalServerError, "task_list.html", pageData{
			Title:  "Lista de Tareas",
			Active: "tasks",
			Notice: &notice{Text: "Error al cargar la lista: " + err.Error(), Level: "error"},
			Body:   taskListBody{},
		})
		return
	}

	v.render(w, r, http.StatusOK, "task_list.html", pageData{
		Title:  "Lista de Tareas",
		Active: "tasks",
		Body:   body,
	})
}

// CreateTask - "Crear"
func (v *Views) CreateTask(w http.ResponseWriter, r *http.Request) {
	v.mutate(w, r, taskListPath, "Tarea añadida", "Error al crear la tarea", func(ctx context.Context) error {
		if err := r.ParseForm(); err != nil {
			return err
		}

		var person *entity.Person
		if raw := r.PostFormValue("person_id"); raw != "" {
			id, err := parseID(raw)
			if err != nil {
				return err
			}
			person = &entity.Person{ID: id}
		}

		dueDate, err := ParseDueDate(r.PostFormValue("due_date"), v.opts.Now().In(v.opts.Location))
		if err != nil {
			return err
		}

		_, err = v.tasks.CreateTask(ctx, person, r.PostFormValue("description"), dueDate)
		return err
	})
}

// ToggleDone - чекбокс "Realizado" сохраняется сразу
func (v *Views) ToggleDone(w http.ResponseWriter, r *http.Request) {
	back := backTo(r)
	v.mutate(w, r, back, "Tarea actualizada", "Error al actualizar la tarea", func(ctx context.Context) error {
		id, err := parseID(chi.URLParam(r, "id"))
		if err != nil {
			return err
		}
		done, err := strconv.ParseBool(r.PostFormValue("done"))
		if err != nil {
			return errors.New("invalid done value")
		}
		_, err = v.tasks.SetDone(ctx, id, done)
		return err
	})
}

type taskDeleteBody struct {
	Task *entity.Task
	Back string
}

// ConfirmDeleteTask - диалог подтверждения удаления
func (v *Views) ConfirmDeleteTask(w http.ResponseWriter, r *http.Request) {
	back := r.URL.Query().Get("back")
	if !strings.HasPrefix(back, taskListPath) {
		back = taskListPath
	}

	id, err := parseID(chi.URLParam(r, "id"))
	var task *entity.Task
	if err == nil {
		task, err = v.tasks.GetTask(r.Context(), id)
	}
	if err != nil {
		redirectWithNotice(w, r, back, "Error al borrar la tarea: "+err.Error(), "error")
		return
	}

	v.render(w, r, http.StatusOK, "task_delete.html", pageData{
		Title:  "Borrar tarea",
		Active: "tasks",
		Body:   taskDeleteBody{Task: task, Back: back},
	})
}

// DeleteTask - кнопка "Borrar" в диалоге
func (v *Views) DeleteTask(w http.ResponseWriter, r *http.Request) {
	v.mutate(w, r, backTo(r), "Tarea eliminada", "Error al borrar la tarea", func(ctx context.Context) error {
		id, err := parseID(chi.URLParam(r, "id"))
		if err != nil {
			return err
		}
		return v.tasks.DeleteTask(ctx, id)
	})
}

// backTo - возврат на ту же страницу таблицы, только внутри /task-list
func backTo(r *http.Request) string {
	if ref := r.PostFormValue("back"); strings.HasPrefix(ref, taskListPath) {
		return ref
	}
	return taskListPath
}
