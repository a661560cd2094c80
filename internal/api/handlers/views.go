package handlers

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/St1cky1/roster/internal/entity"
	"github.com/St1cky1/roster/internal/logger"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var templateFS embed.FS

// PersonService - то, что нужно экранам от usecase.PersonService
type PersonService interface {
	CreatePerson(ctx context.Context, lastName, firstName, nationalID string) (*entity.Person, error)
	DeletePerson(ctx context.Context, id int64) error
	List(ctx context.Context, page entity.PageRequest) (entity.Page[entity.Person], error)
}

// TaskService - то, что нужно экранам от usecase.TaskService
type TaskService interface {
	CreateTask(ctx context.Context, person *entity.Person, description string, dueDate *time.Time) (*entity.Task, error)
	SetDone(ctx context.Context, id int64, done bool) (*entity.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	GetTask(ctx context.Context, id int64) (*entity.Task, error)
	List(ctx context.Context, page entity.PageRequest) (entity.Page[entity.Task], error)
}

type Options struct {
	PageSize int
	Location *time.Location
	Now      func() time.Time
}

type Views struct {
	persons   PersonService
	tasks     TaskService
	log       logrus.FieldLogger
	opts      Options
	templates map[string]*template.Template
}

func NewViews(persons PersonService, tasks TaskService, log logrus.FieldLogger, opts Options) (*Views, error) {
	if opts.PageSize <= 0 {
		opts.PageSize = 20
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	v := &Views{
		persons: persons,
		tasks:   tasks,
		log:     log,
		opts:    opts,
	}
	templates, err := parseTemplates(v.funcs())
	if err != nil {
		return nil, err
	}
	v.templates = templates
	return v, nil
}

// parseTemplates собирает каждую страницу вместе с layout.html
func parseTemplates(funcs template.FuncMap) (map[string]*template.Template, error) {
	pages := []string{"main.html", "person_list.html", "task_list.html", "task_delete.html"}
	result := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		result[page] = t
	}
	return result, nil
}

func (v *Views) funcs() template.FuncMap {
	return template.FuncMap{
		"dueDate": func(t *time.Time) string {
			if t == nil {
				return "Nunca"
			}
			return t.Format("02/01/2006")
		},
		"createdAt": func(t time.Time) string {
			return t.In(v.opts.Location).Format("02/01/2006 15:04:05")
		},
		"descMax": func() int { return entity.DescriptionMaxLength },
	}
}

type notice struct {
	Text  string
	Level string // success | error
}

type pageData struct {
	Title  string
	Active string
	Notice *notice
	Body   any
}

func (v *Views) render(w http.ResponseWriter, r *http.Request, status int, page string, data pageData) {
	t, ok := v.templates[page]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}
	if data.Notice == nil {
		data.Notice = noticeFromQuery(r)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "layout.html", data); err != nil {
		v.requestLog(r).WithError(err).Error("render failed")
	}
}

func (v *Views) requestLog(r *http.Request) logrus.FieldLogger {
	return logger.WithRequestID(v.log, middleware.GetReqID(r.Context()))
}

// mutate - единая точка для всех изменяющих действий экранов:
// вызов идет с контекстом запроса, ошибка логируется и показывается уведомлением.
func (v *Views) mutate(w http.ResponseWriter, r *http.Request, back, success, failure string, fn func(ctx context.Context) error) {
	v.mutateTo(w, r, back, back, success, failure, fn)
}

// mutateTo - как mutate, но после ошибки возвращает на failureBack
func (v *Views) mutateTo(w http.ResponseWriter, r *http.Request, successBack, failureBack, success, failure string, fn func(ctx context.Context) error) {
	if err := fn(r.Context()); err != nil {
		v.requestLog(r).WithError(err).WithField("path", r.URL.Path).Warn("action failed")
		redirectWithNotice(w, r, failureBack, failure+": "+err.Error(), "error")
		return
	}
	redirectWithNotice(w, r, successBack, success, "success")
}

func redirectWithNotice(w http.ResponseWriter, r *http.Request, back, text, level string) {
	u, err := url.Parse(back)
	if err != nil {
		u = &url.URL{Path: "/"}
	}
	q := u.Query()
	q.Set("notice", text)
	q.Set("level", level)
	u.RawQuery = q.Encode()
	http.Redirect(w, r, u.String(), http.StatusSeeOther)
}

func noticeFromQuery(r *http.Request) *notice {
	text := r.URL.Query().Get("notice")
	if text == "" {
		return nil
	}
	level := r.URL.Query().Get("level")
	if level != "error" {
		level = "success"
	}
	return &notice{Text: text, Level: level}
}

// pageRequest читает page/size/sort из query
func (v *Views) pageRequest(r *http.Request) entity.PageRequest {
	q := r.URL.Query()
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 0 {
		page = 0
	}
	size, err := strconv.Atoi(q.Get("size"))
	if err != nil || size <= 0 {
		size = v.opts.PageSize
	}
	return entity.PageRequest{
		Page: page,
		Size: size,
		Sort: entity.ParseSort(q.Get("sort")),
	}.Normalize()
}

type pager struct {
	Path    string
	Page    int
	Size    int
	Sort    string
	HasPrev bool
	HasNext bool
}

func (p pager) link(page int) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(p.Size))
	if p.Sort != "" {
		q.Set("sort", p.Sort)
	}
	return p.Path + "?" + q.Encode()
}

func (p pager) PrevLink() string { return p.link(p.Page - 1) }
func (p pager) NextLink() string { return p.link(p.Page + 1) }

func newPager[T any](r *http.Request, path string, page entity.Page[T]) pager {
	return pager{
		Path:    path,
		Page:    page.Number,
		Size:    page.Size,
		Sort:    r.URL.Query().Get("sort"),
		HasPrev: page.HasPrev(),
		HasNext: page.HasNext,
	}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
