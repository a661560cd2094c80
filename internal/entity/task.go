package entity

import "time"

const (
	DescriptionMaxLength = 255

	// Unassigned - подпись для задачи без ответственного
	Unassigned = "Sin asignar"
)

type Task struct {
	ID          int64      `json:"id"`
	Description string     `json:"description" validate:"notblank,max=255"`
	CreatedAt   time.Time  `json:"created_at"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Done        bool       `json:"done"`
	Person      *Person    `json:"person,omitempty" validate:"-"`
}

// PersonID возвращает id ответственного или nil
func (t Task) PersonID() *int64 {
	if t.Person == nil {
		return nil
	}
	id := t.Person.ID
	return &id
}

func (t Task) AssigneeName() string {
	if t.Person == nil {
		return Unassigned
	}
	return t.Person.DisplayName()
}

// DateOf отбрасывает время, оставляя календарную дату
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var TaskSortable = map[string]string{
	"id":          "t.id",
	"description": "t.description",
	"created_at":  "t.created_at",
	"due_date":    "t.due_date",
	"done":        "t.done",
}
