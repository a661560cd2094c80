package entity

type Person struct {
	ID         int64  `json:"id"`
	LastName   string `json:"last_name" validate:"notblank"`
	FirstName  string `json:"first_name" validate:"notblank"`
	NationalID string `json:"national_id" validate:"notblank"`
}

// DisplayName - "Apellido, Nombre" как в списке выбора ответственного
func (p Person) DisplayName() string {
	return p.LastName + ", " + p.FirstName
}

// PersonSortable - колонки, по которым разрешена сортировка
var PersonSortable = map[string]string{
	"id":          "id",
	"last_name":   "last_name",
	"first_name":  "first_name",
	"national_id": "national_id",
}
