package entity

import (
	"fmt"
	"strings"
)

const MaxPageSize = 100

type Order struct {
	Property string
	Desc     bool
}

// PageRequest - запрос страницы. Size <= 0 означает "без пагинации".
type PageRequest struct {
	Page int
	Size int
	Sort []Order
}

func Unpaged() PageRequest {
	return PageRequest{}
}

func (p PageRequest) Unpaged() bool {
	return p.Size <= 0
}

// Normalize ограничивает номер страницы и размер допустимыми значениями
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

func (p PageRequest) Offset() int {
	if p.Unpaged() {
		return 0
	}
	return p.Page * p.Size
}

// OrderBy строит ORDER BY по белому списку колонок.
// Без сортировки порядок по id (порядок вставки).
func (p PageRequest) OrderBy(allowed map[string]string, fallback string) (string, error) {
	if len(p.Sort) == 0 {
		return fallback + " ASC", nil
	}
	parts := make([]string, 0, len(p.Sort)+1)
	for _, o := range p.Sort {
		col, ok := allowed[o.Property]
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrInvalidSort, o.Property)
		}
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		parts = append(parts, col+" "+dir)
	}
	// стабильный порядок между страницами
	parts = append(parts, fallback+" ASC")
	return strings.Join(parts, ", "), nil
}

// ParseSort разбирает "last_name,-id" в список Order
func ParseSort(s string) []Order {
	var orders []Order
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if strings.HasPrefix(field, "-") {
			orders = append(orders, Order{Property: field[1:], Desc: true})
			continue
		}
		orders = append(orders, Order{Property: field})
	}
	return orders
}

type Page[T any] struct {
	Items   []T
	Number  int
	Size    int
	HasNext bool
}

func (p Page[T]) HasPrev() bool {
	return p.Number > 0
}
