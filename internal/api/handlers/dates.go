package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/St1cky1/roster/internal/entity"
	"github.com/markusmobius/go-dateparser"
)

var dueDateParser dateparser.Parser

var dueDateLanguages = []string{"es", "en"}

// ParseDueDate принимает ISO дату из <input type="date">, "dd/mm/yyyy"
// или свободный текст ("mañana", "10 de enero"). Пустая строка - без срока.
func ParseDueDate(input string, now time.Time) (*time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}

	for _, layout := range []string{time.DateOnly, "02/01/2006", "2/1/2006"} {
		if t, err := time.Parse(layout, input); err == nil {
			d := entity.DateOf(t)
			return &d, nil
		}
	}

	cfg := &dateparser.Configuration{
		Languages:   dueDateLanguages,
		CurrentTime: now,
		DateOrder:   dateparser.DMY,
	}
	result, err := dueDateParser.Parse(cfg, input)
	if err != nil || result.Time.IsZero() {
		return nil, fmt.Errorf("fecha de vencimiento inválida: %q", input)
	}
	d := entity.DateOf(result.Time)
	return &d, nil
}
