package model

import (
	"fmt"
	"strings"
)

// ElectionType тип выборов на портале.
type ElectionType string

const (
	General ElectionType = "general"
	Primary ElectionType = "primary"
)

// Election описывает выборы, для которых собираются результаты.
// Party заполняется только для праймериз ("Democratic", "Republican").
type Election struct {
	Year  int
	Type  ElectionType
	Party string
}

// Validate проверяет корректность описания выборов
func (e Election) Validate() error {
	if e.Year < 1980 || e.Year > 2100 {
		return fmt.Errorf("invalid election year %d", e.Year)
	}
	switch e.Type {
	case General:
		if e.Party != "" {
			return fmt.Errorf("party is only allowed for primary elections")
		}
	case Primary:
		if strings.TrimSpace(e.Party) == "" {
			return fmt.Errorf("party is required for primary elections")
		}
	default:
		return fmt.Errorf("unknown election type %q", e.Type)
	}
	return nil
}

func (e Election) String() string {
	if e.Type == Primary {
		return fmt.Sprintf("%d %s %s", e.Year, e.Party, e.Type)
	}
	return fmt.Sprintf("%d %s", e.Year, e.Type)
}
