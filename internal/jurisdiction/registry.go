// Package jurisdiction содержит реестр избирательных юрисдикций Мэриленда:
// 23 округа и независимый город Балтимор.
//
// Слаги совпадают с написанием в URL портала выборов штата: слова через "_",
// апострофы опущены, точка в сокращении "St." сохранена.
package jurisdiction

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownState возвращается для штатов, которых нет в реестре.
var ErrUnknownState = errors.New("unknown state")

// entry связывает слаг портала с названием юрисдикции.
type entry struct {
	slug string
	name string
}

// Порядок важен: Baltimore_City идёт перед Baltimore.
var maryland = [...]entry{
	{"Allegany", "Allegany"},
	{"Anne_Arundel", "Anne Arundel"},
	{"Baltimore_City", "Baltimore City"},
	{"Baltimore", "Baltimore"},
	{"Calvert", "Calvert"},
	{"Caroline", "Caroline"},
	{"Carroll", "Carroll"},
	{"Cecil", "Cecil"},
	{"Charles", "Charles"},
	{"Dorchester", "Dorchester"},
	{"Frederick", "Frederick"},
	{"Garrett", "Garrett"},
	{"Harford", "Harford"},
	{"Howard", "Howard"},
	{"Kent", "Kent"},
	{"Montgomery", "Montgomery"},
	{"Prince_Georges", "Prince George's"},
	{"Queen_Annes", "Queen Anne's"},
	{"St._Marys", "St. Mary's"},
	{"Somerset", "Somerset"},
	{"Talbot", "Talbot"},
	{"Washington", "Washington"},
	{"Wicomico", "Wicomico"},
	{"Worcester", "Worcester"},
}

// List возвращает слаги юрисдикций Мэриленда в каноническом порядке.
// Каждый вызов отдаёт новый срез, поэтому его можно менять.
func List() []string {
	slugs := make([]string, len(maryland))
	for i, e := range maryland {
		slugs[i] = e.slug
	}
	return slugs
}

// Contains сообщает, есть ли слаг в реестре. Сравнение точное.
func Contains(slug string) bool {
	return Index(slug) >= 0
}

// Index возвращает позицию слага в каноническом порядке или -1.
func Index(slug string) int {
	for i, e := range maryland {
		if e.slug == slug {
			return i
		}
	}
	return -1
}

// Name возвращает человекочитаемое название юрисдикции по слагу.
func Name(slug string) (string, bool) {
	if i := Index(slug); i >= 0 {
		return maryland[i].name, true
	}
	return "", false
}

// Names возвращает пары "название -> слаг" для всех юрисдикций,
// у которых название отличается от слага.
func Names() map[string]string {
	m := make(map[string]string)
	for _, e := range maryland {
		if e.name != e.slug {
			m[e.name] = e.slug
		}
	}
	return m
}

// ForState возвращает реестр для штата по его почтовому коду.
// Пока известен только Мэриленд.
func ForState(state string) ([]string, error) {
	switch strings.ToUpper(strings.TrimSpace(state)) {
	case "MD":
		return List(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownState, state)
	}
}

// Validate проверяет, что слаги непустые, уникальные и состоят только
// из латиницы, цифр, "_" и ".".
func Validate(slugs []string) error {
	seen := make(map[string]struct{}, len(slugs))
	for i, s := range slugs {
		if s == "" {
			return fmt.Errorf("slug #%d is empty", i)
		}
		for _, r := range s {
			if !isSlugRune(r) {
				return fmt.Errorf("slug %q contains invalid character %q", s, r)
			}
		}
		if _, ok := seen[s]; ok {
			return fmt.Errorf("duplicate slug %q", s)
		}
		seen[s] = struct{}{}
	}
	return nil
}

func isSlugRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '.':
		return true
	}
	return false
}
