package util

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/Totarae/openelex/internal/model"
)

// DocumentKey возвращает стабильный ключ документа по его URL:
// первые 16 байт SHA-256, url-safe base64 без паддинга, в нижнем регистре.
func DocumentKey(url string) string {
	hash := sha256.Sum256([]byte(url))
	return strings.ToLower(base64.RawURLEncoding.EncodeToString(hash[:16]))
}

// JurisdictionURL строит адрес вида {base}/{slug}/
func JurisdictionURL(base, slug string) string {
	return trimBase(base) + "/" + slug + "/"
}

// ResultsIndexURL адрес страницы со списком файлов результатов за год.
func ResultsIndexURL(base string, year int) string {
	return fmt.Sprintf("%s/elections/%d/election_data/index.html", trimBase(base), year)
}

// ResultsFileURL адрес CSV с результатами по участкам для юрисдикции.
// Слаг подставляется как есть.
func ResultsFileURL(base string, e model.Election, slug string) string {
	var name string
	if e.Type == model.Primary {
		name = fmt.Sprintf("%s_By_Precinct_%s_%d_Primary.csv", slug, partyName(e.Party), e.Year)
	} else {
		name = fmt.Sprintf("%s_By_Precinct_%d_General.csv", slug, e.Year)
	}
	return fmt.Sprintf("%s/elections/%d/election_data/%s", trimBase(base), e.Year, name)
}

func trimBase(base string) string {
	return strings.TrimRight(strings.TrimSpace(base), "/")
}

// partyName приводит "democratic" к виду "Democratic", как в именах файлов портала.
func partyName(party string) string {
	party = strings.TrimSpace(party)
	if party == "" {
		return party
	}
	return strings.ToUpper(party[:1]) + strings.ToLower(party[1:])
}
