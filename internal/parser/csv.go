package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Totarae/openelex/internal/model"
)

// ErrMissingColumn возвращается, если в заголовке CSV нет обязательной колонки
var ErrMissingColumn = errors.New("missing column")

// Варианты названий колонок в CSV портала по годам
var columnAliases = map[string][]string{
	"county":          {"County", "County Name"},
	"precinct":        {"Election District - Precinct", "Election District", "Precinct"},
	"office":          {"Office Name"},
	"office_district": {"Office District"},
	"candidate":       {"Candidate Name"},
	"party":           {"Party"},
	"winner":          {"Winner"},
	"write_in":        {"Write-In?"},
	"votes":           {"Total Votes", "Election Night Votes"},
}

var requiredColumns = []string{"office", "candidate", "votes"}

// ParseResults разбирает CSV с результатами по участкам.
func ParseResults(r io.Reader, jurisdiction string) ([]model.ResultRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty results file")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	cols := indexColumns(header)
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	var rows []model.ResultRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		if blank(record) {
			continue
		}
		line, _ := reader.FieldPos(0)

		get := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		votes, err := parseVotes(get("votes"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		rows = append(rows, model.ResultRow{
			Jurisdiction:   jurisdiction,
			County:         get("county"),
			Precinct:       get("precinct"),
			Office:         get("office"),
			OfficeDistrict: get("office_district"),
			Candidate:      get("candidate"),
			Party:          get("party"),
			Winner:         flag(get("winner")),
			WriteIn:        flag(get("write_in")),
			Votes:          votes,
		})
	}
	return rows, nil
}

func indexColumns(header []string) map[string]int {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.ToLower(strings.TrimSpace(h))] = i
	}
	cols := make(map[string]int)
	for name, aliases := range columnAliases {
		for _, alias := range aliases {
			if i, ok := pos[strings.ToLower(alias)]; ok {
				cols[name] = i
				break
			}
		}
	}
	return cols
}

func parseVotes(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0, fmt.Errorf("invalid vote count %q", s)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative vote count %d", v)
	}
	return v, nil
}

func flag(s string) bool {
	switch strings.ToUpper(s) {
	case "Y", "YES", "TRUE", "1":
		return true
	}
	return false
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
