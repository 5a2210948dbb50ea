package model

// ResultRow одна строка результатов по участку из CSV портала.
type ResultRow struct {
	DocumentKey    string `json:"document_key,omitempty"`
	Jurisdiction   string `json:"jurisdiction"`
	Year           int    `json:"year,omitempty"`
	County         string `json:"county"`
	Precinct       string `json:"precinct"`
	Office         string `json:"office"`
	OfficeDistrict string `json:"office_district,omitempty"`
	Candidate      string `json:"candidate"`
	Party          string `json:"party,omitempty"`
	Winner         bool   `json:"winner"`
	WriteIn        bool   `json:"write_in"`
	Votes          int    `json:"votes"`
}
