package model

import "time"

// Document представляет скачанный с портала файл.
type Document struct {
	Key          string    `json:"key"`
	Jurisdiction string    `json:"jurisdiction"`
	URL          string    `json:"url"`
	ContentType  string    `json:"content_type"`
	Checksum     string    `json:"checksum"`
	Body         []byte    `json:"body"`
	FetchedAt    time.Time `json:"fetched_at"`
}
