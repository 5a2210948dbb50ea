package model

// JurisdictionResponse представляет юрисдикцию в ответе API.
type JurisdictionResponse struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
	URL  string `json:"url"`
	// Rows заполняется только в режиме database
	Rows *int `json:"rows,omitempty"`
}
