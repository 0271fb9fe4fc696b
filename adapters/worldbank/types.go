package worldbank

// ref is the {id, value} pair the World Bank API uses for country and
// indicator references.
type ref struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// record is one element of the data array in the API response envelope.
// Value is a pointer because the API reports missing years as null.
type record struct {
	Indicator ref      `json:"indicator"`
	Country   ref      `json:"country"`
	Date      string   `json:"date"`
	Value     *float64 `json:"value"`
}

// pageInfo is the first element of the two-part response envelope
type pageInfo struct {
	Page    int `json:"page"`
	Pages   int `json:"pages"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
}
