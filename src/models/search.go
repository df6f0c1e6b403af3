package models

// MSearchResult is one entry from the provider's symbol directory.
type MSearchResult struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"instrument_name"`
	Exchange string `json:"exchange"`
	Currency string `json:"currency"`
}

// MSearchResponse mirrors the provider's search envelope.
type MSearchResponse struct {
	Data   []MSearchResult `json:"data"`
	Status string          `json:"status"`
}
