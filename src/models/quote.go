package models

// MQuote is a snapshot of the current quote. Refreshed on every proxy call,
// no history retained.
type MQuote struct {
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	PreviousClose float64 `json:"previousClose"`
}
