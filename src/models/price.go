package models

// -----------------------------------------------------------------------------
// Price series records, as served to the browser
// -----------------------------------------------------------------------------

// MPricePoint is one observed price. Timestamp keeps the provider's zoned
// "2006-01-02 15:04:05" encoding so the browser never re-localises it.
// Immutable once produced by the proxy.
type MPricePoint struct {
	Timestamp string  `json:"timestamp"`
	Price     float64 `json:"price"`
}

// MSeriesData is the intraday response: the flat ordered sequence plus the
// same points bucketed by ISO calendar date ("2006-01-02").
type MSeriesData struct {
	TimeSeries      []MPricePoint            `json:"timeSeries"`
	TimeSeriesByDay map[string][]MPricePoint `json:"timeSeriesByDay"`
}

// MDailySeries is the one-point-per-day response, additionally grouped by
// month ("2006-01") for range navigation.
type MDailySeries struct {
	TimeSeries []MPricePoint            `json:"timeSeries"`
	ByMonth    map[string][]MPricePoint `json:"byMonth"`
}
