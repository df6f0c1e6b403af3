package interfaces

import "stocks-dashboard/src/models"

// -----------------------------------------------------------------------------
// IMarketData defines the contract for the upstream quote/series provider.
// -----------------------------------------------------------------------------

type IMarketData interface {

	// -----------------------------------------------------------------------------

	// Quote fetches the current quote snapshot for a symbol.
	Quote(symbol string) (models.MQuote, error)

	// -----------------------------------------------------------------------------

	// IntradaySeries fetches a bounded window of fine-grained points
	// (several trading days) bucketed by calendar date.
	IntradaySeries(symbol string) (models.MSeriesData, error)

	// -----------------------------------------------------------------------------

	// DailySeries fetches about one year of one-point-per-day data.
	DailySeries(symbol string) (models.MDailySeries, error)

	// -----------------------------------------------------------------------------

	// Search queries the provider symbol directory. Results are ordered
	// with NASDAQ entries first, stable otherwise.
	Search(query string) ([]models.MSearchResult, error)
}
