package upstream

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"stocks-dashboard/src/helpers"
	"stocks-dashboard/src/interfaces"
	"stocks-dashboard/src/logger"
	"stocks-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// Twelve Data REST client
// -----------------------------------------------------------------------------

// Client wraps the provider's quote/time-series/search endpoints. Every call
// re-fetches: there is no caching layer in front of the provider.
type Client struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewClient(cfg *models.MConfig, netMgr interfaces.INetworkManager) *Client {
	return &Client{
		Config:  cfg,
		Network: netMgr,
		Logger:  logger.NewLogger("TwelveData"),
	}
}

// -----------------------------------------------------------------------------

// BareSymbol strips the optional "-EXCHANGE" suffix from a compound symbol.
// The provider is keyed by bare symbol only.
func BareSymbol(symbolExchange string) string {
	symbol, _, _ := strings.Cut(symbolExchange, "-")
	return symbol
}

// -----------------------------------------------------------------------------
// Provider response shapes
// -----------------------------------------------------------------------------

// Numeric fields arrive string-encoded and must be parsed.
type quoteResponse struct {
	Close         string `json:"close"`
	Change        string `json:"change"`
	PercentChange string `json:"percent_change"`
	PreviousClose string `json:"previous_close"`
}

type timeSeriesPoint struct {
	Datetime string `json:"datetime"`
	Close    string `json:"close"`
}

type timeSeriesResponse struct {
	Values []timeSeriesPoint `json:"values"`
	Status string            `json:"status"`
	Code   int               `json:"code"`
	Msg    string            `json:"message"`
}

// -----------------------------------------------------------------------------
// Quote
// -----------------------------------------------------------------------------

// Quote fetches the current quote snapshot for a symbol.
func (c *Client) Quote(symbolExchange string) (models.MQuote, error) {
	symbol := BareSymbol(symbolExchange)

	body, err := c.get("/quote", map[string]string{"symbol": symbol})
	if err != nil {
		return models.MQuote{}, err
	}

	var resp quoteResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.MQuote{}, helpers.NewUpstreamError("malformed quote payload", err)
	}

	quote := models.MQuote{}
	fields := []struct {
		raw  string
		dest *float64
		name string
	}{
		{resp.Close, &quote.Price, "close"},
		{resp.Change, &quote.Change, "change"},
		{resp.PercentChange, &quote.ChangePercent, "percent_change"},
		{resp.PreviousClose, &quote.PreviousClose, "previous_close"},
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(f.raw, 64)
		if err != nil {
			return models.MQuote{}, helpers.NewUpstreamError(
				fmt.Sprintf("unparseable quote field %s=%q for %s", f.name, f.raw, symbol), err)
		}
		*f.dest = v
	}

	return quote, nil
}

// -----------------------------------------------------------------------------
// Time series
// -----------------------------------------------------------------------------

// Intraday window: enough 1-minute points to cover several trading days
// (3 x 390 regular-session minutes).
const intradayOutputSize = 1170

// IntradaySeries fetches the fine-grained window and buckets it by
// calendar date as reported in the provider's timezone.
func (c *Client) IntradaySeries(symbolExchange string) (models.MSeriesData, error) {
	symbol := BareSymbol(symbolExchange)

	values, err := c.timeSeries(symbol, "1min", intradayOutputSize)
	if err != nil {
		return models.MSeriesData{}, err
	}

	data := models.MSeriesData{
		TimeSeries:      make([]models.MPricePoint, 0, len(values)),
		TimeSeriesByDay: make(map[string][]models.MPricePoint),
	}

	for _, v := range values {
		price, err := strconv.ParseFloat(v.Close, 64)
		if err != nil {
			return models.MSeriesData{}, helpers.NewUpstreamError(
				fmt.Sprintf("unparseable close %q at %s for %s", v.Close, v.Datetime, symbol), err)
		}
		point := models.MPricePoint{Timestamp: v.Datetime, Price: price}
		data.TimeSeries = append(data.TimeSeries, point)

		// "2006-01-02 15:04:05" -> "2006-01-02"
		day, _, _ := strings.Cut(v.Datetime, " ")
		data.TimeSeriesByDay[day] = append(data.TimeSeriesByDay[day], point)
	}

	return data, nil
}

// -----------------------------------------------------------------------------

// DailySeries fetches about one year of one-point-per-day data, also
// grouped by month.
func (c *Client) DailySeries(symbolExchange string) (models.MDailySeries, error) {
	symbol := BareSymbol(symbolExchange)

	values, err := c.timeSeries(symbol, "1day", 365)
	if err != nil {
		return models.MDailySeries{}, err
	}

	data := models.MDailySeries{
		TimeSeries: make([]models.MPricePoint, 0, len(values)),
		ByMonth:    make(map[string][]models.MPricePoint),
	}

	for _, v := range values {
		price, err := strconv.ParseFloat(v.Close, 64)
		if err != nil {
			return models.MDailySeries{}, helpers.NewUpstreamError(
				fmt.Sprintf("unparseable close %q at %s for %s", v.Close, v.Datetime, symbol), err)
		}
		point := models.MPricePoint{Timestamp: v.Datetime, Price: price}
		data.TimeSeries = append(data.TimeSeries, point)

		if len(v.Datetime) >= 7 {
			month := v.Datetime[:7] // "2006-01"
			data.ByMonth[month] = append(data.ByMonth[month], point)
		}
	}

	return data, nil
}

// -----------------------------------------------------------------------------

func (c *Client) timeSeries(symbol, interval string, outputSize int) ([]timeSeriesPoint, error) {
	body, err := c.get("/time_series", map[string]string{
		"symbol":     symbol,
		"interval":   interval,
		"outputsize": strconv.Itoa(outputSize),
		"timezone":   c.Config.Chart.Timezone,
	})
	if err != nil {
		return nil, err
	}

	var resp timeSeriesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, helpers.NewUpstreamError("malformed time series payload", err)
	}
	if resp.Status == "error" {
		return nil, helpers.NewUpstreamError(
			fmt.Sprintf("provider error %d for %s: %s", resp.Code, symbol, resp.Msg), nil)
	}
	if resp.Values == nil {
		return nil, helpers.NewUpstreamError(fmt.Sprintf("no values in response for %s", symbol), nil)
	}

	return resp.Values, nil
}

// -----------------------------------------------------------------------------
// Symbol search
// -----------------------------------------------------------------------------

const primaryExchange = "NASDAQ"

// Search queries the provider symbol directory. Entries on the primary
// exchange sort first; the relative order within each group is preserved.
func (c *Client) Search(query string) ([]models.MSearchResult, error) {
	body, err := c.get("/symbol_search", map[string]string{"symbol": query})
	if err != nil {
		return nil, err
	}

	var resp models.MSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, helpers.NewUpstreamError("malformed search payload", err)
	}

	results := resp.Data
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Exchange == primaryExchange && results[j].Exchange != primaryExchange
	})

	return results, nil
}

// -----------------------------------------------------------------------------

func (c *Client) get(path string, params map[string]string) ([]byte, error) {
	if c.Config.Upstream.APIKey == "" {
		return nil, helpers.NewConfigurationError("API key is not configured")
	}

	params["apikey"] = c.Config.Upstream.APIKey
	body, err := c.Network.Get(c.Config.Upstream.BaseURL+path, params)
	if err != nil {
		return nil, helpers.NewUpstreamError("provider request failed", err)
	}
	return body, nil
}
