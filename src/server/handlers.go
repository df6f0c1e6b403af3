package server

import (
	"errors"
	"strconv"
	"time"

	"stocks-dashboard/src/helpers"
	"stocks-dashboard/src/models"
	"stocks-dashboard/src/reconcile"
	"stocks-dashboard/src/upstream"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *DashboardServer) getQuote(c *gin.Context) {
	symbol := c.Param("symbol")

	quote, err := s.Upstream.Quote(symbol)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(200, quote)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getIntraday(c *gin.Context) {
	symbol := c.Param("symbol")

	series, err := s.Upstream.IntradaySeries(symbol)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(200, series)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getDaily(c *gin.Context) {
	symbol := c.Param("symbol")

	series, err := s.Upstream.DailySeries(symbol)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(200, series)
}

// -----------------------------------------------------------------------------

// getChart returns the ready-to-draw session chart: history aligned to the
// fixed axis, live overlay when the market is open. The browser can pass
// its own latest tick via tick_price/tick_time; otherwise the last tick
// seen on any relay stream is used.
func (s *DashboardServer) getChart(c *gin.Context) {
	symbol := c.Param("symbol")

	tick, ok := clientTick(c, upstream.BareSymbol(symbol))
	if !ok {
		c.JSON(400, gin.H{"error": "invalid tick_price or tick_time"})
		return
	}
	if tick == nil {
		tick = s.lastTick(upstream.BareSymbol(symbol))
	}

	quote, err := s.Upstream.Quote(symbol)
	if err != nil {
		s.respondError(c, err)
		return
	}
	series, err := s.Upstream.IntradaySeries(symbol)
	if err != nil {
		s.respondError(c, err)
		return
	}

	status := s.Session.Classify(time.Now())
	date, bucket := reconcile.SelectBucket(status, series.TimeSeriesByDay)
	day, err := time.ParseInLocation("2006-01-02", date, s.Session.Location)
	if err != nil {
		day = status.LastSession
	}

	reconciled := reconcile.Reconcile(reconcile.Inputs{
		Status: status,
		Bucket: bucket,
		Day:    day,
		Quote:  quote,
		Tick:   tick,
		Axis:   s.axisConfig(),
	})

	c.JSON(200, reconcile.RenderLineChart(symbol, reconciled, quote, tick, status))
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getSearch(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(400, gin.H{"error": "missing query parameter 'query'"})
		return
	}

	results, err := s.Upstream.Search(query)
	if err != nil {
		// Search is the one endpoint whose upstream detail reaches the
		// browser (a bad query is actionable for the user).
		s.Logger.Error("Search for %q failed: %v", query, err)
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, results)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getWatchlist(c *gin.Context) {
	c.JSON(200, s.Watchlist.List())
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) toggleWatchlist(c *gin.Context) {
	var entry models.MWatchlistEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		c.JSON(400, gin.H{"error": "invalid watchlist entry"})
		return
	}
	if entry.Symbol == "" {
		c.JSON(400, gin.H{"error": "missing symbol"})
		return
	}

	present, err := s.Watchlist.Toggle(entry)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(200, gin.H{
		"present":   present,
		"watchlist": s.Watchlist.List(),
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getHealth(c *gin.Context) {
	s.countMutex.RLock()
	connections := s.connCount
	s.countMutex.RUnlock()

	status := s.Session.Classify(time.Now())

	c.JSON(200, gin.H{
		"status":       "ok",
		"connections":  connections,
		"market_state": status.State.String(),
	})
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// respondError logs the real failure and answers with an opaque message:
// upstream detail never leaks through the proxy endpoints.
func (s *DashboardServer) respondError(c *gin.Context, err error) {
	s.Logger.Error("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)

	var confErr *helpers.ConfigurationError
	if errors.As(err, &confErr) {
		c.JSON(500, gin.H{"error": "server configuration error"})
		return
	}
	c.JSON(500, gin.H{"error": "upstream request failed"})
}

// clientTick builds a tick from the optional tick_price/tick_time query
// parameters. Returns (nil, true) when the parameters are absent and
// (nil, false) when they are present but unusable.
func clientTick(c *gin.Context, symbol string) (*models.MLiveTick, bool) {
	priceParam := c.Query("tick_price")
	timeParam := c.Query("tick_time")
	if priceParam == "" && timeParam == "" {
		return nil, true
	}

	price, err := strconv.ParseFloat(priceParam, 64)
	if err != nil {
		return nil, false
	}
	at, err := strconv.ParseInt(timeParam, 10, 64)
	if err != nil {
		return nil, false
	}

	return &models.MLiveTick{Symbol: symbol, Price: price, Timestamp: at}, true
}

func (s *DashboardServer) axisConfig() reconcile.AxisConfig {
	return reconcile.AxisConfig{
		OpenMinutes:  s.Config.SessionOpenMinutes(),
		CloseMinutes: s.Config.SessionCloseMinutes(),
		StepMinutes:  s.Config.Chart.StepMinutes,
		Location:     s.Session.Location,
	}
}
