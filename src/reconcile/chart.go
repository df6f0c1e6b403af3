package reconcile

import (
	"time"

	"stocks-dashboard/src/models"
	"stocks-dashboard/src/session"
)

// -----------------------------------------------------------------------------
// Chart rendering
// -----------------------------------------------------------------------------

const (
	colorUp      = "#16a34a"
	colorDown    = "#dc2626"
	colorNeutral = "#9ca3af"

	defaultMaxAxisTicks = 6
)

// -----------------------------------------------------------------------------

// RenderLineChart turns a reconciled series into a ready-to-draw line chart
// description: HH:MM labels, one dataset colored by trend against the
// previous close, gaps spanned, and a dashed reference line at the previous
// close. The client renders it verbatim.
func RenderLineChart(symbol string, series models.MReconciledSeries, quote models.MQuote, tick *models.MLiveTick, status session.MarketStatus) models.MChartConfig {
	labels := make([]string, len(series.Labels))
	for i, label := range series.Labels {
		labels[i] = clockLabel(label)
	}

	return models.MChartConfig{
		Data: models.MChartData{
			Labels: labels,
			Datasets: []models.MChartDataset{
				{
					Label:       symbol,
					Data:        series.Values,
					BorderColor: trendColor(series, quote, tick, status),
					BorderWidth: 2,
					PointRadius: 0,
					Tension:     0.2,
					SpanGaps:    true,
				},
			},
		},
		Options: models.MChartOptions{
			Title:        symbol + " " + status.LastSession.Format("Jan 2, 2006"),
			MaxAxisTicks: defaultMaxAxisTicks,
			ReferenceLine: &models.MReferenceLine{
				Value:  quote.PreviousClose,
				Dashed: true,
				Color:  colorNeutral,
			},
		},
	}
}

// -----------------------------------------------------------------------------

// trendColor picks the dataset color from the last known value against the
// previous close. Trend only means something while live data drives the
// line: a historical view stays neutral.
func trendColor(series models.MReconciledSeries, quote models.MQuote, tick *models.MLiveTick, status session.MarketStatus) string {
	if tick == nil || status.State != session.StateOpen {
		return colorNeutral
	}
	last, ok := lastValue(series)
	if !ok {
		return colorNeutral
	}
	if last >= quote.PreviousClose {
		return colorUp
	}
	return colorDown
}

// lastValue returns the most recent non-absent value.
func lastValue(series models.MReconciledSeries) (float64, bool) {
	for i := len(series.Values) - 1; i >= 0; i-- {
		if series.Values[i] != nil {
			return *series.Values[i], true
		}
	}
	return 0, false
}

// -----------------------------------------------------------------------------

// clockLabel reduces a provider timestamp to its HH:MM clock time.
func clockLabel(timestamp string) string {
	t, err := time.Parse(timestampLayout, timestamp)
	if err != nil {
		return timestamp
	}
	return t.Format("15:04")
}
