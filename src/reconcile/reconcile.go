package reconcile

import (
	"time"

	"stocks-dashboard/src/models"
	"stocks-dashboard/src/session"
)

// -----------------------------------------------------------------------------
// Time axis
// -----------------------------------------------------------------------------

// AxisConfig fixes the session window and cadence of the chart axis.
// With the defaults (09:30-16:00, 1 minute) the axis has 391 slots.
type AxisConfig struct {
	OpenMinutes  int
	CloseMinutes int
	StepMinutes  int
	Location     *time.Location
}

// timestampLayout matches the provider's zoned datetime encoding.
const timestampLayout = "2006-01-02 15:04:05"

// -----------------------------------------------------------------------------

// BuildTimeAxis returns the fixed-cadence axis for one session on the given
// day: open to close inclusive. Purely a function of the configuration,
// never of fetched data, so its length is constant per configuration.
func BuildTimeAxis(day time.Time, cfg AxisConfig) []time.Time {
	base := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, cfg.Location)

	n := (cfg.CloseMinutes-cfg.OpenMinutes)/cfg.StepMinutes + 1
	if n < 1 {
		return nil
	}

	axis := make([]time.Time, 0, n)
	for m := cfg.OpenMinutes; m <= cfg.CloseMinutes; m += cfg.StepMinutes {
		axis = append(axis, base.Add(time.Duration(m)*time.Minute))
	}
	return axis
}

// -----------------------------------------------------------------------------
// Historical bucket selection
// -----------------------------------------------------------------------------

// How far back to look for a non-empty bucket when the preferred day has no
// data (covers weekends plus an unobserved holiday).
const maxLookbackDays = 7

// SelectBucket picks the historical day to display:
//   - weekend: the most recent completed session's bucket
//   - closed weekday before open: the previous session's bucket
//     (Friday when today is Monday)
//   - closed weekday after close: today's bucket if present, else the
//     previous session's
//   - open: today's bucket
//
// The classifier already encodes those rules in MarketStatus.LastSession;
// when the preferred date has no data the walk continues backward over
// weekdays so the chart still shows the latest session with data.
func SelectBucket(status session.MarketStatus, buckets map[string][]models.MPricePoint) (string, []models.MPricePoint) {
	day := status.LastSession
	date := day.Format("2006-01-02")
	if points := buckets[date]; len(points) > 0 {
		return date, points
	}

	for i := 0; i < maxLookbackDays; i++ {
		day = day.AddDate(0, 0, -1)
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		candidate := day.Format("2006-01-02")
		if points := buckets[candidate]; len(points) > 0 {
			return candidate, points
		}
	}

	// Nothing usable: report the preferred date with an empty bucket so the
	// series comes out all-absent.
	return date, nil
}

// -----------------------------------------------------------------------------
// Reconciliation
// -----------------------------------------------------------------------------

// Inputs for one reconciliation pass. Tick is nil until the first live
// update arrives; only the most recent tick matters.
type Inputs struct {
	Status session.MarketStatus
	Bucket []models.MPricePoint
	Day    time.Time // calendar day the axis spans
	Quote  models.MQuote
	Tick   *models.MLiveTick
	Axis   AxisConfig
}

// -----------------------------------------------------------------------------

// Reconcile aligns the selected historical bucket to the fixed session axis
// and overlays live data:
//
//  1. every axis slot resolves by exact hour:minute match against the
//     bucket; unmatched slots are absent
//  2. when the session is open and a tick exists, the first slot at or
//     after the tick's time takes the tick price and every later slot is
//     forced absent (no synthetic future data)
//  3. when the session is open and no tick has arrived yet, the last slot
//     carries the quote price for visual continuity
//
// The output always has exactly one value per axis slot.
func Reconcile(in Inputs) models.MReconciledSeries {
	axis := BuildTimeAxis(in.Day, in.Axis)

	// Bucket data may have irregular or missing minutes; first point for a
	// given hour:minute wins.
	byMinute := make(map[string]float64, len(in.Bucket))
	for _, p := range in.Bucket {
		clock := minuteOf(p.Timestamp)
		if clock == "" {
			continue
		}
		if _, seen := byMinute[clock]; !seen {
			byMinute[clock] = p.Price
		}
	}

	series := models.MReconciledSeries{
		Labels: make([]string, len(axis)),
		Values: make([]*float64, len(axis)),
	}
	for i, at := range axis {
		series.Labels[i] = at.Format(timestampLayout)
		if price, ok := byMinute[at.Format("15:04")]; ok {
			v := price
			series.Values[i] = &v
		}
	}

	if in.Status.State != session.StateOpen {
		return series
	}

	if in.Tick != nil && len(series.Values) > 0 {
		idx := overlayIndex(axis, in.Tick, in.Axis.Location)
		tickPrice := in.Tick.Price
		series.Values[idx] = &tickPrice
		for j := idx + 1; j < len(series.Values); j++ {
			series.Values[j] = nil
		}
		return series
	}

	// No live tick yet: fall back to the quote for the final slot.
	if len(series.Values) > 0 {
		price := in.Quote.Price
		series.Values[len(series.Values)-1] = &price
	}

	return series
}

// -----------------------------------------------------------------------------

// overlayIndex finds the first axis slot at or after the tick's timestamp,
// clamped into the axis range.
func overlayIndex(axis []time.Time, tick *models.MLiveTick, loc *time.Location) int {
	at := time.Unix(tick.Timestamp, 0).In(loc)
	for i, slot := range axis {
		if !slot.Before(at) {
			return i
		}
	}
	return len(axis) - 1
}

// -----------------------------------------------------------------------------

// minuteOf extracts "15:04" from a provider timestamp.
func minuteOf(timestamp string) string {
	t, err := time.Parse(timestampLayout, timestamp)
	if err != nil {
		return ""
	}
	return t.Format("15:04")
}
