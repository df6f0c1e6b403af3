package refresher

import (
	"time"

	"stocks-dashboard/src/interfaces"
	"stocks-dashboard/src/logger"
	"stocks-dashboard/src/models"
	"stocks-dashboard/src/session"

	"github.com/robfig/cron/v3"
)

// -----------------------------------------------------------------------------

// Broadcaster pushes one message to every connected client.
type Broadcaster interface {
	Broadcast(message interface{})
}

// WatchlistSource is the read side of the watchlist.
type WatchlistSource interface {
	List() []models.MWatchlistEntry
}

// -----------------------------------------------------------------------------

// Refresher periodically re-quotes every watchlist symbol and pushes the
// batch to connected clients. It only fires while the session is open, so
// the schedule can stay simple.
type Refresher struct {
	Upstream  interfaces.IMarketData
	Watchlist WatchlistSource
	Session   *session.Classifier
	Target    Broadcaster
	Logger    *logger.Logger

	cron *cron.Cron
	now  func() time.Time
}

// -----------------------------------------------------------------------------

func NewRefresher(market interfaces.IMarketData, watchlist WatchlistSource, classifier *session.Classifier, target Broadcaster, log *logger.Logger) *Refresher {
	return &Refresher{
		Upstream:  market,
		Watchlist: watchlist,
		Session:   classifier,
		Target:    target,
		Logger:    log,
		cron:      cron.New(cron.WithSeconds(), cron.WithLocation(classifier.Location)),
		now:       time.Now,
	}
}

// -----------------------------------------------------------------------------

// Start registers the schedule and launches the cron runner.
func (r *Refresher) Start(spec string) error {
	if _, err := r.cron.AddFunc(spec, r.refresh); err != nil {
		return err
	}
	r.cron.Start()
	r.Logger.Info("Refresher scheduled: %s", spec)
	return nil
}

// -----------------------------------------------------------------------------

// Stop halts the schedule and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}

// -----------------------------------------------------------------------------

func (r *Refresher) refresh() {
	if !r.Session.IsOpen(r.now()) {
		return
	}

	entries := r.Watchlist.List()
	if len(entries) == 0 {
		return
	}

	quotes := make(map[string]models.MQuote, len(entries))
	for _, entry := range entries {
		quote, err := r.Upstream.Quote(entry.Symbol)
		if err != nil {
			// One bad symbol must not hold the rest of the batch hostage.
			r.Logger.Warning("Refresh failed for %s: %v", entry.Symbol, err)
			continue
		}
		quotes[entry.Symbol] = quote
	}

	if len(quotes) == 0 {
		return
	}

	r.Target.Broadcast(models.MQuoteBroadcast{
		Type:   "quotes",
		Quotes: quotes,
	})
}
