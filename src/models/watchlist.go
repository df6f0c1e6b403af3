package models

// MWatchlistEntry identifies a tradable instrument on a specific venue.
// Unique by (Symbol, Exchange); list ordering is insertion order.
type MWatchlistEntry struct {
	Symbol   string `json:"symbol"`
	Exchange string `json:"exchange"`
}

// SameKey reports whether two entries share the composite key.
func (e MWatchlistEntry) SameKey(other MWatchlistEntry) bool {
	return e.Symbol == other.Symbol && e.Exchange == other.Exchange
}
