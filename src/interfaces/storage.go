package interfaces

import "stocks-dashboard/src/models"

// -----------------------------------------------------------------------------
// IWatchlistStore defines the contract for watchlist persistence backends.
// -----------------------------------------------------------------------------

type IWatchlistStore interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the backing store (schema, file).
	Initialize() error

	// -----------------------------------------------------------------------------

	// Load returns all entries in insertion order. Unparseable persisted
	// data must degrade to an empty list, not an error to the caller.
	Load() ([]models.MWatchlistEntry, error)

	// -----------------------------------------------------------------------------

	// Save replaces the full persisted set. Last write wins.
	Save(entries []models.MWatchlistEntry) error

	// -----------------------------------------------------------------------------

	// Close the backing store
	Close() error
}
