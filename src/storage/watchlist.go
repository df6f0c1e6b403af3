package storage

import (
	"sync"

	"stocks-dashboard/src/interfaces"
	"stocks-dashboard/src/logger"
	"stocks-dashboard/src/models"
)

// -----------------------------------------------------------------------------

// Watchlist is the in-memory working copy of the persisted symbol list, with
// change notifications for anything that tracks it (the live relay, the
// periodic refresher). All mutations go through Toggle, which is its own
// inverse, so the store and memory never drift apart.
type Watchlist struct {
	Store  interfaces.IWatchlistStore
	Logger *logger.Logger

	mu          sync.RWMutex
	entries     []models.MWatchlistEntry
	subscribers map[chan []models.MWatchlistEntry]struct{}
}

// -----------------------------------------------------------------------------

func NewWatchlist(store interfaces.IWatchlistStore, log *logger.Logger) (*Watchlist, error) {
	w := &Watchlist{
		Store:       store,
		Logger:      log,
		subscribers: make(map[chan []models.MWatchlistEntry]struct{}),
	}

	entries, err := store.Load()
	if err != nil {
		return nil, err
	}
	w.entries = entries
	return w, nil
}

// -----------------------------------------------------------------------------

// List returns a snapshot in insertion order.
func (w *Watchlist) List() []models.MWatchlistEntry {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.snapshot()
}

// -----------------------------------------------------------------------------

// IsPresent reports whether the entry's key is on the list.
func (w *Watchlist) IsPresent(entry models.MWatchlistEntry) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.indexOf(entry) >= 0
}

// -----------------------------------------------------------------------------

// Toggle adds the entry if absent and removes it if present, persists the
// result, and notifies subscribers. Returns whether the entry is on the list
// afterwards. Toggling twice restores the original list.
func (w *Watchlist) Toggle(entry models.MWatchlistEntry) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	// Snapshot first: removal shifts elements in place, so restoring the
	// old slice header would not undo it.
	prev := w.snapshot()

	present := false
	if i := w.indexOf(entry); i >= 0 {
		w.entries = append(w.entries[:i], w.entries[i+1:]...)
	} else {
		w.entries = append(w.entries, entry)
		present = true
	}

	if err := w.Store.Save(w.entries); err != nil {
		// Keep memory and store in sync: a failed save leaves the list
		// unchanged.
		w.entries = prev
		return w.indexOf(entry) >= 0, err
	}

	w.notify()
	return present, nil
}

// -----------------------------------------------------------------------------

// Subscribe returns a channel that receives a full snapshot after every
// change. Slow subscribers miss intermediate snapshots, never the latest
// state relative to their next receive.
func (w *Watchlist) Subscribe() chan []models.MWatchlistEntry {
	w.mu.Lock()
	defer w.mu.Unlock()

	ch := make(chan []models.MWatchlistEntry, 1)
	w.subscribers[ch] = struct{}{}
	return ch
}

// -----------------------------------------------------------------------------

// Unsubscribe removes and closes the channel.
func (w *Watchlist) Unsubscribe(ch chan []models.MWatchlistEntry) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.subscribers[ch]; ok {
		delete(w.subscribers, ch)
		close(ch)
	}
}

// -----------------------------------------------------------------------------

// Close shuts the backing store and drops all subscribers.
func (w *Watchlist) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for ch := range w.subscribers {
		delete(w.subscribers, ch)
		close(ch)
	}
	return w.Store.Close()
}

// -----------------------------------------------------------------------------

// notify sends a snapshot to every subscriber without blocking. Caller holds
// the lock.
func (w *Watchlist) notify() {
	for ch := range w.subscribers {
		select {
		case ch <- w.snapshot():
		default:
			// Subscriber still holds an older snapshot; drain it so the
			// latest one lands.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- w.snapshot():
			default:
			}
		}
	}
}

// snapshot copies the current list. Caller holds at least a read lock.
func (w *Watchlist) snapshot() []models.MWatchlistEntry {
	out := make([]models.MWatchlistEntry, len(w.entries))
	copy(out, w.entries)
	return out
}

// indexOf locates an entry by key. Caller holds at least a read lock.
func (w *Watchlist) indexOf(entry models.MWatchlistEntry) int {
	for i, e := range w.entries {
		if e.SameKey(entry) {
			return i
		}
	}
	return -1
}
