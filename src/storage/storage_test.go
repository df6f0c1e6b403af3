package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"stocks-dashboard/src/logger"
	"stocks-dashboard/src/models"
)

// -----------------------------------------------------------------------------

func testConfig(t *testing.T, backend string) *models.MConfig {
	t.Helper()
	cfg := &models.MConfig{}
	cfg.Storage.DBType = backend
	switch backend {
	case "file":
		cfg.Storage.DBPath = filepath.Join(t.TempDir(), "watchlist.json")
	case "sqlite":
		cfg.Storage.DBPath = filepath.Join(t.TempDir(), "watchlist.db")
	}
	return cfg
}

func testLogger() *logger.Logger {
	return logger.NewLogger("storage-test")
}

func aapl() models.MWatchlistEntry {
	return models.MWatchlistEntry{Symbol: "AAPL", Exchange: "NASDAQ"}
}

func msft() models.MWatchlistEntry {
	return models.MWatchlistEntry{Symbol: "MSFT", Exchange: "NASDAQ"}
}

// -----------------------------------------------------------------------------

func TestFileStoreRoundTrip(t *testing.T) {
	cfg := testConfig(t, "file")
	store, err := NewFileStore(cfg, testLogger())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	entries, err := store.Load()
	if err != nil {
		t.Fatalf("load before first save: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("fresh store should be empty, got %+v", entries)
	}

	want := []models.MWatchlistEntry{aapl(), msft()}
	if err := store.Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}

	entries, err = store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 2 || entries[0] != want[0] || entries[1] != want[1] {
		t.Errorf("round trip lost order or data: %+v", entries)
	}
}

func TestFileStoreCorruptionDegradesToEmpty(t *testing.T) {
	cfg := testConfig(t, "file")
	store, _ := NewFileStore(cfg, testLogger())
	if err := store.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	if err := os.WriteFile(cfg.Storage.DBPath, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	entries, err := store.Load()
	if err != nil {
		t.Fatalf("corruption must not surface as an error, got %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("corrupt data should degrade to empty, got %+v", entries)
	}

	// The next save overwrites the bad file and recovers the store.
	if err := store.Save([]models.MWatchlistEntry{aapl()}); err != nil {
		t.Fatalf("save after corruption: %v", err)
	}
	entries, err = store.Load()
	if err != nil || len(entries) != 1 {
		t.Errorf("store did not recover: %v %+v", err, entries)
	}
}

// -----------------------------------------------------------------------------

func TestSQLiteStoreRoundTrip(t *testing.T) {
	cfg := testConfig(t, "sqlite")
	store, err := NewSQLiteStore(cfg, testLogger())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	defer store.Close()

	want := []models.MWatchlistEntry{msft(), aapl()}
	if err := store.Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}

	entries, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 2 || entries[0] != want[0] || entries[1] != want[1] {
		t.Errorf("round trip lost order or data: %+v", entries)
	}

	// Save replaces, never appends.
	if err := store.Save([]models.MWatchlistEntry{aapl()}); err != nil {
		t.Fatalf("second save: %v", err)
	}
	entries, _ = store.Load()
	if len(entries) != 1 || entries[0] != aapl() {
		t.Errorf("save should replace the full set, got %+v", entries)
	}
}

// -----------------------------------------------------------------------------

func TestWatchlistToggleIsSelfInverse(t *testing.T) {
	cfg := testConfig(t, "file")
	store, _ := NewFileStore(cfg, testLogger())
	if err := store.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	wl, err := NewWatchlist(store, testLogger())
	if err != nil {
		t.Fatalf("new watchlist: %v", err)
	}
	defer wl.Close()

	present, err := wl.Toggle(aapl())
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !present || !wl.IsPresent(aapl()) {
		t.Fatal("first toggle should add the entry")
	}

	present, err = wl.Toggle(aapl())
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if present || wl.IsPresent(aapl()) {
		t.Fatal("second toggle should remove the entry")
	}
	if got := wl.List(); len(got) != 0 {
		t.Errorf("list should be empty after toggle twice, got %+v", got)
	}
}

func TestWatchlistPersistsAcrossReload(t *testing.T) {
	cfg := testConfig(t, "file")
	store, _ := NewFileStore(cfg, testLogger())
	if err := store.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	wl, err := NewWatchlist(store, testLogger())
	if err != nil {
		t.Fatalf("new watchlist: %v", err)
	}
	if _, err := wl.Toggle(aapl()); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if _, err := wl.Toggle(msft()); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	wl.Close()

	reloadedStore, _ := NewFileStore(cfg, testLogger())
	reloaded, err := NewWatchlist(reloadedStore, testLogger())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	defer reloaded.Close()

	got := reloaded.List()
	if len(got) != 2 || got[0] != aapl() || got[1] != msft() {
		t.Errorf("reloaded list = %+v", got)
	}
}

func TestWatchlistNotifiesSubscribers(t *testing.T) {
	cfg := testConfig(t, "file")
	store, _ := NewFileStore(cfg, testLogger())
	if err := store.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	wl, err := NewWatchlist(store, testLogger())
	if err != nil {
		t.Fatalf("new watchlist: %v", err)
	}
	defer wl.Close()

	ch := wl.Subscribe()

	if _, err := wl.Toggle(aapl()); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	select {
	case snapshot := <-ch:
		if len(snapshot) != 1 || snapshot[0] != aapl() {
			t.Errorf("snapshot = %+v", snapshot)
		}
	case <-time.After(time.Second):
		t.Fatal("no notification after a change")
	}

	wl.Unsubscribe(ch)
	if _, open := <-ch; open {
		t.Error("unsubscribed channel should be closed")
	}
}

func TestWatchlistSlowSubscriberGetsLatestSnapshot(t *testing.T) {
	cfg := testConfig(t, "file")
	store, _ := NewFileStore(cfg, testLogger())
	if err := store.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	wl, err := NewWatchlist(store, testLogger())
	if err != nil {
		t.Fatalf("new watchlist: %v", err)
	}
	defer wl.Close()

	ch := wl.Subscribe()

	// Two changes without a receive in between: the stale snapshot is
	// replaced, not queued behind.
	if _, err := wl.Toggle(aapl()); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if _, err := wl.Toggle(msft()); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	select {
	case snapshot := <-ch:
		if len(snapshot) != 2 {
			t.Errorf("expected the latest snapshot with both entries, got %+v", snapshot)
		}
	case <-time.After(time.Second):
		t.Fatal("no notification after changes")
	}
}

// -----------------------------------------------------------------------------

// failingStore flips into a mode where every Save errors, like a full or
// read-only disk.
type failingStore struct {
	entries  []models.MWatchlistEntry
	failSave bool
}

func (f *failingStore) Initialize() error { return nil }

func (f *failingStore) Load() ([]models.MWatchlistEntry, error) {
	return f.entries, nil
}

func (f *failingStore) Save(entries []models.MWatchlistEntry) error {
	if f.failSave {
		return errors.New("disk full")
	}
	f.entries = append([]models.MWatchlistEntry(nil), entries...)
	return nil
}

func (f *failingStore) Close() error { return nil }

// -----------------------------------------------------------------------------

func TestWatchlistToggleRollsBackOnSaveFailure(t *testing.T) {
	store := &failingStore{entries: []models.MWatchlistEntry{aapl()}}
	w, err := NewWatchlist(store, testLogger())
	if err != nil {
		t.Fatalf("new watchlist: %v", err)
	}
	updates := w.Subscribe()

	store.failSave = true

	// A removal that fails to persist keeps the entry.
	if _, err := w.Toggle(aapl()); err == nil {
		t.Fatal("expected save error on removal")
	}
	if !w.IsPresent(aapl()) {
		t.Error("entry removed in memory despite failed save")
	}

	// An addition that fails to persist never appears.
	if _, err := w.Toggle(msft()); err == nil {
		t.Fatal("expected save error on addition")
	}
	if w.IsPresent(msft()) {
		t.Error("entry added in memory despite failed save")
	}
	if got := w.List(); len(got) != 1 || got[0].Symbol != "AAPL" {
		t.Errorf("list changed after failed saves: %+v", got)
	}

	// No notification for changes that did not happen.
	select {
	case snap := <-updates:
		t.Errorf("unexpected notification %+v", snap)
	default:
	}

	// Once saving works again, toggling resumes from the unchanged state.
	store.failSave = false
	present, err := w.Toggle(msft())
	if err != nil {
		t.Fatalf("toggle after recovery: %v", err)
	}
	if !present {
		t.Error("entry should be present after successful toggle")
	}
	if got := w.List(); len(got) != 2 {
		t.Errorf("expected 2 entries after recovery, got %+v", got)
	}
}
