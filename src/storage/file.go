package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"stocks-dashboard/src/helpers"
	"stocks-dashboard/src/logger"
	"stocks-dashboard/src/models"
)

// -----------------------------------------------------------------------------

// FileStore persists the watchlist as a single JSON document on disk. This is
// the default backend: one key, whole-list read and whole-list write.
type FileStore struct {
	Config *models.MConfig
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewFileStore(cfg *models.MConfig, log *logger.Logger) (*FileStore, error) {
	return &FileStore{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (s *FileStore) Initialize() error {
	dir := filepath.Dir(s.Config.Storage.DBPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create storage directory %s: %w", dir, err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *FileStore) Load() ([]models.MWatchlistEntry, error) {
	raw, err := os.ReadFile(s.Config.Storage.DBPath)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.MWatchlistEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read watchlist file: %w", err)
	}

	var entries []models.MWatchlistEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		// Corrupted persisted data degrades to an empty watchlist. The bad
		// file gets overwritten on the next save.
		s.Logger.Warning("%v", helpers.NewStorageCorruptionError(s.Config.Storage.DBPath, err))
		return []models.MWatchlistEntry{}, nil
	}
	if entries == nil {
		entries = []models.MWatchlistEntry{}
	}
	return entries, nil
}

// -----------------------------------------------------------------------------

func (s *FileStore) Save(entries []models.MWatchlistEntry) error {
	raw, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode watchlist: %w", err)
	}

	// Write-then-rename so a crash mid-write never leaves a torn file.
	tmp := s.Config.Storage.DBPath + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write watchlist file: %w", err)
	}
	if err := os.Rename(tmp, s.Config.Storage.DBPath); err != nil {
		return fmt.Errorf("failed to replace watchlist file: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *FileStore) Close() error {
	return nil
}
