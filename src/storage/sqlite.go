package storage

import (
	"database/sql"
	"fmt"

	"stocks-dashboard/src/logger"
	"stocks-dashboard/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type SQLiteStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteStore(cfg *models.MConfig, log *logger.Logger) (*SQLiteStore, error) {
	return &SQLiteStore{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (s *SQLiteStore) Initialize() error {
	db, err := sql.Open("sqlite", s.Config.Storage.DBPath)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	s.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		s.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		s.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	// The watchlist survives restarts, so the table is created, never
	// recreated.
	query := `
		CREATE TABLE IF NOT EXISTS watchlist (
			position INTEGER PRIMARY KEY,
			symbol   TEXT NOT NULL,
			exchange TEXT NOT NULL
		);
	`
	if _, err := s.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create watchlist table: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *SQLiteStore) Load() ([]models.MWatchlistEntry, error) {
	rows, err := s.DB.Query("SELECT symbol, exchange FROM watchlist ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to load watchlist: %w", err)
	}
	defer rows.Close()

	entries := []models.MWatchlistEntry{}
	for rows.Next() {
		var e models.MWatchlistEntry
		if err := rows.Scan(&e.Symbol, &e.Exchange); err != nil {
			return nil, fmt.Errorf("failed to scan watchlist row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// -----------------------------------------------------------------------------

func (s *SQLiteStore) Save(entries []models.MWatchlistEntry) error {
	tx, err := s.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM watchlist"); err != nil {
		return fmt.Errorf("failed to clear watchlist: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO watchlist (position, symbol, exchange) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, e := range entries {
		if _, err := stmt.Exec(i, e.Symbol, e.Exchange); err != nil {
			return fmt.Errorf("failed to insert %s: %w", e.Symbol, err)
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (s *SQLiteStore) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}
