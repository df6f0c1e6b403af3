package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"stocks-dashboard/src/logger"
	"stocks-dashboard/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresStore(cfg *models.MConfig, log *logger.Logger) (*PostgresStore, error) {
	// Schema named after the executable keeps several deployments apart on a
	// shared database.
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable name: %w", err)
	}
	name := filepath.Base(exe)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	return &PostgresStore{
		Config: cfg,
		Schema: name,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (s *PostgresStore) Initialize() error {
	db, err := sql.Open("postgres", s.Config.Storage.DBConnectionString)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	s.DB = db

	if _, err := s.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, s.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", s.Schema, err)
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s".watchlist (
			position INTEGER PRIMARY KEY,
			symbol   TEXT NOT NULL,
			exchange TEXT NOT NULL
		);
	`, s.Schema)
	if _, err := s.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create watchlist table: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *PostgresStore) Load() ([]models.MWatchlistEntry, error) {
	query := fmt.Sprintf(`SELECT symbol, exchange FROM "%s".watchlist ORDER BY position`, s.Schema)
	rows, err := s.DB.Query(query)
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

func (s *PostgresStore) Save(entries []models.MWatchlistEntry) error {
	tx, err := s.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(fmt.Sprintf(`DELETE FROM "%s".watchlist`, s.Schema)); err != nil {
		return fmt.Errorf("failed to clear watchlist: %w", err)
	}

	stmt, err := tx.Prepare(fmt.Sprintf(
		`INSERT INTO "%s".watchlist (position, symbol, exchange) VALUES ($1, $2, $3)`, s.Schema))
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

func (s *PostgresStore) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}
