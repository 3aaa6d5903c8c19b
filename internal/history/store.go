package history

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

const timeLayout = "2006-01-02 15:04:05"

// Entry is one recorded dashboard view
type Entry struct {
	ID            int
	Fragment      string
	Respondents   int64
	ActiveFilters int
	VisitedAt     time.Time
}

// Store persists recently visited fragments across sessions
type Store struct {
	db *sql.DB
}

// NewStore opens (and creates) the history database at path
func NewStore(path string) (*Store, error) {
	return open("sqlite3", path)
}

func open(driver, path string) (*Store, error) {
	db, err := sql.Open(driver, path)
	if err != nil {
		return nil, err
	}

	// Create schema
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Add records a view. Empty fragments are not stored.
func (s *Store) Add(e Entry) error {
	if e.Fragment == "" {
		return nil
	}
	visited := e.VisitedAt
	if visited.IsZero() {
		visited = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO view_history (fragment, respondents, active_filters, visited_at)
		VALUES (?, ?, ?, ?)`,
		e.Fragment,
		e.Respondents,
		e.ActiveFilters,
		visited.UTC().Format(timeLayout),
	)
	return err
}

// GetRecent returns the latest visit of each fragment, newest first
func (s *Store) GetRecent(limit int) ([]Entry, error) {
	return s.query(`
		SELECT id, fragment, respondents, active_filters, visited_at
		FROM view_history
		WHERE id IN (SELECT MAX(id) FROM view_history GROUP BY fragment)
		ORDER BY visited_at DESC, id DESC
		LIMIT ?`, limit)
}

// Search matches fragments containing text
func (s *Store) Search(text string, limit int) ([]Entry, error) {
	return s.query(`
		SELECT id, fragment, respondents, active_filters, visited_at
		FROM view_history
		WHERE fragment LIKE ?
		ORDER BY visited_at DESC, id DESC
		LIMIT ?`, "%"+text+"%", limit)
}

// Prune keeps the newest keep rows
func (s *Store) Prune(keep int) error {
	_, err := s.db.Exec(`
		DELETE FROM view_history
		WHERE id NOT IN (SELECT id FROM view_history ORDER BY id DESC LIMIT ?)`, keep)
	return err
}

func (s *Store) query(q string, args ...any) ([]Entry, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var visitedAt string
		if err := rows.Scan(&e.ID, &e.Fragment, &e.Respondents, &e.ActiveFilters, &visitedAt); err != nil {
			return nil, err
		}
		e.VisitedAt, _ = time.Parse(timeLayout, visitedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
