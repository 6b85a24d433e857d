package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using a SQLite database. The movies table
// uses INTEGER PRIMARY KEY, so SQLite assigns 1 + the highest id in use,
// the same id scheme as the file backend.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and ensures the
// schema exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing database: %w", err)
	}

	return store, nil
}

// NewInMemorySQLiteStore returns a store backed by an in-memory database,
// useful for tests. The pool is pinned to one connection because each
// connection would otherwise see its own empty in-memory database.
func NewInMemorySQLiteStore() (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing in-memory database: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS movies (
			id INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			watched INTEGER NOT NULL DEFAULT 0
		)
	`)
	return err
}

func (s *SQLiteStore) List(ctx context.Context) ([]Movie, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, title, watched FROM movies ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing movies: %w", err)
	}
	defer rows.Close()

	movies := []Movie{}
	for rows.Next() {
		var m Movie
		var watched int
		if err := rows.Scan(&m.ID, &m.Title, &watched); err != nil {
			return nil, fmt.Errorf("scanning movie: %w", err)
		}
		m.Watched = watched != 0
		movies = append(movies, m)
	}

	return movies, rows.Err()
}

func (s *SQLiteStore) Create(ctx context.Context, title string) (Movie, error) {
	if title == "" {
		return Movie{}, ErrEmptyTitle
	}

	res, err := s.db.ExecContext(ctx, "INSERT INTO movies (title, watched) VALUES (?, 0)", title)
	if err != nil {
		return Movie{}, fmt.Errorf("inserting movie: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return Movie{}, fmt.Errorf("reading new movie id: %w", err)
	}

	return Movie{ID: int(id), Title: title}, nil
}

// ToggleWatched flips the flag inside a transaction so the returned record
// reflects exactly the write this call performed.
func (s *SQLiteStore) ToggleWatched(ctx context.Context, id int) (Movie, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Movie{}, fmt.Errorf("beginning toggle transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "UPDATE movies SET watched = NOT watched WHERE id = ?", id)
	if err != nil {
		return Movie{}, fmt.Errorf("updating movie %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Movie{}, fmt.Errorf("updating movie %d: %w", id, err)
	}
	if affected == 0 {
		return Movie{}, ErrNotFound
	}

	var m Movie
	var watched int
	err = tx.QueryRowContext(ctx, "SELECT id, title, watched FROM movies WHERE id = ?", id).
		Scan(&m.ID, &m.Title, &watched)
	if errors.Is(err, sql.ErrNoRows) {
		return Movie{}, ErrNotFound
	}
	if err != nil {
		return Movie{}, fmt.Errorf("loading movie %d: %w", id, err)
	}
	m.Watched = watched != 0

	if err := tx.Commit(); err != nil {
		return Movie{}, fmt.Errorf("committing toggle: %w", err)
	}

	return m, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM movies WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting movie %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting movie %d: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
