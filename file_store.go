package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore implements Store on top of a single JSON file holding the whole
// collection. Every operation reads the file in full and every mutation
// rewrites it in full; a mutex serializes access so two concurrent mutations
// cannot interleave their load/save pairs and lose an update.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a FileStore backed by the given path. The file is
// created on first save; a missing file reads as an empty collection.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) List(_ context.Context) ([]Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

func (s *FileStore) Create(_ context.Context, title string) (Movie, error) {
	if title == "" {
		return Movie{}, ErrEmptyTitle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	movies, err := s.load()
	if err != nil {
		return Movie{}, err
	}

	movie := Movie{ID: nextID(movies), Title: title}
	movies = append(movies, movie)

	if err := s.save(movies); err != nil {
		return Movie{}, err
	}

	return movie, nil
}

func (s *FileStore) ToggleWatched(_ context.Context, id int) (Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	movies, err := s.load()
	if err != nil {
		return Movie{}, err
	}

	for i := range movies {
		if movies[i].ID != id {
			continue
		}
		movies[i].Watched = !movies[i].Watched
		if err := s.save(movies); err != nil {
			return Movie{}, err
		}
		return movies[i], nil
	}

	return Movie{}, ErrNotFound
}

func (s *FileStore) Delete(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	movies, err := s.load()
	if err != nil {
		return err
	}

	kept := make([]Movie, 0, len(movies))
	for _, m := range movies {
		if m.ID != id {
			kept = append(kept, m)
		}
	}

	if len(kept) == len(movies) {
		return ErrNotFound
	}

	return s.save(kept)
}

// load reads and parses the whole collection. A missing file is the empty
// state before anything has been saved, not an error.
func (s *FileStore) load() ([]Movie, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return []Movie{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	var movies []Movie
	if err := json.Unmarshal(data, &movies); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}

	return movies, nil
}

// save serializes the whole collection and replaces the file via a temp file
// and rename, so a crash mid-write cannot leave a truncated collection
// behind. The two-space indentation matches the layout existing deployments
// have on disk.
func (s *FileStore) save(movies []Movie) error {
	data, err := json.MarshalIndent(movies, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding movies: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".movies-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}

	return nil
}
