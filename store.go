package main

import "context"

// Store defines the persistence interface for the movie collection. The
// collection is the unit of consistency: implementations must guarantee
// that concurrent mutations cannot overwrite each other's changes.
type Store interface {
	// List returns every movie in insertion order. An empty collection is
	// a valid state, not an error.
	List(ctx context.Context) ([]Movie, error)

	// Create appends a movie with the given title, the next free id, and
	// watched unset. Returns ErrEmptyTitle when the title is empty.
	Create(ctx context.Context, title string) (Movie, error)

	// ToggleWatched flips the watched flag of the movie with the given id
	// and returns the updated record. Returns ErrNotFound for unknown ids.
	ToggleWatched(ctx context.Context, id int) (Movie, error)

	// Delete removes the movie with the given id. Returns ErrNotFound for
	// unknown ids.
	Delete(ctx context.Context, id int) error
}

// nextID assigns 1 + the highest id in use, or 1 for an empty collection.
// An id freed by deleting the highest record can be reissued; ids below
// the current maximum never are.
func nextID(movies []Movie) int {
	max := 0
	for _, m := range movies {
		if m.ID > max {
			max = m.ID
		}
	}
	return max + 1
}
