package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func tempStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "movies.json"))
}

func TestFileStore_ListMissingFile(t *testing.T) {
	store := tempStore(t)

	movies, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(movies) != 0 {
		t.Fatalf("expected empty collection, got %v", movies)
	}
}

func TestFileStore_CreateAssignsIncreasingIDs(t *testing.T) {
	store := tempStore(t)
	ctx := context.Background()

	for i, title := range []string{"Dune", "Alien", "Heat"} {
		movie, err := store.Create(ctx, title)
		if err != nil {
			t.Fatalf("Create %q: %v", title, err)
		}
		if movie.ID != i+1 {
			t.Fatalf("expected id %d, got %d", i+1, movie.ID)
		}
		if movie.Title != title {
			t.Fatalf("expected title %q, got %q", title, movie.Title)
		}
		if movie.Watched {
			t.Fatal("expected watched to default to false")
		}
	}

	movies, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(movies) != 3 {
		t.Fatalf("expected 3 movies, got %d", len(movies))
	}
}

func TestFileStore_CreateEmptyTitle(t *testing.T) {
	store := tempStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, "")
	if !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}

	// The rejected create must not have touched the collection.
	if _, err := os.Stat(store.path); !os.IsNotExist(err) {
		t.Fatalf("expected no file to be written, stat err: %v", err)
	}
}

func TestFileStore_CreateReissuesHighestDeletedID(t *testing.T) {
	store := tempStore(t)
	ctx := context.Background()

	store.Create(ctx, "Dune")
	store.Create(ctx, "Alien")

	if err := store.Delete(ctx, 2); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	// max+1 assignment: with the highest record gone, its id comes back.
	movie, err := store.Create(ctx, "Heat")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if movie.ID != 2 {
		t.Fatalf("expected id 2 after deleting the highest record, got %d", movie.ID)
	}
}

func TestFileStore_ToggleWatchedInvolution(t *testing.T) {
	store := tempStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "Dune")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	toggled, err := store.ToggleWatched(ctx, created.ID)
	if err != nil {
		t.Fatalf("ToggleWatched: %v", err)
	}
	if !toggled.Watched {
		t.Fatal("expected watched=true after first toggle")
	}

	toggled, err = store.ToggleWatched(ctx, created.ID)
	if err != nil {
		t.Fatalf("ToggleWatched: %v", err)
	}
	if toggled.Watched {
		t.Fatal("expected watched=false after second toggle")
	}
}

func TestFileStore_ToggleWatchedMissing(t *testing.T) {
	store := tempStore(t)

	_, err := store.ToggleWatched(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFileStore_Delete(t *testing.T) {
	store := tempStore(t)
	ctx := context.Background()

	store.Create(ctx, "Dune")
	store.Create(ctx, "Alien")

	if err := store.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	movies, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(movies) != 1 {
		t.Fatalf("expected 1 movie after delete, got %d", len(movies))
	}
	for _, m := range movies {
		if m.ID == 1 {
			t.Fatal("expected id 1 to be gone")
		}
	}
}

func TestFileStore_DeleteMissing(t *testing.T) {
	store := tempStore(t)
	ctx := context.Background()

	store.Create(ctx, "Dune")

	err := store.Delete(ctx, 42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	movies, _ := store.List(ctx)
	if len(movies) != 1 {
		t.Fatalf("expected collection length unchanged, got %d", len(movies))
	}
}

func TestFileStore_MalformedFile(t *testing.T) {
	store := tempStore(t)

	if err := os.WriteFile(store.path, []byte("not json"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := store.List(context.Background()); err == nil {
		t.Fatal("expected an error for a malformed file")
	}
}

func TestFileStore_OnDiskLayout(t *testing.T) {
	store := tempStore(t)

	if _, err := store.Create(context.Background(), "Dune"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	data, err := os.ReadFile(store.path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	want := "[\n  {\n    \"id\": 1,\n    \"title\": \"Dune\",\n    \"watched\": false\n  }\n]"
	if string(data) != want {
		t.Fatalf("unexpected on-disk layout:\n%s", data)
	}
}

func TestFileStore_SaveLoadRoundTrip(t *testing.T) {
	store := tempStore(t)
	ctx := context.Background()

	store.Create(ctx, "Dune")
	store.Create(ctx, "Alien")
	store.ToggleWatched(ctx, 2)

	before, err := os.ReadFile(store.path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	movies, err := store.load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := store.save(movies); err != nil {
		t.Fatalf("save: %v", err)
	}

	after, err := os.ReadFile(store.path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(before) != string(after) {
		t.Fatalf("save(load()) changed the file:\nbefore: %s\nafter: %s", before, after)
	}
}

func TestFileStore_ConcurrentCreates(t *testing.T) {
	store := tempStore(t)
	ctx := context.Background()
	const writers = 20

	var wg sync.WaitGroup
	errs := make(chan error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := store.Create(ctx, fmt.Sprintf("movie-%d", i)); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent Create: %v", err)
	}

	movies, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(movies) != writers {
		t.Fatalf("expected %d movies, got %d (lost update)", writers, len(movies))
	}

	seen := make(map[int]bool, len(movies))
	for _, m := range movies {
		if seen[m.ID] {
			t.Fatalf("duplicate id %d", m.ID)
		}
		seen[m.ID] = true
	}
}
