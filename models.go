package main

// Movie is one entry in the watchlist. IDs are assigned by the store and
// are never supplied by callers.
type Movie struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Watched bool   `json:"watched"`
}

// CreateMovieRequest is the body accepted by the create endpoint.
type CreateMovieRequest struct {
	Title string `json:"title"`
}
