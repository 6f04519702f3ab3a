package mirror

import "context"

// Target is a film surface that only exposes a user interface, no write API.
// Implementations drive that interface with pointer gestures. Each navigation
// scopes the target to one film; ToggleWatched and SetRating act on the film
// most recently located by FindByTitleYear.
type Target interface {
	// EnsureSignedIn blocks until an authenticated session exists, prompting
	// for interactive sign-in when necessary.
	EnsureSignedIn(ctx context.Context) error

	// FindByTitleYear searches for the film and opens its detail view.
	// Returns an error wrapping services.ErrNoMatch when the search yields
	// nothing usable.
	FindByTitleYear(ctx context.Context, title string, year int) error

	// ToggleWatched flips the watched state of the open film.
	ToggleWatched(ctx context.Context) error

	// SetRating drags the rating control of the open film to value (1-10).
	SetRating(ctx context.Context, value int) error

	Close() error
}
