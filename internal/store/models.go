package store

import "time"

// MirrorField selects which pending-mirror records a query returns.
type MirrorField string

const (
	// MirrorHistory selects films whose watch event is not yet in Plex.
	MirrorHistory MirrorField = "history"
	// MirrorRating selects rated films whose rating is not yet in Plex.
	MirrorRating MirrorField = "ratings"
	// MirrorBoth selects rated films missing both the watch event and the
	// rating, so one navigation can settle both.
	MirrorBoth MirrorField = "both"
)

// FilmRecord is one watched event ingested from Trakt.
type FilmRecord struct {
	HistoryID int64
	Slug      string
	IMDbID    string
	TMDBID    int64
	Title     string
	Year      int
	WatchedAt time.Time
	Rated     bool
	Rating    int
	// PlexHistory and PlexRating flip to true once Plex reflects the watch
	// event and the rating. They never revert.
	PlexHistory bool
	PlexRating  bool
}

// PendingRating is a watched film awaiting a rating decision.
type PendingRating struct {
	Slug  string
	Title string
}
