package trakt

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"reelsync/internal/services"
	"reelsync/internal/store"
)

// historyItem is one watch event as returned by the history endpoints.
type historyItem struct {
	ID        int64  `json:"id"`
	WatchedAt string `json:"watched_at"`
	Movie     movie  `json:"movie"`
}

type movie struct {
	Title string   `json:"title"`
	Year  int      `json:"year"`
	IDs   movieIDs `json:"ids"`
}

type movieIDs struct {
	Slug string `json:"slug"`
	IMDb string `json:"imdb"`
	TMDB int64  `json:"tmdb"`
}

// IngestReport summarizes a history ingestion run.
type IngestReport struct {
	Pages    int
	Fetched  int
	Inserted int
}

// HistorySource ingests Trakt watch-history events into the store.
type HistorySource struct {
	client   *Client
	store    *store.Store
	pageSize int
	logger   *slog.Logger
}

// NewHistorySource builds a HistorySource over the given client and store.
func NewHistorySource(client *Client, st *store.Store, pageSize int, logger *slog.Logger) *HistorySource {
	if pageSize <= 0 {
		pageSize = 100
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HistorySource{client: client, store: st, pageSize: pageSize, logger: logger}
}

// FetchRecent ingests the most recent page of watch events.
func (h *HistorySource) FetchRecent(ctx context.Context) (IngestReport, error) {
	var items []historyItem
	if err := h.client.getJSON(ctx, "/sync/history/movies", &items); err != nil {
		return IngestReport{}, err
	}

	report := IngestReport{Pages: 1}
	if err := h.ingest(ctx, items, &report); err != nil {
		return report, err
	}
	h.logger.Info("recent history ingested", slog.Int("fetched", report.Fetched), slog.Int("inserted", report.Inserted))
	return report, nil
}

// FetchAll ingests the complete watch history via sequential pagination.
// Pagination terminates on the first empty page; a page shorter than the page
// size is still followed by one more request to confirm exhaustion. A
// transport failure aborts the run, keeping pages already committed.
func (h *HistorySource) FetchAll(ctx context.Context) (IngestReport, error) {
	var report IngestReport
	for page := 1; ; page++ {
		path := fmt.Sprintf("/sync/history/movies?page=%d&limit=%d", page, h.pageSize)
		var items []historyItem
		if err := h.client.getJSON(ctx, path, &items); err != nil {
			return report, err
		}
		report.Pages++

		if len(items) == 0 {
			break
		}
		if err := h.ingest(ctx, items, &report); err != nil {
			return report, err
		}
	}

	h.logger.Info("full history ingested",
		slog.Int("pages", report.Pages),
		slog.Int("fetched", report.Fetched),
		slog.Int("inserted", report.Inserted))
	return report, nil
}

func (h *HistorySource) ingest(ctx context.Context, items []historyItem, report *IngestReport) error {
	for _, item := range items {
		rec, err := mapHistoryItem(item)
		if err != nil {
			return err
		}
		inserted, err := h.store.InsertIfAbsent(ctx, rec)
		if err != nil {
			return err
		}
		report.Fetched++
		if inserted {
			report.Inserted++
		}
	}
	return nil
}

func mapHistoryItem(item historyItem) (store.FilmRecord, error) {
	if item.ID == 0 {
		return store.FilmRecord{}, services.Wrap(services.ErrMalformedResponse, "trakt", "map history event", "missing id", nil)
	}
	if item.Movie.IDs.Slug == "" {
		return store.FilmRecord{}, services.Wrap(services.ErrMalformedResponse, "trakt", "map history event", fmt.Sprintf("event %d missing movie slug", item.ID), nil)
	}
	if item.Movie.Title == "" {
		return store.FilmRecord{}, services.Wrap(services.ErrMalformedResponse, "trakt", "map history event", fmt.Sprintf("event %d missing movie title", item.ID), nil)
	}

	rec := store.FilmRecord{
		HistoryID: item.ID,
		Slug:      item.Movie.IDs.Slug,
		IMDbID:    item.Movie.IDs.IMDb,
		TMDBID:    item.Movie.IDs.TMDB,
		Title:     item.Movie.Title,
		Year:      item.Movie.Year,
	}
	if item.WatchedAt != "" {
		watched, err := time.Parse(time.RFC3339, item.WatchedAt)
		if err != nil {
			return store.FilmRecord{}, services.Wrap(services.ErrMalformedResponse, "trakt", "map history event", fmt.Sprintf("event %d bad watched_at %q", item.ID, item.WatchedAt), err)
		}
		rec.WatchedAt = watched
	}
	return rec, nil
}
