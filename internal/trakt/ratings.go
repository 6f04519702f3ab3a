package trakt

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"reelsync/internal/services"
	"reelsync/internal/store"
)

type ratingItem struct {
	Rating  int    `json:"rating"`
	RatedAt string `json:"rated_at"`
	Movie   movie  `json:"movie"`
}

// ReconcileReport summarizes a ratings reconciliation run.
type ReconcileReport struct {
	Ratings int
	Applied int
	Unrated int
}

// RatingsSource reconciles Trakt ratings against stored history and maintains
// the pending-rating queue.
type RatingsSource struct {
	client *Client
	store  *store.Store
	logger *slog.Logger
	// now allows tests to pin the rated_at timestamp on submissions.
	now func() time.Time
}

// NewRatingsSource builds a RatingsSource over the given client and store.
func NewRatingsSource(client *Client, st *store.Store, logger *slog.Logger) *RatingsSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &RatingsSource{client: client, store: st, logger: logger, now: time.Now}
}

// Fetch pulls the full rating list, applies each rating to the matching
// history records, then recomputes the pending queue. Recomputation is
// additive: films rated during this pass are excluded from the insert set,
// but existing queue entries are never removed here.
func (r *RatingsSource) Fetch(ctx context.Context) (ReconcileReport, error) {
	var items []ratingItem
	if err := r.client.getJSON(ctx, "/sync/ratings/movies", &items); err != nil {
		return ReconcileReport{}, err
	}

	report := ReconcileReport{Ratings: len(items)}
	for _, item := range items {
		if item.Movie.IDs.Slug == "" {
			return report, services.Wrap(services.ErrMalformedResponse, "trakt", "map rating", "missing movie slug", nil)
		}
		if item.Rating < 1 || item.Rating > 10 {
			return report, services.Wrap(services.ErrMalformedResponse, "trakt", "map rating", fmt.Sprintf("slug %s rating %d out of range", item.Movie.IDs.Slug, item.Rating), nil)
		}
		if err := r.store.ApplyRating(ctx, item.Movie.IDs.Slug, item.Rating); err != nil {
			return report, err
		}
		report.Applied++
	}

	unrated, err := r.store.EnqueueUnrated(ctx)
	if err != nil {
		return report, err
	}
	report.Unrated = unrated

	r.logger.Info("ratings reconciled",
		slog.Int("ratings", report.Ratings),
		slog.Int("unrated", report.Unrated))
	return report, nil
}

// RatingSubmission is one slug-to-value pair bound for the ratings-write
// endpoint.
type RatingSubmission struct {
	Slug  string
	Value int
}

type submitPayload struct {
	Movies []submitMovie `json:"movies"`
}

type submitMovie struct {
	IDs     submitIDs `json:"ids"`
	Rating  int       `json:"rating"`
	RatedAt string    `json:"rated_at"`
}

type submitIDs struct {
	Slug string `json:"slug"`
}

// Submit pushes a batch of ratings to Trakt, then applies each rating locally
// and removes the corresponding pending-queue entries. Local state only
// changes after the remote write succeeds.
func (r *RatingsSource) Submit(ctx context.Context, batch []RatingSubmission) error {
	if len(batch) == 0 {
		return nil
	}

	ratedAt := r.now().UTC().Format(time.RFC3339)
	payload := submitPayload{Movies: make([]submitMovie, 0, len(batch))}
	for _, sub := range batch {
		if sub.Slug == "" {
			return fmt.Errorf("rating submission missing slug")
		}
		if sub.Value < 1 || sub.Value > 10 {
			return fmt.Errorf("rating %d for %s out of range 1-10", sub.Value, sub.Slug)
		}
		payload.Movies = append(payload.Movies, submitMovie{
			IDs:     submitIDs{Slug: sub.Slug},
			Rating:  sub.Value,
			RatedAt: ratedAt,
		})
	}

	if err := r.client.postJSON(ctx, "/sync/ratings", payload, nil); err != nil {
		return err
	}

	for _, sub := range batch {
		if err := r.store.ApplyRating(ctx, sub.Slug, sub.Value); err != nil {
			return err
		}
		if err := r.store.DequeuePending(ctx, sub.Slug); err != nil {
			return err
		}
	}

	r.logger.Info("ratings submitted", slog.Int("count", len(batch)))
	return nil
}
