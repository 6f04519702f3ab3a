package syncer

import (
	"context"
	"fmt"
	"log/slog"

	"reelsync/internal/config"
	"reelsync/internal/logging"
	"reelsync/internal/mirror"
	"reelsync/internal/mirror/browserui"
	"reelsync/internal/store"
	"reelsync/internal/trakt"
)

// Mode selects how much history a sync run pulls.
type Mode string

const (
	// ModeRecent pulls the latest history page plus ratings.
	ModeRecent Mode = "recent"
	// ModeFull walks history to exhaustion plus ratings.
	ModeFull Mode = "full"
	// ModeRatings reconciles ratings only.
	ModeRatings Mode = "ratings"
)

// SyncReport aggregates the outcome of one sync run.
type SyncReport struct {
	History trakt.IngestReport
	Ratings trakt.ReconcileReport
}

// TargetFactory opens a mirror target. Production wires the browser; tests
// substitute fakes.
type TargetFactory func(ctx context.Context) (mirror.Target, error)

// Orchestrator sequences the sync and mirror workflows over the shared store.
type Orchestrator struct {
	cfg       *config.Config
	store     *store.Store
	tokens    *trakt.TokenManager
	logger    *slog.Logger
	newTarget TargetFactory
	httpDoer  trakt.HTTPDoer
}

// Option customises Orchestrator construction.
type Option func(*Orchestrator)

// WithTargetFactory overrides how mirror targets are opened.
func WithTargetFactory(factory TargetFactory) Option {
	return func(o *Orchestrator) {
		o.newTarget = factory
	}
}

// WithHTTPDoer overrides the HTTP client used for Trakt API calls.
func WithHTTPDoer(doer trakt.HTTPDoer) Option {
	return func(o *Orchestrator) {
		o.httpDoer = doer
	}
}

// New builds an Orchestrator. The default target factory launches the
// browser backend.
func New(cfg *config.Config, st *store.Store, tokens *trakt.TokenManager, logger *slog.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{
		cfg:    cfg,
		store:  st,
		tokens: tokens,
		logger: logging.WithComponent(logger, "syncer"),
	}
	o.newTarget = func(ctx context.Context) (mirror.Target, error) {
		return browserui.New(ctx, cfg, logger)
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// client acquires a credential and builds an authenticated API client.
func (o *Orchestrator) client(ctx context.Context) (*trakt.Client, error) {
	cred, err := o.tokens.AcquireOrLoad(ctx)
	if err != nil {
		return nil, err
	}
	var clientOpts []trakt.ClientOption
	if o.httpDoer != nil {
		clientOpts = append(clientOpts, trakt.WithHTTPClient(o.httpDoer))
	}
	return trakt.NewClient(o.cfg.Trakt.BaseURL, o.cfg.Trakt.ClientID, cred.AccessToken, clientOpts...), nil
}

// Sync pulls history per the mode, then reconciles ratings. ModeRatings
// skips the history pull.
func (o *Orchestrator) Sync(ctx context.Context, mode Mode) (SyncReport, error) {
	client, err := o.client(ctx)
	if err != nil {
		return SyncReport{}, err
	}

	var report SyncReport
	history := trakt.NewHistorySource(client, o.store, o.cfg.Sync.PageSize, o.logger)
	switch mode {
	case ModeRecent:
		report.History, err = history.FetchRecent(ctx)
	case ModeFull:
		report.History, err = history.FetchAll(ctx)
	case ModeRatings:
		// history untouched
	default:
		return SyncReport{}, fmt.Errorf("unknown sync mode %q", mode)
	}
	if err != nil {
		return report, err
	}

	ratings := trakt.NewRatingsSource(client, o.store, o.logger)
	report.Ratings, err = ratings.Fetch(ctx)
	if err != nil {
		return report, err
	}

	o.logger.Info("sync complete",
		slog.String("mode", string(mode)),
		slog.Int("fetched", report.History.Fetched),
		slog.Int("inserted", report.History.Inserted),
		slog.Int("ratings", report.Ratings.Ratings),
		slog.Int("unrated", report.Ratings.Unrated))
	return report, nil
}

// Push mirrors pending records for the given field onto the target.
func (o *Orchestrator) Push(ctx context.Context, field store.MirrorField) (mirror.BatchReport, error) {
	switch field {
	case store.MirrorHistory, store.MirrorRating, store.MirrorBoth:
	default:
		return mirror.BatchReport{}, fmt.Errorf("unknown push field %q", field)
	}

	target, err := o.newTarget(ctx)
	if err != nil {
		return mirror.BatchReport{}, err
	}
	defer func() {
		if err := target.Close(); err != nil {
			o.logger.Warn("closing mirror target", logging.Error(err))
		}
	}()

	driver := mirror.NewDriver(o.store, target, o.logger,
		mirror.WithStopAfterFirst(o.cfg.Mirror.StopAfterFirst))
	return driver.Push(ctx, field)
}

// SubmitRatings pushes rating decisions to Trakt and settles the local queue.
func (o *Orchestrator) SubmitRatings(ctx context.Context, batch []trakt.RatingSubmission) error {
	client, err := o.client(ctx)
	if err != nil {
		return err
	}
	return trakt.NewRatingsSource(client, o.store, o.logger).Submit(ctx, batch)
}

// FilmPage is one page of stored history with the total count.
type FilmPage struct {
	Films []store.FilmRecord
	Total int
}

// Films returns a page of stored history, newest first.
func (o *Orchestrator) Films(ctx context.Context, page, limit int) (FilmPage, error) {
	films, err := o.store.ListFilms(ctx, page, limit)
	if err != nil {
		return FilmPage{}, err
	}
	total, err := o.store.CountFilms(ctx)
	if err != nil {
		return FilmPage{}, err
	}
	return FilmPage{Films: films, Total: total}, nil
}

// PendingPage is one page of the pending-rating queue with the total count.
type PendingPage struct {
	Pending []store.PendingRating
	Total   int
}

// Pending returns a page of the pending-rating queue.
func (o *Orchestrator) Pending(ctx context.Context, page, limit int) (PendingPage, error) {
	pending, err := o.store.ListPending(ctx, page, limit)
	if err != nil {
		return PendingPage{}, err
	}
	total, err := o.store.CountPending(ctx)
	if err != nil {
		return PendingPage{}, err
	}
	return PendingPage{Pending: pending, Total: total}, nil
}
