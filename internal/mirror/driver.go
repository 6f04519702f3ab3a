package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"reelsync/internal/logging"
	"reelsync/internal/services"
	"reelsync/internal/store"
)

// BatchReport summarizes one mirroring pass.
type BatchReport struct {
	Attempted int
	Mirrored  int
	NoMatch   int
	Failed    int
}

// Driver walks the records that still need mirroring and replays each one
// onto the target through UI gestures. A record that cannot be located or
// fails mid-gesture is skipped; the rest of the batch continues.
type Driver struct {
	store          *store.Store
	target         Target
	logger         *slog.Logger
	stopAfterFirst bool
}

// DriverOption customises Driver construction.
type DriverOption func(*Driver)

// WithStopAfterFirst makes Push stop after the first successful mirror.
// Useful when spot-checking gesture behavior against a live session.
func WithStopAfterFirst(stop bool) DriverOption {
	return func(d *Driver) {
		d.stopAfterFirst = stop
	}
}

// NewDriver builds a Driver over the given store and target.
func NewDriver(st *store.Store, target Target, logger *slog.Logger, opts ...DriverOption) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Driver{
		store:  st,
		target: target,
		logger: logging.WithComponent(logger, "mirror"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Push mirrors every record pending for the given field. It signs in once,
// then processes records independently: a failed record is logged and counted
// but never aborts the batch. Context cancellation stops the pass between
// records.
func (d *Driver) Push(ctx context.Context, field store.MirrorField) (BatchReport, error) {
	records, err := d.store.ListNeedingMirror(ctx, field)
	if err != nil {
		return BatchReport{}, err
	}
	if len(records) == 0 {
		d.logger.Info("nothing to mirror", slog.String("field", string(field)))
		return BatchReport{}, nil
	}

	if err := d.target.EnsureSignedIn(ctx); err != nil {
		return BatchReport{}, services.Wrap(services.ErrTimeout, "mirror", "sign in", "", err)
	}

	report := BatchReport{}
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Attempted++

		err := d.mirrorOne(ctx, rec, field)
		switch {
		case err == nil:
			report.Mirrored++
			d.logger.Info("mirrored",
				slog.String("title", rec.Title),
				slog.Int("year", rec.Year),
				slog.String("field", string(field)))
		case errors.Is(err, services.ErrNoMatch):
			report.NoMatch++
			d.logger.Warn("no match on target",
				slog.String("title", rec.Title),
				slog.Int("year", rec.Year))
		default:
			report.Failed++
			d.logger.Error("mirror failed",
				slog.String("title", rec.Title),
				slog.Int("year", rec.Year),
				logging.Error(err))
		}

		if d.stopAfterFirst && report.Mirrored > 0 {
			d.logger.Info("stopping after first mirrored record")
			break
		}
	}

	d.logger.Info("mirror pass complete",
		slog.Int("attempted", report.Attempted),
		slog.Int("mirrored", report.Mirrored),
		slog.Int("no_match", report.NoMatch),
		slog.Int("failed", report.Failed))
	return report, nil
}

// mirrorOne navigates to one film and applies the gestures the field calls
// for. The local flag only flips after the gesture succeeds, so an
// interrupted record is retried on the next pass.
func (d *Driver) mirrorOne(ctx context.Context, rec store.FilmRecord, field store.MirrorField) error {
	if err := d.target.FindByTitleYear(ctx, rec.Title, rec.Year); err != nil {
		return err
	}

	if field == store.MirrorHistory || field == store.MirrorBoth {
		if err := d.target.ToggleWatched(ctx); err != nil {
			return fmt.Errorf("toggle watched: %w", err)
		}
		if err := d.store.MarkMirrored(ctx, rec.Slug, rec.Year, store.MirrorHistory); err != nil {
			return err
		}
	}

	if field == store.MirrorRating || field == store.MirrorBoth {
		if err := d.target.SetRating(ctx, rec.Rating); err != nil {
			return fmt.Errorf("set rating: %w", err)
		}
		if err := d.store.MarkMirrored(ctx, rec.Slug, rec.Year, store.MirrorRating); err != nil {
			return err
		}
	}

	return nil
}
