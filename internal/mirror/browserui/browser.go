package browserui

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
	"github.com/gofrs/flock"

	"reelsync/internal/config"
	"reelsync/internal/logging"
	"reelsync/internal/mirror"
	"reelsync/internal/services"
)

// Structural selectors for the Plex web app. These track the data-testid
// attributes the app ships, which are stabler than class names.
const (
	selAccountMenu   = `button[data-testid="accountMenuButton"]`
	selSearchResult  = `a[data-testid="searchResultLink"]`
	selWatchedToggle = `button[data-testid="preplay-togglePlayedState"]`
	selRatingBar     = `div[data-testid="preplay-userRating"]`
)

// Browser drives a Chrome instance against the Plex web app. It implements
// mirror.Target. A file lock guards the profile directory so only one process
// drives the session at a time.
type Browser struct {
	cfg    *config.Config
	logger *slog.Logger
	lock   *flock.Flock

	browserCtx  context.Context
	cancelCtx   context.CancelFunc
	cancelAlloc context.CancelFunc
}

// New launches the browser with the configured profile directory and takes
// the session lock. Callers must Close the returned Browser.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Browser, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logging.WithComponent(logger, "browserui")

	lock := flock.New(cfg.SessionLockPath())
	held, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire session lock: %w", err)
	}
	if !held {
		return nil, fmt.Errorf("browser session lock %s is held by another process", cfg.SessionLockPath())
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserDataDir(cfg.Plex.UserDataDir),
		chromedp.Flag("headless", cfg.Plex.Headless),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelCtx := chromedp.NewContext(allocCtx)

	b := &Browser{
		cfg:         cfg,
		logger:      logger,
		lock:        lock,
		browserCtx:  browserCtx,
		cancelCtx:   cancelCtx,
		cancelAlloc: cancelAlloc,
	}

	if err := chromedp.Run(browserCtx, chromedp.Navigate(cfg.Plex.WebURL)); err != nil {
		b.Close()
		return nil, services.Wrap(services.ErrTransport, "browserui", "launch", "open web app", err)
	}
	return b, nil
}

var _ mirror.Target = (*Browser)(nil)

// EnsureSignedIn waits for an authenticated session. With a persisted profile
// the account menu appears within one step timeout; otherwise the user gets
// the sign-in timeout to complete the flow in the opened window.
func (b *Browser) EnsureSignedIn(ctx context.Context) error {
	quick, cancel := context.WithTimeout(b.browserCtx, b.cfg.StepTimeout())
	err := chromedp.Run(quick, chromedp.WaitVisible(selAccountMenu, chromedp.ByQuery))
	cancel()
	if err == nil {
		return nil
	}

	b.logger.Info("no active session, waiting for interactive sign-in",
		slog.Duration("timeout", b.cfg.SignInTimeout()))

	long, cancel := context.WithTimeout(b.browserCtx, b.cfg.SignInTimeout())
	defer cancel()
	if err := chromedp.Run(long, chromedp.WaitVisible(selAccountMenu, chromedp.ByQuery)); err != nil {
		return services.Wrap(services.ErrTimeout, "browserui", "sign in", "session never appeared", err)
	}
	b.logger.Info("session established")
	return nil
}

// FindByTitleYear searches for the film and opens the result whose label
// carries the expected year.
func (b *Browser) FindByTitleYear(ctx context.Context, title string, year int) error {
	query := SearchQuery(title)
	searchURL := fmt.Sprintf("%s/#!/search?query=%s", b.cfg.Plex.WebURL, url.QueryEscape(query))

	step, cancel := context.WithTimeout(b.browserCtx, b.cfg.StepTimeout())
	defer cancel()

	err := chromedp.Run(step,
		chromedp.Navigate(searchURL),
		chromedp.WaitVisible(selSearchResult, chromedp.ByQuery),
	)
	if err != nil {
		return services.Wrap(services.ErrNoMatch, "browserui", "search", fmt.Sprintf("no results for %q", query), err)
	}

	clickJS := fmt.Sprintf(`(() => {
		const links = Array.from(document.querySelectorAll(%q));
		const hit = links.find(a => a.textContent.includes(%q));
		if (!hit) return false;
		hit.click();
		return true;
	})()`, selSearchResult, strconv.Itoa(year))

	var clicked bool
	if err := chromedp.Run(step, chromedp.Evaluate(clickJS, &clicked)); err != nil {
		return services.Wrap(services.ErrTransport, "browserui", "search", "select result", err)
	}
	if !clicked {
		return services.Wrap(services.ErrNoMatch, "browserui", "search", fmt.Sprintf("no result for %q (%d)", query, year), nil)
	}

	if err := chromedp.Run(step, chromedp.WaitVisible(selWatchedToggle, chromedp.ByQuery)); err != nil {
		return services.Wrap(services.ErrTimeout, "browserui", "search", "detail view never loaded", err)
	}
	return nil
}

// ToggleWatched clicks the watched toggle on the open detail view.
func (b *Browser) ToggleWatched(ctx context.Context) error {
	step, cancel := context.WithTimeout(b.browserCtx, b.cfg.StepTimeout())
	defer cancel()

	if err := chromedp.Run(step, chromedp.Click(selWatchedToggle, chromedp.ByQuery)); err != nil {
		return services.Wrap(services.ErrTimeout, "browserui", "toggle watched", "", err)
	}
	return nil
}

type elementRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// SetRating drags the rating slider from its midpoint to the position for
// value. The slider maps ratings linearly across its width, so the drag
// distance comes straight from the gesture math.
func (b *Browser) SetRating(ctx context.Context, value int) error {
	step, cancel := context.WithTimeout(b.browserCtx, b.cfg.StepTimeout())
	defer cancel()

	rectJS := fmt.Sprintf(`(() => {
		const el = document.querySelector(%q);
		if (!el) return {x: 0, y: 0, width: 0, height: 0};
		const r = el.getBoundingClientRect();
		return {x: r.x, y: r.y, width: r.width, height: r.height};
	})()`, selRatingBar)

	var rect elementRect
	if err := chromedp.Run(step,
		chromedp.WaitVisible(selRatingBar, chromedp.ByQuery),
		chromedp.Evaluate(rectJS, &rect),
	); err != nil {
		return services.Wrap(services.ErrTimeout, "browserui", "set rating", "rating bar not found", err)
	}
	if rect.Width <= 0 {
		return services.Wrap(services.ErrMalformedResponse, "browserui", "set rating", "rating bar has no extent", nil)
	}

	centerX := rect.X + rect.Width/2
	centerY := rect.Y + rect.Height/2
	targetX := centerX + mirror.DragDisplacement(value, rect.Width)

	drag := chromedp.ActionFunc(func(ctx context.Context) error {
		if err := input.DispatchMouseEvent(input.MousePressed, centerX, centerY).
			WithButton(input.Left).WithClickCount(1).Do(ctx); err != nil {
			return err
		}
		if err := input.DispatchMouseEvent(input.MouseMoved, targetX, centerY).
			WithButton(input.Left).Do(ctx); err != nil {
			return err
		}
		return input.DispatchMouseEvent(input.MouseReleased, targetX, centerY).
			WithButton(input.Left).WithClickCount(1).Do(ctx)
	})
	if err := chromedp.Run(step, drag); err != nil {
		return services.Wrap(services.ErrTimeout, "browserui", "set rating", "drag gesture failed", err)
	}

	b.logger.Debug("rating slider dragged",
		slog.Int("value", value),
		slog.Float64("from_x", centerX),
		slog.Float64("to_x", targetX))
	return nil
}

// Close shuts the browser down and releases the session lock.
func (b *Browser) Close() error {
	b.cancelCtx()
	b.cancelAlloc()
	if err := b.lock.Unlock(); err != nil {
		return fmt.Errorf("release session lock: %w", err)
	}
	return nil
}
