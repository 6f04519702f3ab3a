package mirror_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"reelsync/internal/mirror"
	"reelsync/internal/services"
	"reelsync/internal/store"
	"reelsync/internal/testsupport"
)

// fakeTarget records the gestures a pass performs and fails on request.
type fakeTarget struct {
	signIns   int
	visited   []string
	watched   []string
	ratings   map[string]int
	failFind  map[string]error
	current   string
	signInErr error
}

func newFakeTarget() *fakeTarget {
	return &fakeTarget{
		ratings:  map[string]int{},
		failFind: map[string]error{},
	}
}

func (f *fakeTarget) EnsureSignedIn(ctx context.Context) error {
	f.signIns++
	return f.signInErr
}

func (f *fakeTarget) FindByTitleYear(ctx context.Context, title string, year int) error {
	key := fmt.Sprintf("%s (%d)", title, year)
	if err, ok := f.failFind[key]; ok {
		return err
	}
	f.visited = append(f.visited, key)
	f.current = key
	return nil
}

func (f *fakeTarget) ToggleWatched(ctx context.Context) error {
	f.watched = append(f.watched, f.current)
	return nil
}

func (f *fakeTarget) SetRating(ctx context.Context, value int) error {
	f.ratings[f.current] = value
	return nil
}

func (f *fakeTarget) Close() error { return nil }

func seedMirrorFilm(t *testing.T, st *store.Store, id int64, slug string, rating int) {
	t.Helper()
	testsupport.InsertFilm(t, st, store.FilmRecord{
		HistoryID: id,
		Slug:      slug,
		Title:     "Film " + slug,
		Year:      1999,
		WatchedAt: time.Date(2026, 4, int(id), 0, 0, 0, 0, time.UTC),
	})
	if rating > 0 {
		if err := st.ApplyRating(context.Background(), slug, rating); err != nil {
			t.Fatalf("ApplyRating failed: %v", err)
		}
	}
}

func TestPushMirrorsHistoryBatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	seedMirrorFilm(t, st, 1, "heat", 0)
	seedMirrorFilm(t, st, 2, "ronin", 0)

	target := newFakeTarget()
	driver := mirror.NewDriver(st, target, nil)

	report, err := driver.Push(context.Background(), store.MirrorHistory)
	if err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if report.Attempted != 2 || report.Mirrored != 2 || report.NoMatch != 0 || report.Failed != 0 {
		t.Fatalf("unexpected report: %#v", report)
	}
	if target.signIns != 1 {
		t.Fatalf("expected a single sign-in for the batch, got %d", target.signIns)
	}
	if len(target.watched) != 2 {
		t.Fatalf("expected 2 watch toggles, got %v", target.watched)
	}

	// Flags flipped, so a second pass finds nothing.
	report, err = driver.Push(context.Background(), store.MirrorHistory)
	if err != nil {
		t.Fatalf("second Push failed: %v", err)
	}
	if report.Attempted != 0 {
		t.Fatalf("records mirrored twice: %#v", report)
	}
}

func TestPushIsolatesPerRecordFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	seedMirrorFilm(t, st, 1, "heat", 0)
	seedMirrorFilm(t, st, 2, "ghost", 0)
	seedMirrorFilm(t, st, 3, "ronin", 0)

	target := newFakeTarget()
	target.failFind["Film ghost (1999)"] = services.Wrap(services.ErrNoMatch, "browserui", "search", "no results", nil)

	driver := mirror.NewDriver(st, target, nil)
	report, err := driver.Push(context.Background(), store.MirrorHistory)
	if err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if report.Attempted != 3 || report.Mirrored != 2 || report.NoMatch != 1 {
		t.Fatalf("unexpected report: %#v", report)
	}

	// The unmatched record stays pending for the next pass.
	pending, err := st.ListNeedingMirror(context.Background(), store.MirrorHistory)
	if err != nil {
		t.Fatalf("ListNeedingMirror failed: %v", err)
	}
	if len(pending) != 1 || pending[0].Slug != "ghost" {
		t.Fatalf("expected ghost to remain pending, got %#v", pending)
	}
}

func TestPushBothAppliesWatchAndRating(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	seedMirrorFilm(t, st, 1, "heat", 7)

	target := newFakeTarget()
	driver := mirror.NewDriver(st, target, nil)

	report, err := driver.Push(context.Background(), store.MirrorBoth)
	if err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if report.Mirrored != 1 {
		t.Fatalf("unexpected report: %#v", report)
	}
	if len(target.watched) != 1 {
		t.Fatalf("watch toggle missing: %v", target.watched)
	}
	if target.ratings["Film heat (1999)"] != 7 {
		t.Fatalf("rating gesture missing: %v", target.ratings)
	}

	films, err := st.FindBySlug(context.Background(), "heat")
	if err != nil || len(films) != 1 {
		t.Fatalf("lookup heat: %v %v", films, err)
	}
	if !films[0].PlexHistory || !films[0].PlexRating {
		t.Fatalf("flags not flipped: %#v", films[0])
	}
}

func TestPushStopAfterFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	seedMirrorFilm(t, st, 1, "heat", 0)
	seedMirrorFilm(t, st, 2, "ronin", 0)

	target := newFakeTarget()
	driver := mirror.NewDriver(st, target, nil, mirror.WithStopAfterFirst(true))

	report, err := driver.Push(context.Background(), store.MirrorHistory)
	if err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if report.Attempted != 1 || report.Mirrored != 1 {
		t.Fatalf("expected the pass to stop after one record: %#v", report)
	}
}

func TestPushSignInFailureAbortsBatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	seedMirrorFilm(t, st, 1, "heat", 0)

	target := newFakeTarget()
	target.signInErr = errors.New("session never appeared")

	driver := mirror.NewDriver(st, target, nil)
	if _, err := driver.Push(context.Background(), store.MirrorHistory); !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if len(target.visited) != 0 {
		t.Fatalf("no navigation should happen without a session: %v", target.visited)
	}
}

func TestPushHonorsCancellation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	seedMirrorFilm(t, st, 1, "heat", 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	driver := mirror.NewDriver(st, newFakeTarget(), nil)
	if _, err := driver.Push(ctx, store.MirrorHistory); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRatingOffset(t *testing.T) {
	cases := []struct {
		rating int
		width  float64
		want   float64
	}{
		{0, 200, 0},
		{5, 200, 100},
		{7, 200, 140},
		{10, 200, 200},
		{-3, 200, 0},
		{12, 200, 200},
	}
	for _, tc := range cases {
		if got := mirror.RatingOffset(tc.rating, tc.width); got != tc.want {
			t.Errorf("RatingOffset(%d, %v) = %v, want %v", tc.rating, tc.width, got, tc.want)
		}
	}
}

func TestDragDisplacement(t *testing.T) {
	cases := []struct {
		rating int
		width  float64
		want   float64
	}{
		{7, 200, 40},
		{0, 200, -100},
		{10, 200, 100},
		{5, 200, 0},
	}
	for _, tc := range cases {
		if got := mirror.DragDisplacement(tc.rating, tc.width); got != tc.want {
			t.Errorf("DragDisplacement(%d, %v) = %v, want %v", tc.rating, tc.width, got, tc.want)
		}
	}
}
