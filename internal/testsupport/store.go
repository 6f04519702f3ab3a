package testsupport

import (
	"context"
	"testing"
	"time"

	"reelsync/internal/config"
	"reelsync/internal/store"
)

// MustOpenStore opens a store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// InsertFilm writes a film record for tests, failing the test on error.
func InsertFilm(t testing.TB, st *store.Store, rec store.FilmRecord) {
	t.Helper()

	if rec.WatchedAt.IsZero() {
		rec.WatchedAt = time.Now().UTC()
	}
	inserted, err := st.InsertIfAbsent(context.Background(), rec)
	if err != nil {
		t.Fatalf("store.InsertIfAbsent: %v", err)
	}
	if !inserted {
		t.Fatalf("film %d already present", rec.HistoryID)
	}
}
