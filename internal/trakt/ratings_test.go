package trakt_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"reelsync/internal/store"
	"reelsync/internal/testsupport"
	"reelsync/internal/trakt"
)

func seedFilms(t *testing.T, st *store.Store, slugs ...string) {
	t.Helper()
	for i, slug := range slugs {
		testsupport.InsertFilm(t, st, store.FilmRecord{
			HistoryID: int64(i + 1),
			Slug:      slug,
			Title:     "Film " + slug,
			Year:      2001,
			WatchedAt: time.Date(2026, 3, i+1, 0, 0, 0, 0, time.UTC),
		})
	}
}

func TestFetchReconcilesRatingsAndQueue(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	seedFilms(t, st, "alpha", "beta", "gamma")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sync/ratings/movies" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{
				"rating":   9,
				"rated_at": "2026-03-05T10:00:00Z",
				"movie":    map[string]any{"title": "Film alpha", "year": 2001, "ids": map[string]any{"slug": "alpha"}},
			},
		})
	}))
	t.Cleanup(server.Close)

	client := trakt.NewClient(server.URL, "cid", "token")
	source := trakt.NewRatingsSource(client, st, nil)

	report, err := source.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if report.Ratings != 1 || report.Applied != 1 || report.Unrated != 2 {
		t.Fatalf("unexpected report: %#v", report)
	}

	ctx := context.Background()
	rated, err := st.FindBySlug(ctx, "alpha")
	if err != nil || len(rated) != 1 {
		t.Fatalf("lookup alpha: films=%v err=%v", rated, err)
	}
	if !rated[0].Rated || rated[0].Rating != 9 {
		t.Fatalf("rating not applied: %#v", rated[0])
	}

	pending, err := st.ListPending(ctx, 1, 10)
	if err != nil {
		t.Fatalf("ListPending failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected beta and gamma pending, got %#v", pending)
	}
	seen := map[string]int{}
	for _, entry := range pending {
		seen[entry.Slug]++
	}
	if seen["alpha"] != 0 || seen["beta"] != 1 || seen["gamma"] != 1 {
		t.Fatalf("unexpected queue contents: %v", seen)
	}
}

func TestSubmitWritesRemoteThenLocal(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	seedFilms(t, st, "alpha", "beta")
	ctx := context.Background()

	if _, err := st.EnqueueUnrated(ctx); err != nil {
		t.Fatalf("EnqueueUnrated failed: %v", err)
	}

	var payload struct {
		Movies []struct {
			IDs struct {
				Slug string `json:"slug"`
			} `json:"ids"`
			Rating  int    `json:"rating"`
			RatedAt string `json:"rated_at"`
		} `json:"movies"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sync/ratings" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(server.Close)

	client := trakt.NewClient(server.URL, "cid", "token")
	source := trakt.NewRatingsSource(client, st, nil)

	err := source.Submit(ctx, []trakt.RatingSubmission{
		{Slug: "alpha", Value: 8},
		{Slug: "beta", Value: 6},
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if len(payload.Movies) != 2 {
		t.Fatalf("expected 2 movies in payload, got %#v", payload)
	}
	if payload.Movies[0].IDs.Slug != "alpha" || payload.Movies[0].Rating != 8 {
		t.Fatalf("unexpected payload: %#v", payload.Movies[0])
	}
	if _, err := time.Parse(time.RFC3339, payload.Movies[0].RatedAt); err != nil {
		t.Fatalf("rated_at not RFC3339: %q", payload.Movies[0].RatedAt)
	}

	count, err := st.CountPending(ctx)
	if err != nil {
		t.Fatalf("CountPending failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("pending entries not removed after submit: %d left", count)
	}

	films, err := st.FindBySlug(ctx, "beta")
	if err != nil || len(films) != 1 {
		t.Fatalf("lookup beta: films=%v err=%v", films, err)
	}
	if !films[0].Rated || films[0].Rating != 6 {
		t.Fatalf("local rating not applied: %#v", films[0])
	}
}

func TestSubmitFailureLeavesLocalStateAlone(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	seedFilms(t, st, "alpha")
	ctx := context.Background()

	if _, err := st.EnqueueUnrated(ctx); err != nil {
		t.Fatalf("EnqueueUnrated failed: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	client := trakt.NewClient(server.URL, "cid", "token")
	source := trakt.NewRatingsSource(client, st, nil)

	if err := source.Submit(ctx, []trakt.RatingSubmission{{Slug: "alpha", Value: 8}}); err == nil {
		t.Fatal("expected submit error")
	}

	count, err := st.CountPending(ctx)
	if err != nil {
		t.Fatalf("CountPending failed: %v", err)
	}
	if count != 1 {
		t.Fatal("pending entry must survive a failed remote write")
	}

	films, err := st.FindBySlug(ctx, "alpha")
	if err != nil || len(films) != 1 {
		t.Fatalf("lookup alpha: films=%v err=%v", films, err)
	}
	if films[0].Rated {
		t.Fatal("rating must not be applied after a failed remote write")
	}
}

func TestSubmitValidatesBatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	client := trakt.NewClient("http://127.0.0.1:0", "cid", "token")
	source := trakt.NewRatingsSource(client, st, nil)
	ctx := context.Background()

	if err := source.Submit(ctx, []trakt.RatingSubmission{{Slug: "", Value: 5}}); err == nil {
		t.Error("expected error for missing slug")
	}
	if err := source.Submit(ctx, []trakt.RatingSubmission{{Slug: "x", Value: 0}}); err == nil {
		t.Error("expected error for out-of-range rating")
	}
	if err := source.Submit(ctx, nil); err != nil {
		t.Errorf("empty batch should be a no-op, got %v", err)
	}
}
