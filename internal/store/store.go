package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"reelsync/internal/config"
)

// Store owns the reconciliation dataset backed by SQLite. Every read hits the
// database directly so writes made through other handles (the dashboard's
// rating submissions in particular) are immediately visible.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the reconciliation database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.DatabasePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// InsertIfAbsent writes a film record unless its history id is already known.
// Re-ingesting a known id is a no-op; existing fields are never updated from a
// later fetch. Reports whether a row was inserted.
func (s *Store) InsertIfAbsent(ctx context.Context, rec FilmRecord) (bool, error) {
	if rec.HistoryID == 0 {
		return false, errors.New("history id is required")
	}
	if rec.Slug == "" {
		return false, errors.New("slug is required")
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO films (
            history_id, slug, imdb_id, tmdb_id, title, year, watched_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.HistoryID,
		rec.Slug,
		nullableString(rec.IMDbID),
		nullableInt64(rec.TMDBID),
		rec.Title,
		rec.Year,
		rec.WatchedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("insert film: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ApplyRating marks every record for the slug as rated with the given value.
func (s *Store) ApplyRating(ctx context.Context, slug string, value int) error {
	if value < 1 || value > 10 {
		return fmt.Errorf("rating %d out of range 1-10", value)
	}
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE films SET rated = 1, rating = ? WHERE slug = ?`,
		value,
		slug,
	)
	if err != nil {
		return fmt.Errorf("apply rating: %w", err)
	}
	return nil
}

// EnqueuePending adds a slug to the pending-rating queue. Idempotent.
func (s *Store) EnqueuePending(ctx context.Context, slug, title string) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO pending_ratings (slug, title) VALUES (?, ?)`,
		slug,
		title,
	)
	if err != nil {
		return fmt.Errorf("enqueue pending: %w", err)
	}
	return nil
}

// DequeuePending removes a slug from the pending-rating queue.
func (s *Store) DequeuePending(ctx context.Context, slug string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM pending_ratings WHERE slug = ?`, slug)
	if err != nil {
		return fmt.Errorf("dequeue pending: %w", err)
	}
	return nil
}

// EnqueueUnrated inserts a pending entry for every film still unrated.
// Additive only: entries for films rated since the last pass are simply not
// part of the insert set, and existing entries are left alone. Returns how
// many films were considered unrated.
func (s *Store) EnqueueUnrated(ctx context.Context) (int, error) {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO pending_ratings (slug, title)
         SELECT slug, title FROM films WHERE rated = 0`,
	)
	if err != nil {
		return 0, fmt.Errorf("enqueue unrated: %w", err)
	}

	var unrated int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT slug) FROM films WHERE rated = 0`)
	if err := row.Scan(&unrated); err != nil {
		return 0, fmt.Errorf("count unrated: %w", err)
	}
	return unrated, nil
}

// ListPending returns a page of the pending-rating queue, newest first.
func (s *Store) ListPending(ctx context.Context, page, limit int) ([]PendingRating, error) {
	page, limit = normalizePage(page, limit)
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT slug, title FROM pending_ratings ORDER BY rowid DESC LIMIT ? OFFSET ?`,
		limit,
		(page-1)*limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	defer rows.Close()

	var entries []PendingRating
	for rows.Next() {
		var entry PendingRating
		if err := rows.Scan(&entry.Slug, &entry.Title); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// CountPending returns the size of the pending-rating queue.
func (s *Store) CountPending(ctx context.Context) (int, error) {
	var count int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_ratings`)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count pending: %w", err)
	}
	return count, nil
}

// ListFilms returns a page of history records ordered by watch time, newest
// first.
func (s *Store) ListFilms(ctx context.Context, page, limit int) ([]FilmRecord, error) {
	page, limit = normalizePage(page, limit)
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+filmColumns+` FROM films ORDER BY watched_at DESC LIMIT ? OFFSET ?`,
		limit,
		(page-1)*limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list films: %w", err)
	}
	defer rows.Close()
	return collectFilms(rows)
}

// CountFilms returns the number of history records.
func (s *Store) CountFilms(ctx context.Context) (int, error) {
	var count int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM films`)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count films: %w", err)
	}
	return count, nil
}

// GetByHistoryID fetches a single record by its Trakt history event id.
func (s *Store) GetByHistoryID(ctx context.Context, historyID int64) (*FilmRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+filmColumns+` FROM films WHERE history_id = ?`, historyID)
	rec, err := scanFilm(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get film: %w", err)
	}
	return rec, nil
}

// FindBySlug returns the records for a slug ordered by watch time.
func (s *Store) FindBySlug(ctx context.Context, slug string) ([]FilmRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+filmColumns+` FROM films WHERE slug = ? ORDER BY watched_at`, slug)
	if err != nil {
		return nil, fmt.Errorf("find by slug: %w", err)
	}
	defer rows.Close()
	return collectFilms(rows)
}

// ListNeedingMirror returns records whose Plex state lags the local dataset.
// MirrorHistory selects unmirrored watch events; MirrorRating selects rated
// films with unmirrored ratings; MirrorBoth selects rated films where neither
// side has reached Plex, so a single navigation settles both.
func (s *Store) ListNeedingMirror(ctx context.Context, field MirrorField) ([]FilmRecord, error) {
	var clause string
	switch field {
	case MirrorHistory:
		clause = `plex_history = 0`
	case MirrorRating:
		clause = `rated = 1 AND plex_rating = 0`
	case MirrorBoth:
		clause = `rated = 1 AND plex_history = 0 AND plex_rating = 0`
	default:
		return nil, fmt.Errorf("unknown mirror field %q", field)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+filmColumns+` FROM films WHERE `+clause+` ORDER BY watched_at`)
	if err != nil {
		return nil, fmt.Errorf("list needing mirror: %w", err)
	}
	defer rows.Close()
	return collectFilms(rows)
}

// MarkMirrored records that Plex now reflects the watch event or the rating
// for a film. Flags only transition false to true.
func (s *Store) MarkMirrored(ctx context.Context, slug string, year int, field MirrorField) error {
	var column string
	switch field {
	case MirrorHistory:
		column = "plex_history"
	case MirrorRating:
		column = "plex_rating"
	default:
		return fmt.Errorf("unknown mirror field %q", field)
	}

	_, err := s.db.ExecContext(
		ctx,
		`UPDATE films SET `+column+` = 1 WHERE slug = ? AND year = ?`,
		slug,
		year,
	)
	if err != nil {
		return fmt.Errorf("mark mirrored: %w", err)
	}
	return nil
}

const filmColumns = "history_id, slug, imdb_id, tmdb_id, title, year, watched_at, rated, rating, plex_history, plex_rating"

func scanFilm(scanner interface{ Scan(dest ...any) error }) (*FilmRecord, error) {
	var (
		historyID  int64
		slug       string
		imdbID     sql.NullString
		tmdbID     sql.NullInt64
		title      string
		year       sql.NullInt64
		watchedRaw sql.NullString
		rated      int
		rating     sql.NullInt64
		plexHist   int
		plexRating int
	)

	if err := scanner.Scan(
		&historyID,
		&slug,
		&imdbID,
		&tmdbID,
		&title,
		&year,
		&watchedRaw,
		&rated,
		&rating,
		&plexHist,
		&plexRating,
	); err != nil {
		return nil, err
	}

	rec := &FilmRecord{
		HistoryID:   historyID,
		Slug:        slug,
		IMDbID:      imdbID.String,
		TMDBID:      tmdbID.Int64,
		Title:       title,
		Year:        int(year.Int64),
		Rated:       rated != 0,
		Rating:      int(rating.Int64),
		PlexHistory: plexHist != 0,
		PlexRating:  plexRating != 0,
	}
	if watchedRaw.Valid && watchedRaw.String != "" {
		if watched, err := time.Parse(time.RFC3339, watchedRaw.String); err == nil {
			rec.WatchedAt = watched
		}
	}
	return rec, nil
}

func collectFilms(rows *sql.Rows) ([]FilmRecord, error) {
	var records []FilmRecord
	for rows.Next() {
		rec, err := scanFilm(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return page, limit
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt64(value int64) any {
	if value == 0 {
		return nil
	}
	return value
}
