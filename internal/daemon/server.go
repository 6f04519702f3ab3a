package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"reelsync/internal/config"
	"reelsync/internal/logging"
	"reelsync/internal/services"
	"reelsync/internal/store"
	"reelsync/internal/syncer"
	"reelsync/internal/trakt"
)

// Server exposes the dashboard JSON API over HTTP. Sync and push runs execute
// inline in the request, mirroring what the CLI does; the dashboard is a thin
// remote control over the same orchestrator.
type Server struct {
	bind   string
	logger *slog.Logger
	orch   *syncer.Orchestrator
	mux    *http.ServeMux

	listener net.Listener
	server   *http.Server
}

// NewServer builds the dashboard server bound per the configuration.
func NewServer(cfg *config.Config, orch *syncer.Orchestrator, logger *slog.Logger) (*Server, error) {
	if cfg == nil || orch == nil {
		return nil, errors.New("config and orchestrator are required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	srv := &Server{
		bind:   strings.TrimSpace(cfg.Dashboard.Bind),
		logger: logging.WithComponent(logger, "dashboard"),
		orch:   orch,
		mux:    http.NewServeMux(),
	}
	if srv.bind == "" {
		return nil, errors.New("dashboard bind address is empty")
	}

	srv.mux.HandleFunc("/sync/", srv.handleSync)
	srv.mux.HandleFunc("/push/", srv.handlePush)
	srv.mux.HandleFunc("/films", srv.handleFilms)
	srv.mux.HandleFunc("/pending", srv.handlePending)
	srv.mux.HandleFunc("/ratings", srv.handleRatings)

	srv.server = &http.Server{
		Handler:           srv.mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Full syncs and mirror passes run inside the request.
		WriteTimeout: 30 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	return srv, nil
}

// Handler returns the route table, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start begins serving and shuts down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("dashboard listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("dashboard server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("dashboard listening", slog.String("address", listener.Addr().String()))
	return nil
}

// Addr returns the bound address after Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.bind
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down.
func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

type syncResponse struct {
	Mode     string `json:"mode"`
	Pages    int    `json:"pages"`
	Fetched  int    `json:"fetched"`
	Inserted int    `json:"inserted"`
	Ratings  int    `json:"ratings"`
	Unrated  int    `json:"unrated"`
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	mode := strings.TrimPrefix(r.URL.Path, "/sync/")
	switch syncer.Mode(mode) {
	case syncer.ModeRecent, syncer.ModeFull, syncer.ModeRatings:
	default:
		s.writeError(w, http.StatusNotFound, "unknown sync mode")
		return
	}

	report, err := s.orch.Sync(r.Context(), syncer.Mode(mode))
	if err != nil {
		s.writeError(w, statusFor(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, syncResponse{
		Mode:     mode,
		Pages:    report.History.Pages,
		Fetched:  report.History.Fetched,
		Inserted: report.History.Inserted,
		Ratings:  report.Ratings.Ratings,
		Unrated:  report.Ratings.Unrated,
	})
}

type pushResponse struct {
	Field     string `json:"field"`
	Attempted int    `json:"attempted"`
	Mirrored  int    `json:"mirrored"`
	NoMatch   int    `json:"no_match"`
	Failed    int    `json:"failed"`
}

func (s *Server) handlePush(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	field := strings.TrimPrefix(r.URL.Path, "/push/")
	switch store.MirrorField(field) {
	case store.MirrorHistory, store.MirrorRating, store.MirrorBoth:
	default:
		s.writeError(w, http.StatusNotFound, "unknown push field")
		return
	}

	report, err := s.orch.Push(r.Context(), store.MirrorField(field))
	if err != nil {
		s.writeError(w, statusFor(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, pushResponse{
		Field:     field,
		Attempted: report.Attempted,
		Mirrored:  report.Mirrored,
		NoMatch:   report.NoMatch,
		Failed:    report.Failed,
	})
}

type filmView struct {
	Slug      string `json:"slug"`
	Title     string `json:"title"`
	Year      int    `json:"year"`
	WatchedAt string `json:"watched_at"`
	Rated     bool   `json:"rated"`
	Rating    int    `json:"rating,omitempty"`
	InPlex    bool   `json:"in_plex"`
}

type filmsResponse struct {
	Films []filmView `json:"films"`
	Total int        `json:"total"`
	Page  int        `json:"page"`
}

func (s *Server) handleFilms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	page, limit := pageParams(r)

	result, err := s.orch.Films(r.Context(), page, limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	views := make([]filmView, 0, len(result.Films))
	for _, film := range result.Films {
		views = append(views, filmView{
			Slug:      film.Slug,
			Title:     film.Title,
			Year:      film.Year,
			WatchedAt: film.WatchedAt.UTC().Format(time.RFC3339),
			Rated:     film.Rated,
			Rating:    film.Rating,
			InPlex:    film.PlexHistory,
		})
	}
	s.writeJSON(w, http.StatusOK, filmsResponse{Films: views, Total: result.Total, Page: page})
}

type pendingView struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

type pendingResponse struct {
	Pending []pendingView `json:"pending"`
	Total   int           `json:"total"`
	Page    int           `json:"page"`
}

func (s *Server) handlePending(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	page, limit := pageParams(r)

	result, err := s.orch.Pending(r.Context(), page, limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	views := make([]pendingView, 0, len(result.Pending))
	for _, entry := range result.Pending {
		views = append(views, pendingView{Slug: entry.Slug, Title: entry.Title})
	}
	s.writeJSON(w, http.StatusOK, pendingResponse{Pending: views, Total: result.Total, Page: page})
}

type ratingRequest struct {
	Ratings []struct {
		Slug   string `json:"slug"`
		Rating int    `json:"rating"`
	} `json:"ratings"`
}

func (s *Server) handleRatings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req ratingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Ratings) == 0 {
		s.writeError(w, http.StatusBadRequest, "no ratings in request")
		return
	}

	batch := make([]trakt.RatingSubmission, 0, len(req.Ratings))
	for _, entry := range req.Ratings {
		batch = append(batch, trakt.RatingSubmission{Slug: entry.Slug, Value: entry.Rating})
	}
	if err := s.orch.SubmitRatings(r.Context(), batch); err != nil {
		s.writeError(w, statusFor(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"submitted": len(batch)})
}

func pageParams(r *http.Request) (page, limit int) {
	query := r.URL.Query()
	page, _ = strconv.Atoi(query.Get("page"))
	if page <= 0 {
		page = 1
	}
	limit, _ = strconv.Atoi(query.Get("limit"))
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return page, limit
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	case errors.Is(err, services.ErrAuthExpired):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrTransport), errors.Is(err, services.ErrTimeout):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
