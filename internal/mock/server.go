package mock

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	requestTimeout  = 60 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Options configures a Server
type Options struct {
	Store    Store
	Advisor  Advisor   // nil answers /advanced_analyze with 503
	Missions []Mission // defaults to SampleMissions
	Logger   *slog.Logger
	// AccessLog enables chi's request logger on stderr
	AccessLog bool
}

// Server is a local stand-in for the analysis server
type Server struct {
	router   *chi.Mux
	store    Store
	advisor  Advisor
	missions []Mission
	logger   *slog.Logger
}

// NewServer creates the server and its routes
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	missions := opts.Missions
	if missions == nil {
		missions = SampleMissions
	}

	s := &Server{
		router:   chi.NewRouter(),
		store:    opts.Store,
		advisor:  opts.Advisor,
		missions: missions,
		logger:   logger,
	}
	s.setupRoutes(opts.AccessLog)
	return s
}

func (s *Server) setupRoutes(accessLog bool) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	if accessLog {
		s.router.Use(middleware.Logger)
	}
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(requestTimeout))

	s.router.Post("/analyze", s.handleAnalyze)
	s.router.Post("/advanced_analyze", s.handleAdvancedAnalyze)
	s.router.Get("/history", s.handleHistory)
	s.router.Get("/health", s.handleHealth)
}

// Handler returns the routed handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("mock server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("mock server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	query, ok := s.formQuery(w, r)
	if !ok {
		return
	}

	answer, err := Process(query, s.missions)
	if err != nil {
		s.logger.Error("analysis failed", "query", query, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.save(r, query, false, answer.Result)
	writeJSON(w, http.StatusOK, analysisReply{Result: answer.Result, Chart: answer.Chart})
}

func (s *Server) handleAdvancedAnalyze(w http.ResponseWriter, r *http.Request) {
	query, ok := s.formQuery(w, r)
	if !ok {
		return
	}

	if s.advisor == nil {
		writeError(w, http.StatusServiceUnavailable, "Advanced analysis is not available")
		return
	}

	content, err := s.advisor.Complete(r.Context(), query)
	if err != nil {
		s.logger.Error("advanced analysis failed", "query", query, "error", err)
		writeError(w, http.StatusInternalServerError, "Error processing query: "+err.Error())
		return
	}

	result, err := json.Marshal(content)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.save(r, query, true, result)
	writeJSON(w, http.StatusOK, analysisReply{Result: result})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	page, err := intParam(r, "page", 1)
	if err != nil || page < 1 {
		writeError(w, http.StatusBadRequest, "page must be a positive integer")
		return
	}
	perPage, err := intParam(r, "per_page", 0)
	if err != nil || perPage < 0 {
		writeError(w, http.StatusBadRequest, "per_page must be a non-negative integer")
		return
	}

	entries, err := s.store.Page(r.Context(), page, perPage)
	if err != nil {
		s.logger.Error("history lookup failed", "page", page, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	items := make([]historyItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, historyItem{Query: e.Query, Result: e.Result})
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// formQuery reads the query from the "query" or "mission" form field.
// It writes the 400 reply itself when both are blank.
func (s *Server) formQuery(w http.ResponseWriter, r *http.Request) (string, bool) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return "", false
	}
	query := strings.TrimSpace(r.PostForm.Get("query"))
	if query == "" {
		query = strings.TrimSpace(r.PostForm.Get("mission"))
	}
	if query == "" {
		writeError(w, http.StatusBadRequest, "Query is required")
		return "", false
	}
	return query, true
}

// save records the query; failures are logged and never fail the reply
func (s *Server) save(r *http.Request, query string, advanced bool, result json.RawMessage) {
	if s.store == nil {
		return
	}
	requestID := middleware.GetReqID(r.Context())
	if requestID == "" {
		requestID = uuid.NewString()
	}
	entry := Entry{Query: query, Advanced: advanced, Result: result, RequestID: requestID}
	if err := s.store.Save(r.Context(), entry); err != nil {
		s.logger.Error("failed to save query", "query", query, "request_id", requestID, "error", err)
	}
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorReply{Error: msg})
}
