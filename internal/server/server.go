package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"thyrocheck/internal/answer"
	"thyrocheck/internal/chat"
	"thyrocheck/internal/flow"
	"thyrocheck/internal/logging"
	"thyrocheck/internal/report"
	"thyrocheck/internal/risk"
)

// Session is the engine surface the HTTP sink drives.
type Session interface {
	Graph() flow.Graph
	Snapshot() chat.Snapshot
	Submit(stepID string, value answer.Value, displayText string) chat.Result
	Restart()
	Verdict() (risk.Verdict, bool)
}

// Server renders one conversation over HTTP.
type Server struct {
	router  chi.Router
	session Session
	logger  *slog.Logger
	refresh time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRefresh sets how often the chat page reloads while the engine is
// thinking.
func WithRefresh(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.refresh = d
		}
	}
}

// New builds the router for session.
func New(session Session, opts ...Option) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		session: session,
		logger:  logging.Discard(),
		refresh: time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "server")
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(s.requestContext)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.router.Get("/", s.handleChatPage)
	s.router.Post("/chat/answer", s.handleChatAnswer)
	s.router.Post("/chat/restart", s.handleChatRestart)

	s.router.Route("/api/session", func(r chi.Router) {
		r.Get("/", s.handleSession)
		r.Post("/answers", s.handleSubmit)
		r.Post("/restart", s.handleRestart)
		r.Get("/verdict", s.handleVerdict)
	})

	s.router.Get("/report", s.reportHandler(report.FormatHTML))
	s.router.Get("/report.txt", s.reportHandler(report.FormatText))
	s.router.Get("/report.json", s.reportHandler(report.FormatJSON))
}

// requestContext attaches log fields and logs each request.
func (s *Server) requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := logging.WithFields(r.Context(), logging.Fields{
			RequestID: middleware.GetReqID(r.Context()),
			SessionID: s.session.Snapshot().SessionID,
		})
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))
		s.logger.DebugContext(ctx, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"dur", time.Since(start),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed", "status", status, "error", err)
	} else {
		s.logger.WarnContext(r.Context(), "request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
