// Package http is the JSON read/write surface over the schedule service.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"prestiti/internal/cache"
	"prestiti/internal/core"
	"prestiti/internal/middleware/ratelimit"
	"prestiti/internal/middleware/security"
	"prestiti/internal/middleware/trace"
	"prestiti/internal/services"
)

// ScheduleAPI is the service surface the handlers need.
type ScheduleAPI interface {
	ListLoans(ctx context.Context, asOf time.Time) ([]services.LoanOverview, error)
	GetSchedule(ctx context.Context, loanID string, asOf time.Time) (services.ScheduleView, error)
	CreateLoan(ctx context.Context, raw core.RawLoanRecord) error
	DeleteLoan(ctx context.Context, loanID string) error
	AddPayment(ctx context.Context, loanID string, raw core.RawPaymentRecord) (int64, error)
	DeletePayment(ctx context.Context, loanID string, paymentID int64) error
}

type Server struct {
	http.Server
	api         ScheduleAPI
	rateLimiter *ratelimit.Limiter
	ipExtractor *security.IPExtractor
	tracer      *trace.Middleware

	// Response cache for the loan list. Entries are keyed by asOf plus a
	// generation counter bumped on every mutation.
	overviewCache *cache.LRUCache[[]services.LoanOverview]
	generation    uint64
	genMu         sync.Mutex

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, api ScheduleAPI) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           nil, // set below, after the middleware chain
			ReadHeaderTimeout: 10 * time.Second,
		},
		api:              api,
		rateLimiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		ipExtractor:      security.NewIPExtractor(),
		overviewCache:    cache.NewLRU[[]services.LoanOverview](100, 5*time.Minute),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /loans", s.handleListLoans)
	mux.HandleFunc("POST /loans", s.limited(s.handleCreateLoan))
	mux.HandleFunc("GET /loans/{id}/schedule", s.handleGetSchedule)
	mux.HandleFunc("DELETE /loans/{id}", s.limited(s.handleDeleteLoan))
	mux.HandleFunc("POST /loans/{id}/payments", s.limited(s.handleAddPayment))
	mux.HandleFunc("DELETE /loans/{id}/payments/{paymentID}", s.limited(s.handleDeletePayment))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.tracer = trace.NewMiddleware(s.ipExtractor.ExtractClientIP)
	s.Server.Handler = s.tracer.Middleware(headers.Middleware(mux))

	return s
}

// limited wraps mutating handlers with the per-IP rate limiter.
func (s *Server) limited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientIP := s.ipExtractor.ExtractClientIP(r)
		if !s.rateLimiter.Allow(clientIP) {
			slog.WarnContext(r.Context(), "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next(w, r)
	}
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if cleaned := s.overviewCache.CleanExpired(); cleaned > 0 {
				slog.Debug("Cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// bumpGeneration invalidates all cached loan lists.
func (s *Server) bumpGeneration() {
	s.genMu.Lock()
	s.generation++
	s.genMu.Unlock()
}

func (s *Server) currentGeneration() uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.generation
}

// Shutdown stops the server and its background goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports readiness plus the request counters the tracer and
// rate limiter keep.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	metrics := s.tracer.GetMetrics()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":             "ready",
		"total_requests":     metrics.TotalRequests,
		"last_duration_mics": metrics.LastDurationMics,
		"tracked_clients":    s.rateLimiter.ActiveClients(),
	})
}
